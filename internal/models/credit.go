package models

import (
	"time"
)

// Credit transaction types. Credits is signed: grants are positive,
// charges negative.
const (
	CreditsTransNewUser          = "new_user"
	CreditsTransOrderPay         = "order_pay"
	CreditsTransOutfitGeneration = "outfit_generation"
)

// NewUserCredits is the signup bonus granted the first time a user is seen.
const NewUserCredits = 10

type CreditTransaction struct {
	TransNo   string    `json:"trans_no"`
	UserUUID  string    `json:"user_uuid"`
	TransType string    `json:"trans_type"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
	ExpiredAt NullTime  `json:"expired_at"`
}

type User struct {
	UUID        string     `json:"uuid"`
	Email       string     `json:"email"`
	Nickname    NullString `json:"nickname"`
	AvatarURL   NullString `json:"avatar_url"`
	LeftCredits int        `json:"left_credits"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Order is a payment order created at checkout time and settled by the
// provider callback.
type Order struct {
	OrderNo    string     `json:"order_no"`
	UserUUID   string     `json:"user_uuid"`
	Credits    int        `json:"credits"`
	Status     string     `json:"status"`
	PaidEmail  NullString `json:"paid_email"`
	PaidDetail NullString `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
}

const (
	OrderStatusCreated = "created"
	OrderStatusPaid    = "paid"
)
