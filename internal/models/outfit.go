package models

import (
	"time"
)

// Generation record statuses. Only Active is ever written by the API;
// Deleted is reserved for soft-deletion.
const (
	StatusCreated = "created"
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

// Outfit is one AI-produced image plus its source image and free-text
// description. user_uuid is null for anonymous generations.
type Outfit struct {
	UUID           string     `json:"uuid"`
	UserUUID       NullString `json:"user_uuid"`
	CreatedAt      time.Time  `json:"created_at"`
	BaseImageURL   string     `json:"base_image_url"`
	ImgURL         string     `json:"img_url"`
	ImgDescription string     `json:"img_description"`
	Status         string     `json:"status"`
}

type Wallpaper struct {
	UUID           string     `json:"uuid"`
	UserUUID       NullString `json:"user_uuid"`
	CreatedAt      time.Time  `json:"created_at"`
	ImgURL         string     `json:"img_url"`
	ImgDescription string     `json:"img_description"`
	Status         string     `json:"status"`
}
