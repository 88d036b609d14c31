package database_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"outfit-studio-backend/internal/database"
	"outfit-studio-backend/internal/models"
)

func newMockClient(t *testing.T) (*database.Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewClientFromDB(db), mock
}

func TestGetUserCredits(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT left_credits FROM users WHERE uuid = $1")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"left_credits"}).AddRow(42))

	credits, err := client.GetUserCredits(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 42, credits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserCredits_UnknownUser(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT left_credits FROM users WHERE uuid = $1")).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	credits, err := client.GetUserCredits(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Equal(t, 0, credits)
}

func TestChargeCredits(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET left_credits = left_credits - $1")).
		WithArgs(5, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO credits")).
		WithArgs(sqlmock.AnyArg(), "user-1", models.CreditsTransOutfitGeneration, -5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := client.ChargeCredits(context.Background(), "user-1", models.CreditsTransOutfitGeneration, 5)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChargeCredits_Insufficient(t *testing.T) {
	client, mock := newMockClient(t)

	// The conditional UPDATE matches no rows when the balance is short,
	// including when a concurrent request spent it first.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET left_credits = left_credits - $1")).
		WithArgs(5, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := client.ChargeCredits(context.Background(), "user-1", models.CreditsTransOutfitGeneration, 5)
	assert.ErrorIs(t, err, database.ErrInsufficientCredits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertOutfitsAndCharge(t *testing.T) {
	client, mock := newMockClient(t)

	outfits := []models.Outfit{
		{
			UUID:           "batch-1",
			UserUUID:       models.NewNullString("user-1"),
			CreatedAt:      time.Now(),
			BaseImageURL:   "https://example.com/base.png",
			ImgURL:         "https://cdn.example.com/gen/batch-1_outfit.png",
			ImgDescription: "summer outfit",
			Status:         models.StatusActive,
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outfits")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET left_credits = left_credits - $1")).
		WithArgs(5, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO credits")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := client.InsertOutfitsAndCharge(context.Background(), outfits, "user-1", models.CreditsTransOutfitGeneration, 5)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertOutfitsAndCharge_RollsBackOnInsufficientCredits(t *testing.T) {
	client, mock := newMockClient(t)

	outfits := []models.Outfit{{UUID: "batch-1", Status: models.StatusActive}}

	// The records must not survive a failed charge.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outfits")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET left_credits = left_credits - $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := client.InsertOutfitsAndCharge(context.Background(), outfits, "user-1", models.CreditsTransOutfitGeneration, 5)
	assert.ErrorIs(t, err, database.ErrInsufficientCredits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveUser_ExistingUser(t *testing.T) {
	client, mock := newMockClient(t)

	rows := sqlmock.NewRows([]string{"uuid", "email", "nickname", "avatar_url", "left_credits", "created_at"}).
		AddRow("user-1", "jo@example.com", "jo", nil, 7, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("jo@example.com").
		WillReturnRows(rows)

	user, err := client.SaveUser(context.Background(), "user-1", "jo@example.com", "jo", "")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.UUID)
	assert.Equal(t, 7, user.LeftCredits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveUser_NewUserGetsSignupBonus(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("new@example.com").
		WillReturnError(sql.ErrNoRows)

	mock.ExpectBegin()
	inserted := sqlmock.NewRows([]string{"uuid", "email", "nickname", "avatar_url", "left_credits", "created_at"}).
		AddRow("user-2", "new@example.com", nil, nil, models.NewUserCredits, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnRows(inserted)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO credits")).
		WithArgs(sqlmock.AnyArg(), "user-2", models.CreditsTransNewUser, models.NewUserCredits, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user, err := client.SaveUser(context.Background(), "user-2", "new@example.com", "", "")
	require.NoError(t, err)
	assert.Equal(t, models.NewUserCredits, user.LeftCredits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs("order-1", "user-1", 100, models.OrderStatusCreated).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := client.CreateOrder(context.Background(), &models.Order{
		OrderNo:  "order-1",
		UserUUID: "user-1",
		Credits:  100,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrder(t *testing.T) {
	client, mock := newMockClient(t)

	rows := sqlmock.NewRows([]string{"order_no", "user_uuid", "credits", "status", "paid_email", "paid_detail", "created_at"}).
		AddRow("order-1", "user-1", 100, models.OrderStatusCreated, nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).
		WithArgs("order-1").
		WillReturnRows(rows)

	order, err := client.GetOrder(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", order.UserUUID)
	assert.Equal(t, 100, order.Credits)
	assert.Equal(t, models.OrderStatusCreated, order.Status)
}

func TestMarkOrderPaid(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE orders SET status = $1")).
		WithArgs(models.OrderStatusPaid, "buyer@example.com", "{}", "order-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_uuid", "credits"}).AddRow("user-1", 100))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET left_credits = left_credits + $1")).
		WithArgs(100, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO credits")).
		WithArgs(sqlmock.AnyArg(), "user-1", models.CreditsTransOrderPay, 100).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := client.MarkOrderPaid(context.Background(), "order-1", "buyer@example.com", "{}")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkOrderPaid_AlreadyPaidIsNoOp(t *testing.T) {
	client, mock := newMockClient(t)

	// Retried callbacks must not grant the credits twice.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE orders SET status = $1")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectCommit()

	err := client.MarkOrderPaid(context.Background(), "order-1", "buyer@example.com", "{}")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWallpapers_FiltersByUser(t *testing.T) {
	client, mock := newMockClient(t)

	rows := sqlmock.NewRows([]string{"uuid", "user_uuid", "created_at", "img_url", "img_description", "status"}).
		AddRow("w-1", "user-1", time.Now(), "https://cdn.example.com/wallpaper/w-1_0.png", "sunset", models.StatusActive)
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallpapers")).
		WithArgs(models.StatusActive, "user-1", 20, 0).
		WillReturnRows(rows)

	wallpapers, err := client.ListWallpapers(context.Background(), "user-1", 1, 20)
	require.NoError(t, err)
	require.Len(t, wallpapers, 1)
	assert.Equal(t, "w-1", wallpapers[0].UUID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
