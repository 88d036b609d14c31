package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"outfit-studio-backend/internal/models"
)

// ErrInsufficientCredits is returned when a charge would drive the
// user's balance negative.
var ErrInsufficientCredits = errors.New("insufficient credits")

type Client struct {
	db *sql.DB
}

func NewClient(connectionString string) (*Client, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db}, nil
}

// NewClientFromDB wraps an existing handle. Used by tests.
func NewClientFromDB(db *sql.DB) *Client {
	return &Client{db: db}
}

func (c *Client) Close() error {
	return c.db.Close()
}

// SaveUser returns the stored user for the given email, creating it and
// granting the signup bonus on first sight. The bonus expires one year out.
func (c *Client) SaveUser(ctx context.Context, userUUID, email, nickname, avatarURL string) (*models.User, error) {
	var user models.User
	err := c.db.QueryRowContext(ctx, `
		SELECT uuid, email, nickname, avatar_url, left_credits, created_at
		FROM users
		WHERE email = $1
	`, email).Scan(
		&user.UUID, &user.Email, &user.Nickname, &user.AvatarURL,
		&user.LeftCredits, &user.CreatedAt,
	)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (uuid, email, nickname, avatar_url, left_credits)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
		RETURNING uuid, email, nickname, avatar_url, left_credits, created_at
	`, userUUID, email, nickname, avatarURL, models.NewUserCredits).Scan(
		&user.UUID, &user.Email, &user.Nickname, &user.AvatarURL,
		&user.LeftCredits, &user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	expiredAt := time.Now().AddDate(1, 0, 0)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO credits (trans_no, user_uuid, trans_type, credits, expired_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), userUUID, models.CreditsTransNewUser, models.NewUserCredits, expiredAt); err != nil {
		return nil, fmt.Errorf("failed to record signup credits: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user: %w", err)
	}

	return &user, nil
}

func (c *Client) GetUserCredits(ctx context.Context, userUUID string) (int, error) {
	var credits int
	err := c.db.QueryRowContext(ctx, `
		SELECT left_credits FROM users WHERE uuid = $1
	`, userUUID).Scan(&credits)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get user credits: %w", err)
	}
	return credits, nil
}

// chargeTx conditionally decrements the balance inside tx. The guard in
// the UPDATE is what prevents two concurrent requests from overspending:
// the second one matches zero rows and the charge fails cleanly.
func chargeTx(ctx context.Context, tx *sql.Tx, userUUID, transType string, cost int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE users SET left_credits = left_credits - $1
		WHERE uuid = $2 AND left_credits >= $1
	`, cost, userUUID)
	if err != nil {
		return fmt.Errorf("failed to charge credits: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to charge credits: %w", err)
	}
	if affected == 0 {
		return ErrInsufficientCredits
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO credits (trans_no, user_uuid, trans_type, credits)
		VALUES ($1, $2, $3, $4)
	`, uuid.NewString(), userUUID, transType, -cost); err != nil {
		return fmt.Errorf("failed to record credit charge: %w", err)
	}

	return nil
}

// ChargeCredits decrements the balance and appends a negative ledger row,
// for operations that produce no generation record (OCR, font, text).
func (c *Client) ChargeCredits(ctx context.Context, userUUID, transType string, cost int) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := chargeTx(ctx, tx, userUUID, transType, cost); err != nil {
		return err
	}

	return tx.Commit()
}

// InsertOutfitsAndCharge writes the generation records and charges the
// user in one transaction. Either all records land and the user pays, or
// nothing is persisted.
func (c *Client) InsertOutfitsAndCharge(ctx context.Context, outfits []models.Outfit, userUUID, transType string, cost int) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range outfits {
		if err := insertOutfitTx(ctx, tx, &outfits[i]); err != nil {
			return err
		}
	}

	if err := chargeTx(ctx, tx, userUUID, transType, cost); err != nil {
		return err
	}

	return tx.Commit()
}

func insertOutfitTx(ctx context.Context, tx *sql.Tx, outfit *models.Outfit) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO outfits (uuid, user_uuid, created_at, base_image_url, img_url, img_description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, outfit.UUID, outfit.UserUUID, outfit.CreatedAt, outfit.BaseImageURL,
		outfit.ImgURL, outfit.ImgDescription, outfit.Status)
	if err != nil {
		return fmt.Errorf("failed to insert outfit: %w", err)
	}
	return nil
}

// InsertOutfit writes one record outside any charge, for free operations
// like flips.
func (c *Client) InsertOutfit(ctx context.Context, outfit *models.Outfit) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO outfits (uuid, user_uuid, created_at, base_image_url, img_url, img_description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, outfit.UUID, outfit.UserUUID, outfit.CreatedAt, outfit.BaseImageURL,
		outfit.ImgURL, outfit.ImgDescription, outfit.Status)
	if err != nil {
		return fmt.Errorf("failed to insert outfit: %w", err)
	}
	return nil
}

func (c *Client) ListOutfitsByUser(ctx context.Context, userUUID string, limit int) ([]models.Outfit, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT uuid, user_uuid, created_at, base_image_url, img_url, img_description, status
		FROM outfits
		WHERE user_uuid = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, userUUID, models.StatusActive, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list outfits: %w", err)
	}
	defer rows.Close()

	return scanOutfits(rows)
}

func scanOutfits(rows *sql.Rows) ([]models.Outfit, error) {
	var outfits []models.Outfit
	for rows.Next() {
		var outfit models.Outfit
		err := rows.Scan(
			&outfit.UUID, &outfit.UserUUID, &outfit.CreatedAt, &outfit.BaseImageURL,
			&outfit.ImgURL, &outfit.ImgDescription, &outfit.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outfit: %w", err)
		}
		outfits = append(outfits, outfit)
	}
	return outfits, rows.Err()
}

func (c *Client) InsertWallpapers(ctx context.Context, wallpapers []models.Wallpaper) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, w := range wallpapers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO wallpapers (uuid, user_uuid, created_at, img_url, img_description, status)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, w.UUID, w.UserUUID, w.CreatedAt, w.ImgURL, w.ImgDescription, w.Status); err != nil {
			return fmt.Errorf("failed to insert wallpaper: %w", err)
		}
	}

	return tx.Commit()
}

func (c *Client) ListWallpapers(ctx context.Context, userUUID string, page, limit int) ([]models.Wallpaper, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := `
		SELECT uuid, user_uuid, created_at, img_url, img_description, status
		FROM wallpapers
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	args := []interface{}{models.StatusActive, limit, offset}
	if userUUID != "" {
		query = `
			SELECT uuid, user_uuid, created_at, img_url, img_description, status
			FROM wallpapers
			WHERE status = $1 AND user_uuid = $2
			ORDER BY created_at DESC
			LIMIT $3 OFFSET $4
		`
		args = []interface{}{models.StatusActive, userUUID, limit, offset}
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallpapers: %w", err)
	}
	defer rows.Close()

	var wallpapers []models.Wallpaper
	for rows.Next() {
		var w models.Wallpaper
		err := rows.Scan(&w.UUID, &w.UserUUID, &w.CreatedAt, &w.ImgURL, &w.ImgDescription, &w.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallpaper: %w", err)
		}
		wallpapers = append(wallpapers, w)
	}

	return wallpapers, rows.Err()
}

func (c *Client) CreateOrder(ctx context.Context, order *models.Order) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO orders (order_no, user_uuid, credits, status)
		VALUES ($1, $2, $3, $4)
	`, order.OrderNo, order.UserUUID, order.Credits, models.OrderStatusCreated)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (c *Client) GetOrder(ctx context.Context, orderNo string) (*models.Order, error) {
	var order models.Order
	err := c.db.QueryRowContext(ctx, `
		SELECT order_no, user_uuid, credits, status, paid_email, paid_detail, created_at
		FROM orders
		WHERE order_no = $1
	`, orderNo).Scan(
		&order.OrderNo, &order.UserUUID, &order.Credits, &order.Status,
		&order.PaidEmail, &order.PaidDetail, &order.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// MarkOrderPaid settles the order and grants its credits in one
// transaction. Settling an already-paid order is a no-op, which makes the
// payment callback safe to retry.
func (c *Client) MarkOrderPaid(ctx context.Context, orderNo, paidEmail, paidDetail string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var userUUID string
	var credits int
	err = tx.QueryRowContext(ctx, `
		UPDATE orders SET status = $1, paid_email = $2, paid_detail = $3
		WHERE order_no = $4 AND status <> $1
		RETURNING user_uuid, credits
	`, models.OrderStatusPaid, paidEmail, paidDetail, orderNo).Scan(&userUUID, &credits)
	if errors.Is(err, sql.ErrNoRows) {
		return tx.Commit()
	}
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET left_credits = left_credits + $1 WHERE uuid = $2
	`, credits, userUUID); err != nil {
		return fmt.Errorf("failed to grant order credits: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO credits (trans_no, user_uuid, trans_type, credits)
		VALUES ($1, $2, $3, $4)
	`, uuid.NewString(), userUUID, models.CreditsTransOrderPay, credits); err != nil {
		return fmt.Errorf("failed to record order credits: %w", err)
	}

	return tx.Commit()
}
