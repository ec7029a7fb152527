package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardkraft/backend-cards/internal/common"
)

// Address represents a saved delivery address.
type Address struct {
	ID           string    `json:"id"`
	Label        string    `json:"label,omitempty"`
	ReceiverName string    `json:"receiver_name"`
	Phone        string    `json:"phone"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	City         string    `json:"city"`
	State        string    `json:"state,omitempty"`
	PostalCode   string    `json:"postal_code"`
	Country      string    `json:"country,omitempty"`
	IsDefault    bool      `json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AddressInput captures payload for creating or updating an address.
type AddressInput struct {
	Label        string
	ReceiverName string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
	IsDefault    bool
}

// Service orchestrates address book operations.
type Service struct {
	Pool *pgxpool.Pool
}

const addressColumns = `id, label, receiver_name, phone, address_line1, address_line2,
	city, state, postal_code, country, is_default, created_at, updated_at`

func unauthorized() *common.AppError {
	return common.NewAppError("UNAUTHORIZED", "unauthorized", http.StatusUnauthorized, nil)
}

func validationError(message string) *common.AppError {
	return common.NewAppError("VALIDATION_ERROR", message, http.StatusBadRequest, nil)
}

func validateInput(input AddressInput) error {
	if strings.TrimSpace(input.ReceiverName) == "" {
		return validationError("receiver_name is required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return validationError("phone is required")
	}
	if strings.TrimSpace(input.AddressLine1) == "" {
		return validationError("address_line1 is required")
	}
	if strings.TrimSpace(input.City) == "" {
		return validationError("city is required")
	}
	if strings.TrimSpace(input.PostalCode) == "" {
		return validationError("postal_code is required")
	}
	return nil
}

func scanAddress(row pgx.Row) (Address, error) {
	var a Address
	err := row.Scan(&a.ID, &a.Label, &a.ReceiverName, &a.Phone, &a.AddressLine1, &a.AddressLine2,
		&a.City, &a.State, &a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// List returns paginated addresses for a user, default address first.
func (s *Service) List(ctx context.Context, userID string, page, perPage int) ([]Address, int64, error) {
	if s == nil || s.Pool == nil {
		return nil, 0, errors.New("address service not configured")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, 0, unauthorized()
	}
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	var total int64
	if err := s.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM addresses WHERE user_id = $1", userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count addresses: %w", err)
	}
	rows, err := s.Pool.Query(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC LIMIT $2 OFFSET $3",
		userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	addresses := make([]Address, 0, perPage)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan address: %w", err)
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate addresses: %w", err)
	}
	return addresses, total, nil
}

// Create inserts a new address for the given user.
func (s *Service) Create(ctx context.Context, userID string, input AddressInput) (Address, error) {
	if s == nil || s.Pool == nil {
		return Address{}, errors.New("address service not configured")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return Address{}, unauthorized()
	}
	if err := validateInput(input); err != nil {
		return Address{}, err
	}

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Address{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if input.IsDefault {
		if _, err := tx.Exec(ctx, "UPDATE addresses SET is_default = FALSE WHERE user_id = $1", userID); err != nil {
			return Address{}, fmt.Errorf("unset default addresses: %w", err)
		}
	}
	row := tx.QueryRow(ctx,
		`INSERT INTO addresses (user_id, label, receiver_name, phone, address_line1, address_line2, city, state, postal_code, country, is_default)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+addressColumns,
		userID, input.Label, input.ReceiverName, input.Phone, input.AddressLine1, input.AddressLine2,
		input.City, input.State, input.PostalCode, input.Country, input.IsDefault)
	created, err := scanAddress(row)
	if err != nil {
		return Address{}, fmt.Errorf("insert address: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Address{}, err
	}
	return created, nil
}

// Update modifies an existing address owned by the user.
func (s *Service) Update(ctx context.Context, userID, addressID string, input AddressInput) (Address, error) {
	if s == nil || s.Pool == nil {
		return Address{}, errors.New("address service not configured")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return Address{}, unauthorized()
	}
	if _, err := uuid.Parse(addressID); err != nil {
		return Address{}, common.NotFound("address not found")
	}
	if err := validateInput(input); err != nil {
		return Address{}, err
	}

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Address{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if input.IsDefault {
		if _, err := tx.Exec(ctx, "UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND id <> $2", userID, addressID); err != nil {
			return Address{}, fmt.Errorf("unset default addresses: %w", err)
		}
	}
	row := tx.QueryRow(ctx,
		`UPDATE addresses SET label = $3, receiver_name = $4, phone = $5, address_line1 = $6, address_line2 = $7,
			city = $8, state = $9, postal_code = $10, country = $11, is_default = $12, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+addressColumns,
		addressID, userID, input.Label, input.ReceiverName, input.Phone, input.AddressLine1, input.AddressLine2,
		input.City, input.State, input.PostalCode, input.Country, input.IsDefault)
	updated, err := scanAddress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Address{}, common.NotFound("address not found")
		}
		return Address{}, fmt.Errorf("update address: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Address{}, err
	}
	return updated, nil
}

// Delete removes an address owned by the user.
func (s *Service) Delete(ctx context.Context, userID, addressID string) error {
	if s == nil || s.Pool == nil {
		return errors.New("address service not configured")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return unauthorized()
	}
	if _, err := uuid.Parse(addressID); err != nil {
		return common.NotFound("address not found")
	}
	tag, err := s.Pool.Exec(ctx, "DELETE FROM addresses WHERE id = $1 AND user_id = $2", addressID, userID)
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("address not found")
	}
	return nil
}
