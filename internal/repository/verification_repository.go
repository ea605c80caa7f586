package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/sugvoyage-backend/internal/models"
	"github.com/ignatzorin/sugvoyage-backend/internal/repository/common"
)

// ErrVerificationNotFound - для email нет действующей записи с кодом.
var ErrVerificationNotFound = fmt.Errorf("verification code: %w", common.ErrNotFound)

// VerificationRepository хранит коды подтверждения в таблице verification_codes.
// На один email приходится не более одной записи.
type VerificationRepository struct {
	db *sqlx.DB
}

func NewVerificationRepository(db *sqlx.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// Save создаёт или заменяет запись для email.
func (r *VerificationRepository) Save(ctx context.Context, rec *models.VerificationRecord) error {
	err := r.db.GetContext(ctx, &rec.CreatedAt, `
		INSERT INTO verification_codes (email, code, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at, created_at = NOW()
		RETURNING created_at
	`, rec.Email, rec.Code, rec.ExpiresAt)
	if err != nil {
		return fmt.Errorf("verification repository: save %w", err)
	}
	return nil
}

// Find возвращает запись по email, в том числе просроченную.
func (r *VerificationRepository) Find(ctx context.Context, email string) (*models.VerificationRecord, error) {
	rec, err := common.GetByField[models.VerificationRecord](
		ctx, r.db, "verification_codes", "email, code, expires_at, created_at", "email", email, ErrVerificationNotFound,
	)
	if err != nil && !errors.Is(err, ErrVerificationNotFound) {
		return nil, fmt.Errorf("verification repository: %w", err)
	}
	return rec, err
}

// Consume удаляет запись, только если код совпадает.
// Возвращает false, если запись уже забрал другой запрос.
func (r *VerificationRepository) Consume(ctx context.Context, email, code string) (bool, error) {
	var deleted string
	err := r.db.GetContext(ctx, &deleted, `
		DELETE FROM verification_codes WHERE email = $1 AND code = $2 RETURNING email
	`, email, code)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("verification repository: consume %w", err)
	}
	return true, nil
}

// Delete удаляет запись для email без проверки кода.
func (r *VerificationRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM verification_codes WHERE email = $1`, email); err != nil {
		return fmt.Errorf("verification repository: delete %w", err)
	}
	return nil
}

// PurgeExpired удаляет записи, которые истекли больше чем
// models.VerificationRetention назад относительно now.
func (r *VerificationRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM verification_codes WHERE expires_at < $1`, models.VerificationPurgeCutoff(now))
	if err != nil {
		return 0, fmt.Errorf("verification repository: purge %w", err)
	}
	return res.RowsAffected()
}
