package models

import "time"

// VerificationRecord - выданный код подтверждения email до регистрации.
type VerificationRecord struct {
	Email     string    `db:"email" json:"email"`
	Code      string    `db:"code" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired сообщает, истёк ли код к моменту now.
func (r *VerificationRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// VerificationRetention - сколько просроченная запись хранится после истечения,
// чтобы повторная попытка получила "expired", а не "not found".
const VerificationRetention = 24 * time.Hour

// VerificationPurgeCutoff возвращает границу очистки: записи, истёкшие
// раньше неё, можно удалять.
func VerificationPurgeCutoff(now time.Time) time.Time {
	return now.Add(-VerificationRetention)
}

// Purgeable сообщает, можно ли удалить запись при очистке в момент now.
func (r *VerificationRecord) Purgeable(now time.Time) bool {
	return r.ExpiresAt.Before(VerificationPurgeCutoff(now))
}
