package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVerificationRecord_ExpiredAndPurgeable(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := &VerificationRecord{Email: "a@example.com", Code: "123456", ExpiresAt: issued.Add(10 * time.Minute)}

	cases := []struct {
		name      string
		at        time.Time
		expired   bool
		purgeable bool
	}{
		{"inside window", issued.Add(5 * time.Minute), false, false},
		{"just expired", issued.Add(12 * time.Minute), true, false},
		{"hour after purge tick", issued.Add(70 * time.Minute), true, false},
		{"retention elapsed", rec.ExpiresAt.Add(VerificationRetention + time.Second), true, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expired, rec.Expired(tc.at))
			assert.Equal(t, tc.purgeable, rec.Purgeable(tc.at))
		})
	}
}

func TestVerificationPurgeCutoff(t *testing.T) {
	now := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(-24*time.Hour), VerificationPurgeCutoff(now))
}
