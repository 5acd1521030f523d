// Package daily derives the daily challenge target: every player who starts a
// daily round at a given level on the same UTC date gets the same number.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Index returns a deterministic value in [0, n) using
// HMAC(salt, "YYYY-MM-DD|n") % n.
func Index(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date) + "|" + strconv.Itoa(n)))
	sum := h.Sum(nil)
	// take first 8 bytes to uint64 for modulus distribution
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Source is a game.RandomSource pinned to one date and salt.
type Source struct {
	Date time.Time
	Salt string
}

// NewSource returns the daily source for the date of now.
func NewSource(now time.Time, salt string) Source {
	return Source{Date: now, Salt: salt}
}

// Intn implements game.RandomSource.
func (s Source) Intn(n int) int { return Index(s.Date, s.Salt, n) }
