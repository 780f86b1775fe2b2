package id

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a fresh ULID string. IDs generated by the same process are
// strictly increasing, so lexicographic order matches creation order.
func New() (string, error) {
	return NewFromTime(time.Now())
}

// NewFromTime returns a ULID string derived from the given timestamp.
func NewFromTime(t time.Time) (string, error) {
	mu.Lock()
	defer mu.Unlock()

	v, err := ulid.New(uint64(t.UnixMilli()), entropy)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// IsValid reports whether s parses as a canonical ULID.
func IsValid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
