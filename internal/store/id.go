package store

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns a unique order identifier.
//
// Prefers a cryptographically random UUID. If UUID generation fails (no
// entropy source), falls back to a collision-resistant composite of the
// current epoch milliseconds in base36 plus a random 7-character suffix.
// Must never repeat within a session with overwhelming probability.
func NewID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}

	suffix := make([]byte, 7)
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + string(suffix)
}
