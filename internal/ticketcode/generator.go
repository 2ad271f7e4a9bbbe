package ticketcode

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// Prefix starts every public ticket code.
const Prefix = "HD-"

// alphabet omits 0/O and 1/I so codes stay human-typeable.
const alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const suffixLength = 6

// Generator produces short public ticket codes. Codes are not globally unique
// on their own; the caller must check the ticket store and regenerate on
// collision.
type Generator struct{}

// NewGenerator builds a code generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns a fresh candidate code, e.g. "HD-7KQ2XM".
func (g *Generator) Generate() string {
	buf := make([]byte, suffixLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is effectively unrecoverable; fall back to a
		// uuid-derived suffix rather than panicking on an intake request.
		return Prefix + uuidSuffix()
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return Prefix + string(buf)
}

func uuidSuffix() string {
	id := uuid.NewString()
	out := make([]byte, 0, suffixLength)
	for i := 0; i < len(id) && len(out) < suffixLength; i++ {
		ch := id[i]
		if ch == '-' {
			continue
		}
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		out = append(out, ch)
	}
	return string(out)
}
