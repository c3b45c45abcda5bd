// Package refid mints human-readable reservation references of the form
// ID-YYYYMMDD-XXXX, where the date is the creation date and the suffix is
// four characters drawn from A-Z0-9.
package refid

import (
	"crypto/rand"
	"fmt"
	"time"
)

const (
	prefix      = "ID"
	suffixLen   = 4
	charset     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	datePattern = "20060102"
)

// Generator mints references. It holds no state beyond its entropy source,
// so a single instance is safe for concurrent use.
type Generator struct {
	now  func() time.Time
	read func(b []byte) (int, error)
}

func NewGenerator() *Generator {
	return &Generator{
		now:  time.Now,
		read: rand.Read,
	}
}

// NewGeneratorWithClock exists for tests that need deterministic dates.
func NewGeneratorWithClock(now func() time.Time) *Generator {
	return &Generator{
		now:  now,
		read: rand.Read,
	}
}

// maxRand is the largest multiple of len(charset) below 256. Bytes at or
// above it are rejected so every charset character is equally likely.
const maxRand = 256 - 256%len(charset)

// Generate returns a fresh reference. Uniqueness is not guaranteed here;
// callers enforce it at the storage layer and regenerate on collision.
func (g *Generator) Generate() (string, error) {
	suffix := make([]byte, suffixLen)
	b := make([]byte, 1)
	for i := 0; i < suffixLen; {
		if _, err := g.read(b); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		if int(b[0]) >= maxRand {
			continue
		}
		suffix[i] = charset[int(b[0])%len(charset)]
		i++
	}

	return fmt.Sprintf("%s-%s-%s", prefix, g.now().UTC().Format(datePattern), suffix), nil
}
