// Package tracking produces human-readable tracking code candidates of the
// form ORD-YYYYMMDD-RRRR. Codes are not unique by construction; the caller
// checks candidates against the store and retries on collision.
package tracking

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const (
	prefix       = "ORD"
	dateFormat   = "20060102"
	randomDigits = 4
)

// Generator builds tracking code candidates from a clock and a random
// integer source. Both are injected so collision behavior is testable.
type Generator struct {
	now  func() time.Time
	intn func(n int) int
}

// NewGenerator returns a generator backed by the wall clock and math/rand.
// The random part is not cryptographically strong; collisions are expected
// and handled by the caller.
func NewGenerator() *Generator {
	return &Generator{now: time.Now, intn: rand.Intn}
}

// NewGeneratorWith builds a generator with an explicit clock and random
// source, for deterministic tests.
func NewGeneratorWith(now func() time.Time, intn func(n int) int) *Generator {
	return &Generator{now: now, intn: intn}
}

// Generate returns the next candidate code.
func (g *Generator) Generate() string {
	datePart := g.now().Format(dateFormat)

	var sb strings.Builder
	for i := 0; i < randomDigits; i++ {
		fmt.Fprintf(&sb, "%d", g.intn(10))
	}

	return fmt.Sprintf("%s-%s-%s", prefix, datePart, sb.String())
}
