// Package ids mints the business keys for payments and orders.
package ids

import (
	"crypto/rand"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	PaymentPrefix = "pay_"
	OrderPrefix   = "#order"
)

// Generator mints time-ordered, crypto-random tokens.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

func (g *Generator) token() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(g.now()), g.entropy)
	if err != nil {
		return "", err
	}
	return strings.ToLower(id.String()), nil
}

// PaymentID returns a key shaped like pay_<token>.
func (g *Generator) PaymentID() (string, error) {
	tok, err := g.token()
	if err != nil {
		return "", err
	}
	return PaymentPrefix + tok, nil
}

// OrderID returns a key shaped like #order<token>.
func (g *Generator) OrderID() (string, error) {
	tok, err := g.token()
	if err != nil {
		return "", err
	}
	return OrderPrefix + tok, nil
}
