// internal/app/system/shortid/shortid.go
package shortid

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

// Team short ids are lowercase letters only so they survive being read
// aloud, typed on phones, and pasted into join links.
const (
	alphabet      = "abcdefghijklmnopqrstuvwxyz"
	DefaultLength = 6
	// DefaultMaxAttempts bounds collision retries at one length before
	// the generator widens the id by a letter and keeps going.
	DefaultMaxAttempts = 8
)

// TakenFunc reports whether a candidate id is already in use.
type TakenFunc func(ctx context.Context, id string) (bool, error)

// Generator produces globally unique short ids.
//
// Uniqueness is settled by the caller's TakenFunc (backed by a unique
// index); the generator only bounds the retry loop. After maxAttempts
// collisions at one length it widens the candidate by one letter, so
// generation cannot spin forever on a crowded namespace.
type Generator struct {
	length      int
	maxAttempts int
}

// New returns a Generator with the given starting length and per-length
// attempt cap. Non-positive arguments fall back to the defaults.
func New(length, maxAttempts int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{length: length, maxAttempts: maxAttempts}
}

// Next returns a short id that taken reported as free.
func (g *Generator) Next(ctx context.Context, taken TakenFunc) (string, error) {
	length := g.length
	for {
		for attempt := 0; attempt < g.maxAttempts; attempt++ {
			id, err := random(length)
			if err != nil {
				return "", fmt.Errorf("generate short id: %w", err)
			}
			inUse, err := taken(ctx, id)
			if err != nil {
				return "", fmt.Errorf("check short id: %w", err)
			}
			if !inUse {
				return id, nil
			}
		}
		length++
	}
}

func random(length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}
