package main

import (
	"crypto/rand"
	"fmt"

	"github.com/hamed0406/uptimeengine/internal/domain"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// newID returns a random lowercase alphanumeric check id.
func newID() (string, error) {
	out := make([]byte, 0, domain.IDLength)
	buf := make([]byte, domain.IDLength*2)
	for len(out) < domain.IDLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("random id: %w", err)
		}
		for _, b := range buf {
			// 252 is the largest multiple of 36 below 256
			if b >= 252 {
				continue
			}
			out = append(out, idAlphabet[int(b)%len(idAlphabet)])
			if len(out) == domain.IDLength {
				break
			}
		}
	}
	return string(out), nil
}
