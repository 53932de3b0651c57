// Package syncid generates the identifiers used to match sessions across
// devices: a UUIDv7 written as 26 characters of Crockford base32, so ids sort
// by creation time.
package syncid

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"github.com/coder/quartz"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the number of characters in an id.
const Length = 26

// Generator produces sync ids from a clock and a source of random bytes.
type Generator struct {
	clock  quartz.Clock
	random io.Reader
}

// NewGenerator returns a generator. A nil clock uses the real clock and a
// nil reader uses crypto/rand.
func NewGenerator(clock quartz.Clock, random io.Reader) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if random == nil {
		random = rand.Reader
	}
	return &Generator{clock: clock, random: random}
}

// New returns a fresh id from the real clock.
func New() string {
	id, err := NewGenerator(nil, nil).Generate()
	if err != nil {
		panic("syncid: " + err.Error())
	}
	return id
}

// Generate returns the next id.
func (g *Generator) Generate() (string, error) {
	var u [16]byte

	ms := g.clock.Now().UnixMilli()
	for i := 0; i < 6; i++ {
		u[i] = byte(ms >> (40 - 8*i))
	}
	if _, err := io.ReadFull(g.random, u[6:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	u[6] = (u[6] & 0x0f) | 0x70 // version 7
	u[8] = (u[8] & 0x3f) | 0x80 // RFC 4122 variant

	return encode(u), nil
}

// encode writes the 128 bits as 26 five-bit groups, most significant first,
// padding the final group with two zero bits.
func encode(u [16]byte) string {
	var sb strings.Builder
	sb.Grow(Length)
	for i := 0; i < Length; i++ {
		off := i * 5
		idx, bit := off/8, off%8
		var v byte
		if bit <= 3 {
			v = (u[idx] >> (3 - bit)) & 0x1f
		} else {
			v = (u[idx] << (bit - 3)) & 0x1f
			if idx+1 < len(u) {
				v |= u[idx+1] >> (11 - bit)
			}
		}
		sb.WriteByte(alphabet[v])
	}
	return sb.String()
}

// Validate reports whether id looks like a sync id.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("sync id must be %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("sync id first character must be 0-7, got %c", id[0])
	}
	for i, c := range id {
		if !strings.ContainsRune(alphabet, c) {
			return fmt.Errorf("invalid character %c at position %d", c, i)
		}
	}
	return nil
}
