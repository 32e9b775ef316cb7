// Package refs generates short human-readable reference codes for contact
// tickets, built on hashids so codes are non-sequential but reversible.
package refs

import (
	"strings"

	hashids "github.com/speps/go-hashids/v2"
)

type Generator struct {
	h *hashids.HashID
}

func NewGenerator(salt string) (*Generator, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 8
	data.Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, err
	}
	return &Generator{h: h}, nil
}

// Reference encodes a contact id into a code like "INQ-X7RT2PWQ".
func (g *Generator) Reference(id int64) (string, error) {
	code, err := g.h.EncodeInt64([]int64{id})
	if err != nil {
		return "", err
	}
	return "INQ-" + strings.ToUpper(code), nil
}
