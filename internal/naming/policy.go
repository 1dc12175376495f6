// Package naming validates and normalizes user-chosen voice names before a
// recording dialog may proceed.
package naming

import (
	"errors"
	"strings"
)

// ErrEmptyName rejects names that are empty or whitespace-only.
var ErrEmptyName = errors.New("voice name is empty")

// ErrInvalidName rejects names containing characters that would corrupt the
// composite-key filename ('_' is the key separator, slashes are path
// separators).
var ErrInvalidName = errors.New("voice name contains invalid characters")

// ErrNameTaken rejects names that already exist in the store.
var ErrNameTaken = errors.New("voice name already taken")

// Index is the uniqueness lookup the policy needs. Implemented by
// store.Store.
type Index interface {
	Has(name string) bool
}

// Policy checks proposed voice names against the store.
type Policy struct {
	index Index
}

// NewPolicy creates a Policy backed by the given name index.
func NewPolicy(index Index) *Policy {
	return &Policy{index: index}
}

// Normalize lowercases and trims a raw name. Lookups and stored names use
// the normalized form, so "Alpha" and "alpha" are the same voice.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Validate normalizes raw and returns it, or one of ErrEmptyName,
// ErrInvalidName, ErrNameTaken.
func (p *Policy) Validate(raw string) (string, error) {
	name := Normalize(raw)
	if name == "" {
		return "", ErrEmptyName
	}
	if strings.ContainsAny(name, "_/\\") {
		return "", ErrInvalidName
	}
	if p.index.Has(name) {
		return "", ErrNameTaken
	}
	return name, nil
}
