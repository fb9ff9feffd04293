// Package normalization maps user-supplied strings onto typed enums.
package normalization

import (
	"sort"
	"strings"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
)

// Normalizer provides type-safe string-to-enum normalization.
type Normalizer[T comparable] struct {
	name         string
	validValues  map[string]T
	defaultValue T
	validKeys    []string
}

// NewNormalizer creates a normalizer for the enum called name. Keys are
// matched case-insensitively after trimming.
func NewNormalizer[T comparable](name string, values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	validKeys := make([]string, 0, len(values))
	for k, v := range values {
		key := normalize(k)
		normalized[key] = v
		validKeys = append(validKeys, key)
	}
	sort.Strings(validKeys)

	return &Normalizer[T]{
		name:         name,
		validValues:  normalized,
		defaultValue: defaultValue,
		validKeys:    validKeys,
	}
}

// Normalize returns the default value when raw is empty or unknown.
func (n *Normalizer[T]) Normalize(raw string) T {
	if value, ok := n.validValues[normalize(raw)]; ok {
		return value
	}
	return n.defaultValue
}

// NormalizeWithError returns the default for empty input and a validation
// error for unknown input.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	cleaned := normalize(raw)
	if cleaned == "" {
		return n.defaultValue, nil
	}
	if value, ok := n.validValues[cleaned]; ok {
		return value, nil
	}
	var zero T
	return zero, errors.ValidationError("invalid "+n.name).
		WithContext("value", raw).
		WithContext("valid", n.validKeys).
		Build()
}

// ValidKeys returns all valid normalized keys, sorted.
func (n *Normalizer[T]) ValidKeys() []string {
	out := make([]string, len(n.validKeys))
	copy(out, n.validKeys)
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
