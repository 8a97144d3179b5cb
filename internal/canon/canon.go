// Package canon implements canonical name normalization, the single place
// where source-level Vensim names and subscripts are folded into the
// lowercase, underscore-delimited identifiers used everywhere downstream.
package canon

import (
	"strings"
	"unicode"
)

// Name canonicalizes a source-level identifier into its internal form:
// quoting is stripped, each non-alphanumeric rune becomes an underscore,
// the result is lowercased, and a leading underscore is added unless one
// is already present. The leading-underscore check is what keeps the
// function idempotent: canonicalizing an already-canonical id is a no-op.
func Name(source string) string {
	trimmed := strings.Trim(strings.TrimSpace(source), `"`)

	var b strings.Builder
	b.Grow(len(trimmed) + 1)
	for _, r := range trimmed {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune('_')
		}
	}
	folded := b.String()

	if strings.HasPrefix(folded, "_") {
		return folded
	}
	return "_" + folded
}

// Decanonicalize restores a user-readable display name from a canonical
// id. It is the algorithmic fallback used when no original source name was
// recorded for the id (see Registry); it is not guaranteed to reproduce the
// exact original spelling, only a name whose canonical form round-trips.
func Decanonicalize(id string) string {
	body := strings.TrimPrefix(id, "_")
	if body == "" {
		return ""
	}

	words := strings.Split(body, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// Registry records the first source-level spelling seen for each canonical
// id, so diagnostics and data-file correlation (vensimName) can report the
// name the modeler actually typed instead of the algorithmic fallback.
type Registry struct {
	sourceByID map[string]string
}

// NewRegistry creates an empty name registry.
func NewRegistry() *Registry {
	return &Registry{sourceByID: make(map[string]string)}
}

// Record canonicalizes source and, if this is the first time the resulting
// id has been seen, remembers source as its display form. It always
// returns the canonical id.
func (r *Registry) Record(source string) string {
	id := Name(source)
	if _, exists := r.sourceByID[id]; !exists {
		r.sourceByID[id] = source
	}
	return id
}

// VensimName returns the recorded source spelling for id, falling back to
// the pure algorithmic decanonicalization when nothing was recorded.
func (r *Registry) VensimName(id string) string {
	if name, ok := r.sourceByID[id]; ok {
		return name
	}
	return Decanonicalize(id)
}

// Reset clears all recorded spellings. Canonicalization itself (Name,
// Decanonicalize) is stateless and needs no reset.
func (r *Registry) Reset() {
	r.sourceByID = make(map[string]string)
}
