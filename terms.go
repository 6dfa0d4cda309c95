package prefixindex

import (
	"strings"
	"unicode/utf8"
)

// Terms is the decomposition of one searchable string.
type Terms struct {
	// Normalized is the searchable string after case folding.
	Normalized string

	// Length is the length of Normalized in characters.
	Length int

	// Keys are the prefixes of Normalized, shortest first, one per length in
	// [MinLength, effective length].
	Keys []string

	// BelowMin is set when Length < MinLength; Keys is then empty.
	BelowMin bool

	// Exceeded is set when terms were capped at MaxLength.
	Exceeded bool
}

// normalize folds s unless the options are case sensitive.
func normalize(s string, opts IndexOptions) string {
	if opts.CaseSensitive {
		return s
	}
	return strings.ToLower(s)
}

// GenerateTerms decomposes s into the partition keys it is indexed under.
//
// With toMax set (indexing) terms stop at MaxLength and Exceeded reports the
// truncation. Without it (deletion) every prefix from MinLength up to the
// full string is produced, covering anything indexing could have written.
// Strings longer than MaxKeyLength are rejected with a ValidationError.
func GenerateTerms(s string, opts IndexOptions, toMax bool) (Terms, error) {
	normalized := normalize(s, opts)
	length := utf8.RuneCountInString(normalized)

	if length > MaxKeyLength {
		return Terms{}, invalid("searchString", "length %d exceeds the maximum key length %d", length, MaxKeyLength)
	}

	t := Terms{Normalized: normalized, Length: length}

	if length < opts.MinLength {
		t.BelowMin = true
		return t, nil
	}

	effective := length
	if toMax && length > opts.MaxLength {
		effective = opts.MaxLength
		t.Exceeded = true
	}

	t.Keys = make([]string, 0, effective-opts.MinLength+1)

	// Walk rune boundaries so multi-byte characters are never split.
	n := 0
	for i := range normalized {
		if n > effective {
			break
		}
		if n >= opts.MinLength {
			t.Keys = append(t.Keys, normalized[:i])
		}
		n++
	}
	if effective == length {
		t.Keys = append(t.Keys, normalized)
	}

	return t, nil
}
