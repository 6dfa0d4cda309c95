package prefixindex

import "regexp"

// MaxKeyLength is the longest searchable string, in characters, any index
// accepts. It is the key-length ceiling of the backing store and applies
// independently of MaxLength.
const MaxKeyLength = 255

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{2,62}$`)

// IndexOptions controls how searchable strings are decomposed into terms.
type IndexOptions struct {
	// MinLength is the length of the shortest term written. Strings shorter
	// than MinLength produce no terms. Must be at least 1.
	MinLength int

	// MaxLength is the length of the longest term written. Longer strings are
	// indexed up to MaxLength only, so searches longer than MaxLength find
	// nothing. Must be at most MaxKeyLength.
	MaxLength int

	// CaseSensitive disables case folding of indexed strings and search terms.
	CaseSensitive bool

	// ThrowOnConflict makes Index fail with a ConflictError when an entry for
	// the same term and row key already exists. Otherwise conflicts are ignored.
	ThrowOnConflict bool

	// ThrowOnMinNotMet makes Index fail with a BoundError for strings shorter
	// than MinLength. Otherwise such strings are silently not indexed.
	ThrowOnMinNotMet bool

	// ThrowOnMaxExceeded makes Index fail with a BoundError, writing nothing,
	// for strings longer than MaxLength. Otherwise they are truncated.
	ThrowOnMaxExceeded bool
}

// DefaultIndexOptions returns case-insensitive options indexing every prefix
// length from 1 to MaxKeyLength, with all bound and conflict errors disabled.
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{
		MinLength: 1,
		MaxLength: MaxKeyLength,
	}
}

// Validate checks the length bounds.
func (o IndexOptions) Validate() error {
	if o.MinLength < 1 {
		return invalid("minLength", "must be at least 1, got %d", o.MinLength)
	}
	if o.MaxLength > MaxKeyLength {
		return invalid("maxLength", "must be at most %d, got %d", MaxKeyLength, o.MaxLength)
	}
	if o.MinLength > o.MaxLength {
		return invalid("minLength", "%d is greater than maxLength %d", o.MinLength, o.MaxLength)
	}
	return nil
}

// ValidateName checks that name can identify an index: a letter followed by
// 2 to 62 letters or digits.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return invalid("name", "%q must match %s", name, namePattern.String())
	}
	return nil
}
