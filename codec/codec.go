// Package codec centralizes how indexed entities are encoded into store records.
//
// Codec selection is a breaking-change boundary: entries written with one
// codec cannot be decoded by another, so every index reading a namespace must
// use the codec that wrote it.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
//
// Compressed codecs are named "<inner>+<algorithm>", e.g. "go-json+zstd".
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	}

	for _, alg := range []Compression{Zstd, LZ4} {
		suffix := "+" + alg.String()
		if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
			inner, ok := ByName(name[:len(name)-len(suffix)])
			if !ok {
				return nil, false
			}
			c, err := NewCompressed(inner, alg)
			if err != nil {
				return nil, false
			}
			return c, true
		}
	}
	return nil, false
}

// MustMarshal is a helper for tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
