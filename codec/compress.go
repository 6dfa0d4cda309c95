package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the algorithm of a Compressed codec.
type Compression int

const (
	// Zstd uses github.com/klauspost/compress/zstd.
	Zstd Compression = iota
	// LZ4 uses github.com/pierrec/lz4/v4 frames.
	LZ4
)

func (c Compression) String() string {
	switch c {
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("compression(%d)", int(c))
	}
}

// Compressed wraps another codec and compresses its output.
//
// Every term of an entity stores a full copy of the encoded entity, so large
// entities indexed with a wide length range benefit from compression.
type Compressed struct {
	inner Codec
	alg   Compression

	// zstd encoders/decoders are safe for concurrent EncodeAll/DecodeAll.
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewCompressed creates a codec that compresses inner's output with alg.
func NewCompressed(inner Codec, alg Compression) (*Compressed, error) {
	if inner == nil {
		inner = Default
	}

	c := &Compressed{inner: inner, alg: alg}

	switch alg {
	case Zstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		c.enc, c.dec = enc, dec
	case LZ4:
	default:
		return nil, fmt.Errorf("codec: unknown compression %s", alg)
	}

	return c, nil
}

// Marshal encodes v with the inner codec and compresses the result.
func (c *Compressed) Marshal(v any) ([]byte, error) {
	raw, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}

	if c.alg == Zstd {
		return c.enc.EncodeAll(raw, make([]byte, 0, len(raw))), nil
	}

	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decompresses data and decodes it with the inner codec.
func (c *Compressed) Unmarshal(data []byte, v any) error {
	var (
		raw []byte
		err error
	)

	if c.alg == Zstd {
		raw, err = c.dec.DecodeAll(data, nil)
	} else {
		raw, err = io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	}
	if err != nil {
		return fmt.Errorf("codec %s: decompress: %w", c.Name(), err)
	}

	return c.inner.Unmarshal(raw, v)
}

// Name returns "<inner>+<algorithm>".
func (c *Compressed) Name() string {
	return c.inner.Name() + "+" + c.alg.String()
}
