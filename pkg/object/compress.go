package object

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// DefaultCompressionLevel is the zlib level used when none is configured.
const DefaultCompressionLevel = zlib.DefaultCompression

// DefaultMaxObjectSize caps how far a stored object may inflate on read.
const DefaultMaxObjectSize int64 = 1 << 30

// ValidCompressionLevel reports whether level is accepted by Compress.
func ValidCompressionLevel(level int) bool {
	return level == zlib.DefaultCompression ||
		(level >= zlib.NoCompression && level <= zlib.BestCompression)
}

// Compress wraps data in a zlib stream at the given level.
func Compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	if err := compressTo(&buf, data, level); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func compressTo(w io.Writer, data []byte, level int) error {
	zw, err := zlib.NewWriterLevel(w, level)
	if err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return fmt.Errorf("compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	return nil
}

// Decompress inflates a zlib stream. Anything that is not a complete, valid
// stream, or that inflates past DefaultMaxObjectSize, yields ErrCorruptData.
func Decompress(data []byte) ([]byte, error) {
	return decompressFrom(bytes.NewReader(data), DefaultMaxObjectSize)
}

func decompressFrom(r io.Reader, limit int64) ([]byte, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: zlib header: %v", ErrCorruptData, err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: inflate: %v", ErrCorruptData, err)
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("%w: inflated size exceeds %d bytes", ErrCorruptData, limit)
	}
	return out, nil
}
