package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
)

// Source produces uniformly distributed integers.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Source interface {
	// Draw returns a value in [low, high]. It returns a *RangeError when
	// low > high.
	Draw(low, high int) (int, error)
}

// CryptoSource draws from crypto/rand. It cannot be seeded.
type CryptoSource struct {
	reader io.Reader
}

// NewCryptoSource returns a Source backed by crypto/rand.Reader.
func NewCryptoSource() *CryptoSource {
	return &CryptoSource{reader: crand.Reader}
}

// newCryptoSourceFromReader is used by tests to simulate reader failures.
func newCryptoSourceFromReader(reader io.Reader) *CryptoSource {
	return &CryptoSource{reader: reader}
}

// Draw returns a uniformly distributed value in [low, high].
//
// Values are produced by rejection sampling over 64-bit reads so no residue
// class is favored. A single-value range still consumes a read.
func (s *CryptoSource) Draw(low, high int) (int, error) {
	if low > high {
		return 0, &RangeError{Low: low, High: high}
	}
	reader := s.reader
	if reader == nil {
		reader = crand.Reader
	}

	// span wraps to 0 only when the range covers every int64.
	span := uint64(int64(high)-int64(low)) + 1
	var threshold uint64
	if span != 0 {
		threshold = -span % span
	}

	var buf [8]byte
	for {
		if _, err := io.ReadFull(reader, buf[:]); err != nil {
			return 0, &SourceError{Err: fmt.Errorf("read random bytes: %w", err), Low: low, High: high}
		}
		value := binary.LittleEndian.Uint64(buf[:])
		if span == 0 {
			return int(int64(value)), nil
		}
		if value >= threshold {
			return low + int(value%span), nil
		}
	}
}
