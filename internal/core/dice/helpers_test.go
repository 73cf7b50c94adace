package dice

import (
	"errors"
	"sync"
	"time"
)

// sequenceSource replays fixed values and records each requested range.
type sequenceSource struct {
	mu     sync.Mutex
	values []int
	calls  [][2]int
}

func newSequenceSource(values ...int) *sequenceSource {
	return &sequenceSource{values: values}
}

func (s *sequenceSource) Draw(low, high int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, [2]int{low, high})
	if len(s.values) == 0 {
		return 0, errors.New("sequence exhausted")
	}
	value := s.values[0]
	s.values = s.values[1:]
	return value, nil
}

func (s *sequenceSource) drawCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type failingSource struct {
	err error
}

func (s failingSource) Draw(int, int) (int, error) {
	return 0, s.err
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy unavailable")
}

var fixedTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestRoller(src Source) *Roller {
	return NewRoller(src,
		WithClock(func() time.Time { return fixedTime }),
		WithIDGenerator(func() (string, error) { return "roll-1", nil }),
	)
}
