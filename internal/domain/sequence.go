package domain

import "sync/atomic"

// Sequence hands out account numbers. Numbers start at 1 and are never reused
// for the lifetime of the sequence.
type Sequence struct {
	last atomic.Int64
}

func NewSequence() *Sequence {
	return &Sequence{}
}

// NewSequenceFrom resumes a sequence whose last issued number was last.
func NewSequenceFrom(last int64) *Sequence {
	s := &Sequence{}
	s.last.Store(last)
	return s
}

func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}

// Current returns the last number handed out, 0 if none.
func (s *Sequence) Current() int64 {
	return s.last.Load()
}
