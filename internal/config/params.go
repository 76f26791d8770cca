package config

import "sync/atomic"

// ParamStore holds the live strategy parameter record behind a single atomic
// pointer. Readers always observe a complete record; promotion replaces the
// whole value, never individual fields.
type ParamStore struct {
	p atomic.Pointer[Params]
}

// NewParamStore seeds the store with an initial record.
func NewParamStore(p Params) *ParamStore {
	s := &ParamStore{}
	s.p.Store(&p)
	return s
}

// Current returns a copy of the live record.
func (s *ParamStore) Current() Params {
	return *s.p.Load()
}

// Promote swaps the live record for a new one.
func (s *ParamStore) Promote(p Params) {
	s.p.Store(&p)
}
