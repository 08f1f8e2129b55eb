package player

// drawSlot holds at most one pending draw. put overwrites, so only the most
// recent request survives until the next paint.
type drawSlot struct {
	index int
	full  bool
}

func (s *drawSlot) put(i int) {
	s.index = i
	s.full = true
}

func (s *drawSlot) take() (int, bool) {
	if !s.full {
		return 0, false
	}
	s.full = false
	return s.index, true
}

func (s *drawSlot) peek() (int, bool) {
	return s.index, s.full
}
