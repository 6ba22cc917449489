package deps

import "slices"

// Sequence orders the names of m so that each name's dependencies are placed
// ahead of it. Entries are picked in map order; placing a name splices it into
// the result and then places each of its dependencies at the same position,
// advancing past whatever each placement inserted. A name that was already
// placed inserts nothing, which is what terminates cycles: in a cycle the
// partner reached second lands after the one that referenced it, and the
// generator covers that with a deferred reference.
//
// Every name of m appears exactly once. Dependencies that are not keys of m
// are ignored. m itself is not modified.
func Sequence(m Map) []string {
	s := &sequencer{
		remaining: make(map[string][]string, len(m)),
		out:       make([]string, 0, len(m)),
	}
	for _, e := range m {
		if _, dup := s.remaining[e.Name]; !dup {
			s.remaining[e.Name] = e.Deps
		}
	}
	for _, e := range m {
		s.place(e.Name, len(s.out))
	}
	return s.out
}

type sequencer struct {
	remaining map[string][]string
	out       []string
}

// place splices name into out at pos and returns how many names were
// inserted, its dependencies included.
func (s *sequencer) place(name string, pos int) int {
	deps, ok := s.remaining[name]
	if !ok {
		return 0
	}
	delete(s.remaining, name)
	s.out = slices.Insert(s.out, pos, name)
	inserted := 1
	for _, d := range deps {
		n := s.place(d, pos)
		pos += n
		inserted += n
	}
	return inserted
}
