package measure

// Store is the measured-cells collection: exactly one serving cell plus
// an ordered sequence of neighbours (spec §3 "measured-cells store").
type Store struct {
	serving    *Cell
	neighbours []*Cell
}

// NewStore creates an empty store with no serving cell yet.
func NewStore() *Store {
	return &Store{}
}

// ServingCell returns the current serving cell, or nil before the first
// AddCell/SetServingCell call.
func (s *Store) ServingCell() *Cell {
	return s.serving
}

// HasServingCell reports whether a serving cell has been designated.
func (s *Store) HasServingCell() bool {
	return s.serving != nil
}

// Neighbours returns the ordered neighbour list. Callers must not mutate
// the returned slice.
func (s *Store) Neighbours() []*Cell {
	return s.neighbours
}

// AddCell adds a freshly discovered cell as a neighbour, unless a cell
// with the same PhyCell identity is already known (serving or
// neighbour), in which case it is a no-op returning the existing entry.
// Mirrors add_meas_cell.
func (s *Store) AddCell(phy PhyCell) *Cell {
	if existing := s.Find(phy); existing != nil {
		return existing
	}
	c := NewCell(phy)
	s.neighbours = append(s.neighbours, c)
	return c
}

// Find looks up a cell (serving or neighbour) by PhyCell identity.
func (s *Store) Find(phy PhyCell) *Cell {
	if s.serving != nil && s.serving.Phy == phy {
		return s.serving
	}
	for _, n := range s.neighbours {
		if n.Phy == phy {
			return n
		}
	}
	return nil
}

// SetServingCell promotes a known neighbour (or creates a fresh entry) to
// serving. If discard is true, the previous serving cell (if any) is
// dropped entirely; otherwise it is pushed onto the neighbour list.
// Mirrors set_serving_cell(phy_cell, discard). Invariant: exactly one
// cell is serving after this call.
func (s *Store) SetServingCell(phy PhyCell, discard bool) *Cell {
	var next *Cell
	// Look among neighbours first so we promote rather than duplicate.
	for i, n := range s.neighbours {
		if n.Phy == phy {
			next = n
			s.neighbours = append(s.neighbours[:i], s.neighbours[i+1:]...)
			break
		}
	}
	if next == nil {
		if s.serving != nil && s.serving.Phy == phy {
			next = s.serving
		} else {
			next = NewCell(phy)
		}
	}

	if s.serving != nil && s.serving != next {
		if !discard {
			s.neighbours = append(s.neighbours, s.serving)
		}
	}
	s.serving = next
	return next
}

// CloneServing returns a shallow copy of the current serving cell,
// suitable for stashing as ho_src_cell before a handover overwrites the
// serving cell in place (design note "handover requires cloning the
// source cell before overwriting serving").
func (s *Store) CloneServing() *Cell {
	if s.serving == nil {
		return nil
	}
	clone := *s.serving
	return &clone
}

// Candidates returns the serving cell followed by all neighbours, the
// iteration order cell-selection uses ("current serving cell tried
// first").
func (s *Store) Candidates() []*Cell {
	if s.serving == nil {
		return append([]*Cell(nil), s.neighbours...)
	}
	out := make([]*Cell, 0, len(s.neighbours)+1)
	out = append(out, s.serving)
	out = append(out, s.neighbours...)
	return out
}
