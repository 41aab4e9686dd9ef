package rrc

// CsResult is the completion value cell-selection and cell-reselection
// produce (spec §3).
type CsResult int

const (
	SameCell CsResult = iota
	ChangedCell
	NoCell
)

func (r CsResult) String() string {
	switch r {
	case SameCell:
		return "same_cell"
	case ChangedCell:
		return "changed_cell"
	default:
		return "no_cell"
	}
}
