package binding

// ViewKind selects which row layout a position is rendered with.
type ViewKind int

const (
	// ViewKindPrimary is the expanded "today" layout with the art icon.
	ViewKindPrimary ViewKind = iota
	// ViewKindStandard is the compact layout used for every other row.
	ViewKindStandard
)

// ViewKindCount is the number of distinct view kinds. Renderers size their
// recycling pools with it.
const ViewKindCount = 2

func (k ViewKind) String() string {
	switch k {
	case ViewKindPrimary:
		return "primary"
	case ViewKindStandard:
		return "standard"
	default:
		return "invalid"
	}
}

// KindFor returns the view kind for a position. Only position 0 under the
// today layout is primary.
func KindFor(position int, useTodayLayout bool) ViewKind {
	if position == 0 && useTodayLayout {
		return ViewKindPrimary
	}
	return ViewKindStandard
}
