package mapview

// Event is an input to [View.Handle].
type Event interface{ isEvent() }

// Pointer events carry screen coordinates.
type (
	PointerDown struct{ X, Y float64 }
	PointerMove struct{ X, Y float64 }
	PointerUp   struct{}
	Wheel       struct{ X, Y, DeltaY float64 }
)

// Command events.
type (
	ZoomIn       struct{}
	ZoomOut      struct{}
	Reset        struct{}
	ToggleSearch struct{}
	Resize       struct{ Width, Height float64 }
)

// SearchInput replaces the search term.
type SearchInput struct{ Term string }

// SelectNode selects a system by id and centers on it.
type SelectNode struct{ ID int64 }

// SelectResult selects the i-th search result.
type SelectResult struct{ Index int }

func (PointerDown) isEvent()  {}
func (PointerMove) isEvent()  {}
func (PointerUp) isEvent()    {}
func (Wheel) isEvent()        {}
func (ZoomIn) isEvent()       {}
func (ZoomOut) isEvent()      {}
func (Reset) isEvent()        {}
func (ToggleSearch) isEvent() {}
func (SearchInput) isEvent()  {}
func (SelectNode) isEvent()   {}
func (SelectResult) isEvent() {}
func (Resize) isEvent()       {}
