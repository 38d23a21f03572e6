package search

import "fmt"

// State is the visibility of the results surface.
type State int

const (
	Hidden State = iota
	Loading
	Shown
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Loading:
		return "loading"
	case Shown:
		return "shown"
	default:
		return "unknown"
	}
}

const (
	failedMessage  = "Search failed. Please try again."
	unknownSource  = "Unknown source"
	noDescription  = "No description available"
	noResultFormat = "No results found for %q"
)

// Row is a rendered line group of the surface. Placeholder rows carry only
// Title.
type Row struct {
	Title       string
	Source      string
	Published   string
	Description string
	URL         string
	Placeholder bool
}

// Surface is the results dropdown. One Surface lives for the whole program;
// it is cleared and refilled, never recreated.
type Surface struct {
	cfg   Config
	state State
	query string
	items []Item
	err   string
}

func NewSurface(cfg Config) *Surface {
	return &Surface{cfg: cfg.withDefaults()}
}

func (s *Surface) State() State  { return s.state }
func (s *Surface) Visible() bool { return s.state != Hidden }
func (s *Surface) Query() string { return s.query }

// Begin shows the surface in its loading state for q.
func (s *Surface) Begin(q string) {
	s.state = Loading
	s.query = q
	s.items = nil
	s.err = ""
}

// Show fills the surface. It only applies while Loading, so results that
// arrive after a dismissal stay hidden.
func (s *Surface) Show(q string, items []Item) bool {
	if s.state != Loading {
		return false
	}
	s.state = Shown
	s.query = q
	s.items = items
	s.err = ""
	return true
}

// Fail replaces the surface contents with msg. Like Show, it only applies
// while Loading.
func (s *Surface) Fail(msg string) bool {
	if s.state != Loading {
		return false
	}
	s.state = Shown
	s.items = nil
	s.err = msg
	return true
}

// Dismiss hides the surface from any state.
func (s *Surface) Dismiss() {
	s.state = Hidden
	s.items = nil
	s.err = ""
}

// Pointer handles a mouse press. A press outside both the surface and the
// search input dismisses it; it reports whether that happened.
func (s *Surface) Pointer(inSurface, inInput bool) bool {
	if s.state == Hidden || inSurface || inInput {
		return false
	}
	s.Dismiss()
	return true
}

// Item returns the i-th visible result.
func (s *Surface) Item(i int) (Item, bool) {
	if s.state != Shown || i < 0 || i >= len(s.items) || i >= s.cfg.MaxResults {
		return Item{}, false
	}
	return s.items[i], true
}

// Len is the number of selectable results.
func (s *Surface) Len() int {
	if s.state != Shown {
		return 0
	}
	return min(len(s.items), s.cfg.MaxResults)
}

// Rows renders the surface contents. It is empty while Hidden or Loading.
func (s *Surface) Rows(format func(Item) string) []Row {
	if s.state != Shown {
		return nil
	}
	if s.err != "" {
		return []Row{{Title: s.err, Placeholder: true}}
	}
	if len(s.items) == 0 {
		return []Row{{Title: fmt.Sprintf(noResultFormat, s.query), Placeholder: true}}
	}

	n := min(len(s.items), s.cfg.MaxResults)
	rows := make([]Row, 0, n)
	for _, it := range s.items[:n] {
		r := Row{Title: it.Title, Source: it.Source, URL: it.URL, Description: it.Description}
		if r.Source == "" {
			r.Source = unknownSource
		}
		if r.Description == "" {
			r.Description = noDescription
		} else {
			r.Description = clip(r.Description, s.cfg.MaxDescription)
		}
		if format != nil {
			r.Published = format(it)
		}
		rows = append(rows, r)
	}
	return rows
}
