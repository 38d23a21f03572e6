package search

import (
	"strings"

	"github.com/newsdesk/newsdesk/internal/metrics"
)

// Request is a query released to the network, tagged with its sequence
// number.
type Request struct {
	Seq   uint64
	Query string
}

// Dispatcher debounces keystrokes and orders responses.
//
// Every keystroke bumps the timer generation; only the timer carrying the
// latest generation may dispatch. Every dispatch bumps the sequence; only the
// response carrying the latest sequence may be applied, and only once.
type Dispatcher struct {
	cfg     Config
	metrics *metrics.Metrics

	gen     uint64
	pending string

	seq     uint64
	wanted  uint64
	applied uint64
}

func NewDispatcher(cfg Config, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{cfg: cfg.withDefaults(), metrics: m}
}

func (d *Dispatcher) Config() Config { return d.cfg }

// Input records a keystroke. For an eligible query it returns the generation
// the caller must pass to Fire after Config.Delay. For a short query it
// cancels any pending timer and any wanted response and returns false.
func (d *Dispatcher) Input(q string) (gen uint64, schedule bool) {
	d.gen++
	if !d.cfg.Eligible(q) {
		d.pending = ""
		d.wanted = 0
		return 0, false
	}
	d.pending = strings.TrimSpace(q)
	return d.gen, true
}

// Fire is called when a debounce timer elapses. Only the latest generation
// dispatches.
func (d *Dispatcher) Fire(gen uint64) (Request, bool) {
	if gen != d.gen || d.pending == "" {
		d.metrics.SearchSuperseded()
		return Request{}, false
	}
	q := d.pending
	d.pending = ""
	return d.dispatch(q), true
}

// Submit dispatches q immediately, superseding any pending timer.
func (d *Dispatcher) Submit(q string) (Request, bool) {
	d.gen++
	d.pending = ""
	if !d.cfg.Eligible(q) {
		d.wanted = 0
		return Request{}, false
	}
	return d.dispatch(strings.TrimSpace(q)), true
}

func (d *Dispatcher) dispatch(q string) Request {
	d.seq++
	d.wanted = d.seq
	d.metrics.SearchDispatched()
	return Request{Seq: d.seq, Query: q}
}

// Accept reports whether the response for seq may be applied. A true result
// is returned at most once per sequence.
func (d *Dispatcher) Accept(seq uint64) bool {
	if seq == 0 || seq != d.wanted || seq <= d.applied {
		d.metrics.SearchStale()
		return false
	}
	d.applied = seq
	return true
}

// Cancel drops any pending timer and any wanted response. Requests already in
// flight are left to finish; their results will be refused by Accept.
func (d *Dispatcher) Cancel() {
	d.gen++
	d.pending = ""
	d.wanted = 0
}

// Pending reports whether a debounce timer is armed.
func (d *Dispatcher) Pending() bool { return d.pending != "" }

// InFlight reports whether a dispatched response is still awaited.
func (d *Dispatcher) InFlight() bool { return d.wanted != 0 && d.wanted > d.applied }
