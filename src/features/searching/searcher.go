package searching

import (
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
)

// Snapshot is one item of an immutable filter request: its identity plus
// pre-folded searchable fields. Snapshots are copied out of the playlist on
// the control path so the worker never touches shared mutable state.
type Snapshot struct {
	ID     uuid.UUID
	Fields []string
}

// Result is the outcome of one filter pass. Apply it only while Current
// still reports its sequence number as the latest; stale results computed
// against an outdated snapshot are discarded on arrival.
type Result struct {
	Seq        uint64
	ListID     uuid.UUID
	FilterText string
	Visible    map[uuid.UUID]bool
}

type request struct {
	seq        uint64
	listID     uuid.UUID
	filterText string
	needles    []string
	snapshot   []Snapshot
}

// Searcher computes filter passes on a background worker so large playlists
// do not block the interactive control path. Communication is strictly
// message passing: copy-in via Submit, copy-out via Results. A new request
// implicitly cancels interest in any prior one's result application
// (last-request-wins), not its execution.
type Searcher struct {
	requests chan request
	results  chan Result
	latest   atomic.Uint64
	done     chan struct{}
}

// NewSearcher starts a searcher with one worker goroutine and the default
// queue depth.
func NewSearcher() *Searcher {
	return NewSearcherWithDepth(8)
}

// NewSearcherWithDepth starts a searcher whose request and result queues
// hold up to depth entries each.
func NewSearcherWithDepth(depth int) *Searcher {
	if depth <= 0 {
		depth = 8
	}
	s := &Searcher{
		requests: make(chan request, depth),
		results:  make(chan Result, depth),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Searcher) run() {
	defer close(s.results)
	for req := range s.requests {
		if !s.Current(req.seq) {
			// A newer request is already queued; skip the work.
			continue
		}
		visible := make(map[uuid.UUID]bool, len(req.snapshot))
		for _, snap := range req.snapshot {
			visible[snap.ID] = Matches(snap.Fields, req.needles)
		}
		select {
		case s.results <- Result{Seq: req.seq, ListID: req.listID, FilterText: req.filterText, Visible: visible}:
		case <-s.done:
			return
		}
	}
}

// Submit queues a filter pass over the given snapshot and returns its
// sequence number, which supersedes every earlier one.
func (s *Searcher) Submit(listID uuid.UUID, snapshot []Snapshot, filterText string) uint64 {
	seq := s.latest.Add(1)
	req := request{
		seq:        seq,
		listID:     listID,
		filterText: filterText,
		needles:    Tokenize(filterText),
		snapshot:   snapshot,
	}
	select {
	case s.requests <- req:
	case <-s.done:
	default:
		// Queue full: drop the oldest pending request to make room; it is
		// superseded anyway.
		select {
		case stale := <-s.requests:
			slog.Debug("dropping superseded filter request", "seq", stale.seq)
		default:
		}
		select {
		case s.requests <- req:
		case <-s.done:
		default:
		}
	}
	return seq
}

// Results delivers completed filter passes, possibly stale.
func (s *Searcher) Results() <-chan Result {
	return s.results
}

// Current reports whether seq is still the latest submitted request.
func (s *Searcher) Current(seq uint64) bool {
	return s.latest.Load() == seq
}

// Close stops the worker. Submit must not be called afterwards.
func (s *Searcher) Close() {
	close(s.done)
	close(s.requests)
}
