package nadavr

import "sync"

// queryResult is what a waiting query receives: either the reply frame or
// the error that invalidated the wait.
type queryResult struct {
	frame string
	err   error
}

// pendingQuery is a single-use handle for one outstanding query. The slot
// delivers at most one result to it; the done channel is buffered so the
// deliverer never blocks on a caller that already gave up.
type pendingQuery struct {
	done chan queryResult
}

// querySlot is a single-occupancy rendezvous between the command gateway
// and the background reader: at most one unfulfilled query waits for
// exactly one reply at a time. Arming while a query is outstanding
// supersedes it (last query wins, no queueing). The gateway arms and
// cancels; the reader fulfills.
type querySlot struct {
	mu      sync.Mutex
	current *pendingQuery
}

// Arm registers a new pending query, cancelling any query still waiting.
// The superseded waiter receives ErrQuerySuperseded, never a stale frame.
func (s *querySlot) Arm() *pendingQuery {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.done <- queryResult{err: ErrQuerySuperseded}
	}
	pq := &pendingQuery{done: make(chan queryResult, 1)}
	s.current = pq
	return pq
}

// Fulfill delivers frame to the armed query, if any, and clears the slot.
// It reports whether a waiter consumed the frame; false means the frame is
// unsolicited and belongs to the notification path.
func (s *querySlot) Fulfill(frame string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return false
	}
	s.current.done <- queryResult{frame: frame}
	s.current = nil
	return true
}

// Cancel invalidates the armed query, if any, delivering err in place of a
// result. Used on disconnect.
func (s *querySlot) Cancel(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	s.current.done <- queryResult{err: err}
	s.current = nil
}

// CancelIf clears the slot only if pq is still the armed query. The
// timeout and caller-cancellation paths use this so they never invalidate
// a newer query that superseded theirs. When the reader fulfilled pq
// before the caller gave up, the buffered reply is returned so the caller
// can reroute it; a reply never silently disappears on that race.
func (s *querySlot) CancelIf(pq *pendingQuery, err error) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != pq {
		select {
		case res := <-pq.done:
			if res.err == nil {
				return res.frame, true
			}
		default:
		}
		return "", false
	}
	if err != nil {
		s.current.done <- queryResult{err: err}
	}
	s.current = nil
	return "", false
}

// Armed reports whether a query is currently waiting.
func (s *querySlot) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}
