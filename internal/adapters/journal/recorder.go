package journal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/build"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/journal"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// Recorder is a ledger observer that buffers order events in memory during a
// match. Nothing touches storage until Flush.
type Recorder struct {
	mu      sync.Mutex
	match   *journal.Match
	dropped int
	lastErr error
}

var _ build.Observer = (*Recorder)(nil)

// NewRecorder starts recording a match
func NewRecorder(scenario, mapName string, seed uint64, clock shared.Clock) (*Recorder, error) {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	match, err := journal.NewMatch(scenario, mapName, seed, clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to start match journal: %w", err)
	}
	return &Recorder{match: match}, nil
}

func (r *Recorder) OrderCreated(order build.OrderView) {
	r.record(journal.EventFromView(journal.EventCreated, order))
}

func (r *Recorder) OrderAssigned(order build.OrderView, _ shared.UnitID) {
	r.record(journal.EventFromView(journal.EventAssigned, order))
}

func (r *Recorder) OrderRemoved(order build.OrderView, reason build.RemovalReason) {
	e := journal.EventFromView(journal.EventRemoved, order)
	e.Reason = reason
	r.record(e)
}

// record keeps the first error and counts every rejected event; the ledger
// cannot be interrupted by a journal problem
func (r *Recorder) record(e journal.OrderEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.match.Record(e); err != nil {
		r.dropped++
		if r.lastErr == nil {
			r.lastErr = err
		}
	}
}

// Dropped reports how many events the match refused, and the first reason
func (r *Recorder) Dropped() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped, r.lastErr
}

// Match returns the match being recorded
func (r *Recorder) Match() *journal.Match {
	return r.match
}

// Flush closes the match after frames and saves it
func (r *Recorder) Flush(ctx context.Context, repo journal.MatchRepository, frames shared.Frame, at time.Time) (*journal.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.match.Finish(frames, at); err != nil {
		return nil, fmt.Errorf("failed to finish match: %w", err)
	}
	if err := repo.Save(ctx, r.match); err != nil {
		return nil, fmt.Errorf("failed to save match journal: %w", err)
	}
	return r.match, nil
}
