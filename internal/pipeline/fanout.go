package pipeline

import (
	"context"
	"sync"

	"github.com/linegpt/relay/internal/line"
)

// Fanout runs the pipeline once per webhook event, concurrently, and
// aggregates one outcome per event in input order. A per-user lock serializes
// runs for the same user so a burst of messages cannot interleave fetch and
// prune against each other.
type Fanout struct {
	pipeline *Pipeline

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// NewFanout creates a Fanout over the given pipeline.
func NewFanout(p *Pipeline) *Fanout {
	return &Fanout{
		pipeline:  p,
		userLocks: make(map[string]*sync.Mutex),
	}
}

func (f *Fanout) userLock(userID string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		f.userLocks[userID] = l
	}
	return l
}

// Process runs every event's pipeline to completion. One event's failure
// never cancels or blocks its siblings; its outcome slot carries the error.
func (f *Fanout) Process(ctx context.Context, events []line.Event) []Outcome {
	outcomes := make([]Outcome, len(events))

	var wg sync.WaitGroup
	for i, ev := range events {
		wg.Add(1)
		go func(i int, ev line.Event) {
			defer wg.Done()
			if ev.IsTextMessage() {
				l := f.userLock(ev.Source.UserID)
				l.Lock()
				defer l.Unlock()
			}
			outcomes[i] = f.pipeline.Process(ctx, ev)
		}(i, ev)
	}
	wg.Wait()

	return outcomes
}
