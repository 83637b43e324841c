// Package window selects the bounded conversation context sent to the
// completion provider and identifies what falls out of it.
package window

import (
	"sort"

	"github.com/linegpt/relay/internal/store"
)

// Select orders history chronologically and splits it into the retained
// window (the last n messages) and the stale remainder. The sort is stable,
// so messages sharing a TypedAt keep their input order. With n <= 0 the
// whole history is stale.
func Select(history []store.Message, n int) (window, stale []store.Message) {
	ordered := make([]store.Message, len(history))
	copy(ordered, history)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TypedAt < ordered[j].TypedAt
	})

	if n < 0 {
		n = 0
	}
	cut := len(ordered) - n
	if cut <= 0 {
		return ordered, nil
	}
	return ordered[cut:], ordered[:cut]
}
