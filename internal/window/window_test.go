package window

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/linegpt/relay/internal/store"
)

func msg(id, typedAt string) store.Message {
	return store.Message{ID: id, UserID: "u1", Role: store.RoleUser, Content: id, TypedAt: typedAt}
}

func ids(msgs []store.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func TestSelect_OrdersAndBounds(t *testing.T) {
	// Deliberately unordered input.
	history := []store.Message{
		msg("c", "2023-03-11T10:00:03.000000000Z"),
		msg("a", "2023-03-11T10:00:01.000000000Z"),
		msg("d", "2023-03-11T10:00:04.000000000Z"),
		msg("b", "2023-03-11T10:00:02.000000000Z"),
	}

	window, stale := Select(history, 3)
	require.Equal(t, []string{"b", "c", "d"}, ids(window))
	require.Equal(t, []string{"a"}, ids(stale))
}

func TestSelect_WindowBound(t *testing.T) {
	for _, tc := range []struct {
		length, n int
	}{
		{0, 3}, {1, 3}, {3, 3}, {4, 3}, {10, 3}, {10, 1}, {5, 5},
	} {
		t.Run(fmt.Sprintf("L%d_N%d", tc.length, tc.n), func(t *testing.T) {
			history := make([]store.Message, tc.length)
			for i := range history {
				history[i] = msg(fmt.Sprintf("m%02d", i), fmt.Sprintf("2023-03-11T10:00:%02d.000000000Z", i))
			}

			window, stale := Select(history, tc.n)

			want := tc.length
			if tc.n < want {
				want = tc.n
			}
			require.Len(t, window, want)
			require.Len(t, stale, tc.length-want)

			// Stale and window partition the history with stale strictly older.
			seen := map[string]bool{}
			for _, m := range stale {
				seen[m.ID] = true
			}
			for _, m := range window {
				require.False(t, seen[m.ID], "message %s in both window and stale", m.ID)
			}
			for i := 1; i < len(window); i++ {
				require.LessOrEqual(t, window[i-1].TypedAt, window[i].TypedAt)
			}
			if len(stale) > 0 && len(window) > 0 {
				require.LessOrEqual(t, stale[len(stale)-1].TypedAt, window[0].TypedAt)
			}
		})
	}
}

func TestSelect_FullHistoryWhenShort(t *testing.T) {
	history := []store.Message{
		msg("b", "2023-03-11T10:00:02.000000000Z"),
		msg("a", "2023-03-11T10:00:01.000000000Z"),
	}

	window, stale := Select(history, 3)
	require.Equal(t, []string{"a", "b"}, ids(window))
	require.Empty(t, stale)
}

func TestSelect_StableOnEqualTimestamps(t *testing.T) {
	ts := "2023-03-11T10:00:00.000000000Z"
	history := []store.Message{msg("first", ts), msg("second", ts), msg("third", ts)}

	window, stale := Select(history, 2)
	require.Equal(t, []string{"second", "third"}, ids(window))
	require.Equal(t, []string{"first"}, ids(stale))
}

func TestSelect_NonPositiveN(t *testing.T) {
	history := []store.Message{
		msg("a", "2023-03-11T10:00:01.000000000Z"),
		msg("b", "2023-03-11T10:00:02.000000000Z"),
	}

	window, stale := Select(history, 0)
	require.Empty(t, window)
	require.Equal(t, []string{"a", "b"}, ids(stale))

	window, stale = Select(history, -1)
	require.Empty(t, window)
	require.Len(t, stale, 2)
}

func TestSelect_DoesNotMutateInput(t *testing.T) {
	history := []store.Message{
		msg("b", "2023-03-11T10:00:02.000000000Z"),
		msg("a", "2023-03-11T10:00:01.000000000Z"),
	}

	Select(history, 1)
	require.Equal(t, []string{"b", "a"}, ids(history))
}
