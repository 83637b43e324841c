// Package pipeline orchestrates one conversation turn: persist the inbound
// message, select the bounded history window, prune what fell out of it, ask
// the completion provider for a reply, send it, and persist it.
package pipeline

import (
	"context"
	"fmt"

	"github.com/qmuntal/stateless"

	"github.com/linegpt/relay/internal/line"
	"github.com/linegpt/relay/internal/logger"
	"github.com/linegpt/relay/internal/store"
	"github.com/linegpt/relay/internal/window"
)

// Run states. A run moves through them strictly in order; Skipped, Completed
// and Failed are terminal.
type runState stateless.State

var (
	stateValidating        runState = "Validating"
	stateFetchingHistory   runState = "FetchingHistory"
	statePersistingInbound runState = "PersistingInbound"
	stateSelectingWindow   runState = "SelectingWindow"
	stateCompleting        runState = "Completing"
	stateReplying          runState = "Replying"
	statePersistingReply   runState = "PersistingReply"
	stateCompleted         runState = "Completed"
	stateSkipped           runState = "Skipped"
	stateFailed            runState = "Failed"
)

type runTrigger stateless.Trigger

var (
	triggerAdvance runTrigger = "Advance"
	triggerSkip    runTrigger = "Skip"
	triggerFail    runTrigger = "Fail"
)

// newRunMachine builds the state machine enforcing the legal step order for
// one pipeline run.
func newRunMachine() *stateless.StateMachine {
	m := stateless.NewStateMachine(stateValidating)

	m.Configure(stateValidating).
		Permit(triggerAdvance, stateFetchingHistory).
		Permit(triggerSkip, stateSkipped)

	order := []runState{
		stateFetchingHistory,
		statePersistingInbound,
		stateSelectingWindow,
		stateCompleting,
		stateReplying,
		statePersistingReply,
	}
	for i, st := range order {
		next := stateCompleted
		if i+1 < len(order) {
			next = order[i+1]
		}
		m.Configure(st).
			Permit(triggerAdvance, next).
			Permit(triggerFail, stateFailed)
	}

	return m
}

// Completer produces the assistant reply for a window plus the new user text.
type Completer interface {
	Complete(ctx context.Context, window []store.Message, userText string) (string, error)
}

// Replier sends a text reply addressed by a reply token.
type Replier interface {
	Reply(ctx context.Context, replyToken, text string) error
}

// Outcome is the result of one pipeline run. Exactly one of Skipped, Reply or
// Err is meaningful; Stage names the step a failed run died in.
type Outcome struct {
	Skipped bool
	UserID  string
	Reply   string
	Stage   string
	Err     error
}

// Pipeline drives one inbound message through the full turn sequence.
type Pipeline struct {
	store      store.Store
	completer  Completer
	replier    Replier
	windowSize int
}

// New creates a Pipeline over the given collaborators. windowSize is the
// number of prior messages kept as completion context.
func New(st store.Store, completer Completer, replier Replier, windowSize int) *Pipeline {
	return &Pipeline{
		store:      st,
		completer:  completer,
		replier:    replier,
		windowSize: windowSize,
	}
}

// Process runs the turn sequence for one webhook event. Non-text events
// produce a skipped outcome with no store writes. Failures are contained to
// this run; the caller aggregates them.
func (p *Pipeline) Process(ctx context.Context, ev line.Event) Outcome {
	fsm := newRunMachine()
	userID := ev.Source.UserID

	fail := func(err error) Outcome {
		st, _ := fsm.State(ctx)
		stage := fmt.Sprint(st)
		if fireErr := fsm.Fire(triggerFail); fireErr != nil {
			logger.L.Warn("run machine fire error", "error", fireErr)
		}
		logger.L.Error("pipeline run failed", "stage", stage, "user_id", userID, "error", err)
		return Outcome{UserID: userID, Stage: stage, Err: err}
	}
	advance := func() {
		if err := fsm.Fire(triggerAdvance); err != nil {
			logger.L.Warn("run machine fire error", "error", err)
		}
	}

	// Validate
	if !ev.IsTextMessage() {
		if err := fsm.Fire(triggerSkip); err != nil {
			logger.L.Warn("run machine fire error", "error", err)
		}
		logger.L.Debug("skipping non-text event", "type", ev.Type, "message_type", ev.Message.Type)
		return Outcome{Skipped: true, UserID: userID}
	}
	advance()

	// Fetch history before persisting the inbound turn, so the new message is
	// never double-counted by the selector and enters the context exactly
	// once, as the final turn.
	history, err := p.store.QueryByUser(ctx, userID)
	if err != nil {
		return fail(&PersistError{Op: "query", Err: err})
	}
	advance()

	// Persist the inbound turn. This must succeed before the completion call:
	// losing it would make the turn unrecoverable.
	userMsg := store.NewMessage(userID, store.RoleUser, ev.Message.Text)
	if err := p.store.Append(ctx, userMsg); err != nil {
		return fail(&PersistError{Op: "inbound", Err: err})
	}
	advance()

	// Select the window and prune what fell out of it. Pruning is advisory:
	// a failure is logged, not fatal, but every run re-attempts it so history
	// cannot grow unbounded behind a silent error.
	win, stale := window.Select(history, p.windowSize)
	if len(stale) > 0 {
		ids := make([]string, len(stale))
		for i, m := range stale {
			ids[i] = m.ID
		}
		if err := p.store.BatchDelete(ctx, ids); err != nil {
			logger.L.Warn("prune failed", "user_id", userID, "count", len(ids), "error", err)
		} else {
			logger.L.Debug("pruned stale messages", "user_id", userID, "count", len(ids))
		}
	}
	advance()

	// Complete
	assistantContent, err := p.completer.Complete(ctx, win, ev.Message.Text)
	if err != nil {
		return fail(err)
	}
	advance()

	// Reply. On failure the generated content is still persisted below; the
	// send itself is not retried (reply tokens are single-use).
	assistantMsg := store.NewMessage(userID, store.RoleAssistant, assistantContent)
	if replyErr := p.replier.Reply(ctx, ev.ReplyToken, assistantContent); replyErr != nil {
		if err := p.store.Append(ctx, assistantMsg); err != nil {
			logger.L.Error("persist reply after failed send", "user_id", userID, "error", err)
		}
		return fail(&ReplyError{Err: replyErr})
	}
	advance()

	// Persist the assistant turn.
	if err := p.store.Append(ctx, assistantMsg); err != nil {
		return fail(&PersistError{Op: "outbound", Err: err})
	}
	advance()

	logger.L.Info("pipeline run completed", "user_id", userID)
	return Outcome{UserID: userID, Reply: assistantContent}
}
