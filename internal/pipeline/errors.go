package pipeline

import "fmt"

// PersistError reports a failed store operation. It is fatal when persisting
// the inbound turn and advisory when pruning.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// ReplyError reports a failed outbound send. The generated assistant content
// is still persisted when this occurs.
type ReplyError struct {
	Err error
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("reply: %v", e.Err)
}

func (e *ReplyError) Unwrap() error { return e.Err }
