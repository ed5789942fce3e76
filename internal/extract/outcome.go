package extract

import (
	"fmt"
	"iter"

	"github.com/dkarpov/takeout-ingest/internal/model"
)

// Outcome is one element of an extractor's stream: a parsed event or the
// error that replaced it. Exactly one field is set. An error element says
// nothing about the elements that follow it.
type Outcome struct {
	Event model.Event
	Err   error
}

func eventOutcome(ev model.Event) Outcome { return Outcome{Event: ev} }
func errOutcome(err error) Outcome        { return Outcome{Err: err} }

// DocumentError reports a structural problem with the top level of a parsed
// file, as opposed to a single malformed record.
type DocumentError struct {
	Path   string
	Reason string
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s in '%s'", e.Reason, e.Path)
}

// errSeq is a stream consisting of a single error outcome.
func errSeq(err error) iter.Seq[Outcome] {
	return func(yield func(Outcome) bool) {
		yield(errOutcome(err))
	}
}
