// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Client to extend it with custom
// functionality.
type Event int

const (
	// BeforeExecutionStart identifies the event that occurs before the
	// execution starts.
	//
	// When Client fires BeforeExecutionStart, the execution is
	// non-nil but the only field that has been set is the config.
	BeforeExecutionStart Event = iota
	// BeforeAttempt identifies the event that occurs before each
	// attempt, after the config has been finalized.
	//
	// When Client fires BeforeAttempt, the execution's request field
	// is set to the finalized request that WILL BE executed after all
	// BeforeAttempt handlers have finished, with its timeout already
	// set by the timeout policy.
	//
	// BeforeAttempt handlers may modify the finalized request, for
	// example to add headers. It is created afresh for every attempt,
	// so such changes have no side effects on later attempts.
	BeforeAttempt
	// AfterAttemptTimeout identifies the event that occurs after an
	// attempt failed because its timeout elapsed.
	//
	// When Client fires AfterAttemptTimeout, the execution's error
	// field is set to the timeout error, and its attempt timeout
	// counter has been incremented.
	AfterAttemptTimeout
	// AfterAttempt identifies the event that occurs after an attempt
	// is concluded, regardless of whether it concluded successfully or
	// not.
	//
	// When Client fires AfterAttempt, exactly one of the execution's
	// response and error fields is non-nil. It runs before the retry
	// policy is consulted.
	AfterAttempt
	// BeforeRetryWait identifies the event that occurs after the retry
	// policy decided to retry, before the wait preceding the next
	// attempt.
	BeforeRetryWait
	// AfterCancel identifies the event that occurs when the execution
	// stops because the config's context was cancelled, either during
	// an attempt or during a retry wait.
	//
	// When Client fires AfterCancel, the execution's error field holds
	// the final error.
	AfterCancel
	// AfterExecutionEnd identifies the event that occurs after the
	// execution ends.
	//
	// When Client fires AfterExecutionEnd, the execution is in its
	// final state, with the end time set.
	AfterExecutionEnd
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeExecutionStart",
	"BeforeAttempt",
	"AfterAttemptTimeout",
	"AfterAttempt",
	"BeforeRetryWait",
	"AfterCancel",
	"AfterExecutionEnd",
}

// Events returns a slice containing all events which can occur in an
// execution by Client, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeExecutionStart,
		BeforeAttempt,
		AfterAttemptTimeout,
		AfterAttempt,
		BeforeRetryWait,
		AfterCancel,
		AfterExecutionEnd,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
