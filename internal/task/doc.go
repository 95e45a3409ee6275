// Package task runs background work off the request path. Sessions wrap each
// external call (tutor explanation, quiz generation, reaction analysis,
// camera acquisition) in a Task and hand it to a Dispatcher; the Runner backs
// that with a bounded in-memory queue drained by a fixed pool of workers.
//
// Submission never blocks: a full or closed queue is reported as an error so
// the caller can resolve the work inline with its fallback.
package task
