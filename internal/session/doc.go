// Package session implements the per-learner state machines of the lab:
// progression, the AI tutor, the molecule viewer with its AR camera, the lab
// bench and the theory quiz, plus the Workspace that mounts one view session
// at a time.
//
// Each session keeps its state in a plain value whose transitions are pure
// methods; the session type guards that value with a mutex and runs external
// calls as tasks on a task.Dispatcher. Requests are numbered and a completion
// whose number is no longer current is dropped, so the latest request always
// wins regardless of completion order. Locks are never held while submitting
// a task, and a session lock may be held while calling into the progression
// store but never the other way round.
package session
