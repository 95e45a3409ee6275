// Package events carries learner progress changes from the progression store
// to the components that react to them.
//
// The progression store emits a ProgressEvent after every successful XP award
// without knowing who listens; the ProgressHandler persists the new snapshot
// and updates metrics. This keeps the session packages free of storage and
// metrics dependencies.
//
// The primary components are:
// - ProgressEvent: a single XP award and its resulting progress
// - EventHandler: interface for components that can handle events
// - EventEmitter: interface for components that can emit events
package events
