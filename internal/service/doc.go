// Package service contains the application-level use cases. It owns the
// registry of learner workspaces: it registers learners in the progress
// store, loads their saved progress into a session.Progression, and keeps
// one session.Workspace per learner for the HTTP layer to drive.
//
// The service layer depends on the store interfaces and the session
// package, never on a specific database.
package service
