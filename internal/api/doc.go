// Package api exposes the learner workspace over HTTP. Handlers decode and
// validate JSON requests, call into the learner service and its sessions,
// and map errors to status codes with safe messages. Routes are registered
// by cmd/server.
package api
