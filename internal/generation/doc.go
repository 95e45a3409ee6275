// Package generation defines the boundary to the generative-AI service used by
// the tutor, the quiz and the lab bench. A Generator performs the raw calls and
// reports failures as errors; the Fallback layer turns every failure into the
// deterministic text or canned question the sessions display, so sessions
// never see an error from this package.
package generation
