// Package gemini provides an implementation of the generation.Generator interface
// backed by Google's Gemini API.
//
// This package is an infrastructure adapter: it builds prompts for the tutor,
// quiz and reaction calls, sends them through the genai client with retry and
// exponential backoff, and translates responses (and failures) into the values
// and sentinel errors defined by the generation package.
//
// Quiz questions are requested as JSON constrained by a response schema so the
// model answers with exactly the fields the domain expects.
package gemini
