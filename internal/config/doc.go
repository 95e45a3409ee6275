// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional config file. It provides
// type-safe access to the settings needed by the server, the Gemini
// adapter, progress persistence and the lab/camera sessions while keeping
// configuration details separate from session logic.
package config
