// Package api provides the HTTP surface of the nova backend: the chat
// endpoint plus the speech and health utility endpoints.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8001")
	ListenAddr string

	// Model is the chat model name reported by the health endpoint.
	Model string

	// LLMTarget is the language-model endpoint reported by the health
	// endpoint.
	LLMTarget string
}
