package utils

import (
	"net/http"
	"time"
)

// HTTPClient is the shared client for outbound API calls.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// GenerationHTTPClient is the client for LLM generation calls, which can run
// well past the ordinary request timeout, image generation especially.
var GenerationHTTPClient = &http.Client{
	Timeout: 60 * time.Second,
}
