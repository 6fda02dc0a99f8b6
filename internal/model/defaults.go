package model

import "time"

// Shared defaults used by the TUI and the headless server.
const (
	DefaultAPIURL         = "http://localhost:8080/api"
	DefaultRequestTimeout = 10 * time.Second
	DefaultListenAddr     = "127.0.0.1:3000"
	UnknownGroup          = "unknown"
)
