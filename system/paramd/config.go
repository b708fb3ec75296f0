package paramd

import (
	"log/slog"
	"time"
)

// Config holds the serializable server settings.
type Config struct {
	// File is the param source published to clients.
	File string
	// Addr is the TCP listen address.
	Addr string
	// Republish, when positive, rebroadcasts the current generation
	// periodically so late subscribers converge without asking.
	Republish time.Duration
}

// Spec is the runtime specification for a server.
type Spec struct {
	Config *Config
	Log    *slog.Logger
}
