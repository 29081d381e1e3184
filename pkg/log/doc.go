/*
Package log provides structured logging for mdvault using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific child loggers, configurable log levels, and helper
functions for common logging patterns. All logs include timestamps and
support filtering by severity level.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Thread-safe for concurrent use           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("scanner")                 │          │
	│  │  - WithSyncID("a1b2c3...")                  │          │
	│  │  - WithFileKey("notes/today.md")            │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})
	log.Info("vault opened")

	syncLog := log.WithSyncID(sessionID)
	syncLog.Warn().Str("file_key", key).Err(err).Msg("populate failed, dropping update")

Every sync session is tagged with a session ID (see pkg/vault) so all log
lines produced by one BeginSync/Commit pair can be grep'd together; every
per-file warning also carries the file key, so a single noisy file is easy
to spot across a large directory.
*/
package log
