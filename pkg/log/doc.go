/*
Package log provides structured logging for graphstore using zerolog.

The log package wraps zerolog to provide JSON-structured logging with
component-specific loggers, configurable log levels, and helper functions for
common logging patterns. All logs include timestamps and support filtering by
severity level for production debugging.

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
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stdout, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("txn")                     │          │
	│  │  - WithTxID(42)                             │          │
	│  │  - WithNodeID(7)                             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Log Output                       │          │
	│  │                                              │          │
	│  │  JSON Format:                               │          │
	│  │  {                                           │          │
	│  │    "level": "info",                         │          │
	│  │    "component": "txn",                      │          │
	│  │    "tx_id": 42,                             │          │
	│  │    "time": "2026-07-31T10:30:00Z",          │          │
	│  │    "message": "transaction committed"       │          │
	│  │  }                                           │          │
	│  │                                              │          │
	│  │  Console Format:                            │          │
	│  │  10:30AM INF transaction committed component=txn tx_id=42 │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Core Components

Global Logger:
  - Package-level zerolog.Logger instance
  - Initialized once via log.Init()
  - Accessible from all graphstore packages
  - Thread-safe concurrent writes

Log Levels:
  - Debug: Detailed debugging information (chain splices, lock acquisition)
  - Info: General informational messages (transaction lifecycle)
  - Warn: Warning messages (potential issues, e.g. lock contention)
  - Error: Error messages (prepare/commit/rollback failures)
  - Fatal: Critical errors (process exits)

Configuration:
  - Level: Filter messages below threshold
  - JSONOutput: JSON vs human-readable console
  - Output: io.Writer for log destination (stdout, file)

Context Loggers:
  - WithComponent: Add component name to all logs
  - WithTxID: Add transaction id context
  - WithNodeID: Add graph node id context

# Usage

Initializing the Logger:

	import "github.com/cuemby/graphstore/pkg/log"

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Simple Logging:

	log.Info("store opened")
	log.Debug("checking dense-node threshold")
	log.Warn("lock wait exceeded 100ms")
	log.Error("commit failed")

Structured Logging:

	log.Logger.Info().
		Int64("tx_id", txID).
		Int("command_count", n).
		Msg("transaction prepared")

Component Loggers:

	txnLog := log.WithComponent("txn")
	txnLog.Info().Msg("starting recovery replay")

	commitLog := log.WithTxID(txID)
	commitLog.Info().Msg("committing")

# Design Patterns

Global Logger Pattern:
  - Single package-level Logger instance
  - Initialized once at application start
  - Accessible from all packages without passing
  - Simplifies logging in deeply nested calls

Context Logger Pattern:
  - Create child loggers with context fields (tx_id, node_id, component)
  - pkg/txn's Prepare/Commit/Rollback build one with WithTxID
  - Avoids repetitive field specification

Structured Logging Pattern:
  - Use typed fields (.Str, .Int64, .Err)
  - Enables log aggregation and querying
  - Parseable by log analysis tools

# Security

Log Content:
  - Never log property values directly; log key ids and counts instead
  - Redact tokens, passwords, API keys if ever carried through context
*/
package log
