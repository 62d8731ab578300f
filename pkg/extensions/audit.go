// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"context"
	"time"
)

// AuditEvent represents one engine operation recorded for compliance review.
//
// Law firms deploying the engine need a defensible record of what the
// verification pipeline did to each document: which citations were extracted,
// which were removed, and why a document was rejected. This struct captures
// that record in a sink-independent shape.
//
// # Event Categories
//
// Events are categorized by type for filtering and alerting:
//   - Extraction: "citation.extract"
//   - Verification: "citation.verify", "citation.pattern_check"
//   - Correction: "citation.correct"
//   - Gating: "document.gate", "document.regenerate"
//   - System: "system.start", "system.stop", "system.error"
//
// # Compliance Fields
//
// For a usable audit trail, always populate:
//   - RequestID: links every event back to one document request
//   - Timestamp: required for trail integrity
//   - Outcome: what the engine decided
//
// Example:
//
//	event := AuditEvent{
//	    EventType:    "citation.verify",
//	    Timestamp:    time.Now().UTC(),
//	    RequestID:    req.RequestID,
//	    Action:       "verify",
//	    ResourceType: "citation",
//	    ResourceID:   citation.NormalizedText,
//	    Outcome:      "not_found",
//	    Metadata: map[string]any{
//	        "reason":      record.Reason,
//	        "duration_ms": elapsed.Milliseconds(),
//	    },
//	}
type AuditEvent struct {
	// EventType categorizes the event for filtering and alerting.
	// Format: "category.action" (e.g. "citation.verify", "document.gate")
	EventType string

	// Timestamp is when the event occurred (always use UTC).
	// If zero, implementations should set it to time.Now().UTC().
	Timestamp time.Time

	// RequestID correlates the event with one document request.
	// Use "system" for events not tied to a request.
	RequestID string

	// Action describes what operation was attempted.
	// Common values: "extract", "verify", "remove", "gate", "regenerate"
	Action string

	// ResourceType is the category of resource involved.
	// Examples: "citation", "document"
	ResourceType string

	// ResourceID is the specific resource instance (optional).
	// For citations this is the normalized citation text.
	ResourceID string

	// Outcome indicates the result of the action.
	// Values: "success", "verified", "international", "not_found",
	// "invalid_format", "network_unavailable", "rejected", "error"
	Outcome string

	// Metadata holds additional event-specific data.
	//
	// Common metadata keys:
	//   - "reason": the verification reason string
	//   - "error": error message if Outcome is "error"
	//   - "duration_ms": operation duration
	//   - "input_bytes": size of the text operated on
	//   - "citation_count": citations found in a document
	//   - "mode": "strict" or "lenient"
	Metadata map[string]any
}

// AuditFilter defines criteria for querying audit events.
//
// All fields are optional; only non-zero values are used as filters.
// Multiple fields are combined with AND logic.
//
// Example:
//
//	// Every strict rejection in the last hour
//	filter := AuditFilter{
//	    EventTypes: []string{"document.gate"},
//	    Outcome:    "rejected",
//	    StartTime:  time.Now().Add(-time.Hour),
//	}
//	events, err := auditor.Query(ctx, filter)
type AuditFilter struct {
	// EventTypes limits results to specific event types.
	// If empty, all event types are included.
	EventTypes []string

	// RequestID limits results to one document request.
	RequestID string

	// StartTime is the earliest event timestamp to include (inclusive).
	// If zero, no lower bound is applied.
	StartTime time.Time

	// EndTime is the latest event timestamp to include (exclusive).
	// If zero, no upper bound is applied.
	EndTime time.Time

	// ResourceType limits results to a resource category.
	ResourceType string

	// ResourceID limits results to one resource instance.
	ResourceID string

	// Outcome limits results to events with a specific outcome.
	Outcome string

	// Limit is the maximum number of events to return.
	// If zero, an implementation-specific default is used.
	Limit int

	// Offset is the number of events to skip (for pagination).
	Offset int
}

// AuditLogger records engine operations for compliance and analysis.
//
// Implementations must be safe for concurrent use by multiple goroutines.
// The engine treats audit logging as fire-and-forget: callers log failures
// but never fail a verification because the audit write failed, and the Log
// method should return quickly (buffer internally if persistence is slow).
//
// # Open Source Behavior
//
// The default NopAuditLogger discards all events. This is appropriate for
// local single-user deployments where audit trails aren't required.
//
// # Hosted Implementation
//
// Hosted deployments send events to SIEM systems (Splunk, Datadog, ELK),
// cloud logging, or a compliance database.
//
// Example implementation:
//
//	type SplunkAuditLogger struct {
//	    client *splunk.Client
//	    index  string
//	}
//
//	func (l *SplunkAuditLogger) Log(ctx context.Context, event AuditEvent) error {
//	    if event.Timestamp.IsZero() {
//	        event.Timestamp = time.Now().UTC()
//	    }
//	    return l.client.Index(ctx, l.index, event)
//	}
type AuditLogger interface {
	// Log records one engine event.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - event: The audit event to record
	//
	// Returns:
	//   - error: nil on success, error if logging failed
	//
	// Implementations should:
	//   1. Set Timestamp if zero
	//   2. Validate required fields (EventType, RequestID)
	//   3. Persist or transmit the event
	//   4. Return quickly (use async if needed)
	Log(ctx context.Context, event AuditEvent) error

	// Query retrieves audit events matching the filter criteria.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - filter: Criteria for selecting events
	//
	// Returns:
	//   - []AuditEvent: Matching events, ordered by Timestamp descending
	//   - error: nil on success, error if query failed
	//
	// Note: NopAuditLogger returns an empty slice (no events stored).
	Query(ctx context.Context, filter AuditFilter) ([]AuditEvent, error)

	// Flush ensures all buffered events are persisted.
	//
	// Call this before application shutdown to prevent event loss.
	// For sync implementations, this may be a no-op.
	Flush(ctx context.Context) error
}

// NopAuditLogger is the default audit logger for open source.
//
// It discards all events without recording them. This is appropriate for
// local single-user deployments where audit trails aren't required.
//
// Thread-safe: this implementation has no mutable state.
//
// Example:
//
//	logger := &NopAuditLogger{}
//	err := logger.Log(ctx, AuditEvent{
//	    EventType: "citation.verify",
//	    RequestID: "req-123",
//	})
//	// err == nil (event discarded)
type NopAuditLogger struct{}

// Log discards the event without recording it.
//
// Always returns nil (success) regardless of event content.
func (l *NopAuditLogger) Log(ctx context.Context, event AuditEvent) error {
	return nil
}

// Query returns an empty slice (no events are stored).
//
// Always returns nil error with empty results.
func (l *NopAuditLogger) Query(ctx context.Context, filter AuditFilter) ([]AuditEvent, error) {
	return []AuditEvent{}, nil
}

// Flush is a no-op since nothing is buffered.
//
// Always returns nil (success).
func (l *NopAuditLogger) Flush(ctx context.Context) error {
	return nil
}

// Compile-time interface compliance check.
// This ensures NopAuditLogger implements AuditLogger.
var _ AuditLogger = (*NopAuditLogger)(nil)
