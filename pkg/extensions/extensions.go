// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extensions defines interfaces for deployment-specific
// functionality.
//
// This package provides extension points that allow hosted deployments to
// add capabilities without modifying the core CiteGate codebase. The open
// source version uses no-op defaults for all interfaces.
//
// # Design Philosophy
//
// CiteGate is designed as a fully functional local tool that works without
// any external compliance infrastructure. Firm-specific requirements (audit
// trails, PII redaction) are implemented by providing concrete
// implementations of these interfaces and injecting them via ServiceOptions.
//
// # Extension Categories
//
// The package is organized by domain:
//
//   - audit.go: Compliance audit logging (AuditLogger)
//   - filter.go: Prompt and document transformation (DocumentFilter)
//
// # Usage (Open Source)
//
// The open source version uses no-op implementations:
//
//	opts := extensions.DefaultOptions()
//	svc := services.NewDocumentService(cfg, opts)
//
// # Usage (Hosted)
//
// Hosted deployments provide concrete implementations:
//
//	opts := extensions.ServiceOptions{
//	    AuditLogger:    firm.NewSplunkAuditor(config),
//	    DocumentFilter: firm.NewPIIFilter(policy),
//	}
//	svc := services.NewDocumentService(cfg, opts)
//
// # Thread Safety
//
// All interface implementations must be safe for concurrent use.
// Multiple goroutines may call methods simultaneously.
package extensions

// ServiceOptions groups all extension points for service configuration.
//
// Pass this to service constructors to enable deployment-specific features.
// All fields are optional; nil values are replaced with no-op defaults when
// DefaultOptions() is called or when services check for nil.
//
// Example:
//
//	// Open source: use defaults
//	opts := extensions.DefaultOptions()
//
//	// Hosted: inject implementations
//	opts := extensions.ServiceOptions{
//	    AuditLogger:    splunkAuditor,
//	    DocumentFilter: piiFilter,
//	}
type ServiceOptions struct {
	// AuditLogger records engine operations for compliance.
	// Default: NopAuditLogger (discards all events)
	AuditLogger AuditLogger

	// DocumentFilter transforms prompts and documents at the pipeline
	// boundary. Default: NopDocumentFilter (passes through unchanged)
	DocumentFilter DocumentFilter
}

// DefaultOptions returns ServiceOptions with no-op defaults.
//
// This is the configuration used by the open source version.
// No audit trail, no filtering.
//
// Returns:
//   - ServiceOptions with all fields set to no-op implementations
func DefaultOptions() ServiceOptions {
	return ServiceOptions{
		AuditLogger:    &NopAuditLogger{},
		DocumentFilter: &NopDocumentFilter{},
	}
}

// WithAudit returns a copy of opts with the given AuditLogger.
// Useful for fluent configuration.
func (opts ServiceOptions) WithAudit(logger AuditLogger) ServiceOptions {
	opts.AuditLogger = logger
	return opts
}

// WithFilter returns a copy of opts with the given DocumentFilter.
func (opts ServiceOptions) WithFilter(filter DocumentFilter) ServiceOptions {
	opts.DocumentFilter = filter
	return opts
}
