// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package online implements existence verification of citations against an
// external case-law search index, with a concurrency-safe result cache.
package online

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/veritaslaw/citegate/pkg/extensions"
	"github.com/veritaslaw/citegate/services/verifier/datatypes"
	"github.com/veritaslaw/citegate/services/verifier/extract"
	"github.com/veritaslaw/citegate/services/verifier/observability"
	"github.com/veritaslaw/citegate/services/verifier/patterns"
	"github.com/veritaslaw/citegate/services/verifier/registry"
)

var tracer = otel.Tracer("citegate.verifier.online")

// =============================================================================
// Reason Strings
// =============================================================================

// Reason strings carried by VerificationRecord. The gate buckets failures by
// these exact values and prefixes, so they are part of the package contract;
// change them only together with the gate.
const (
	// ReasonVerified marks a citation confirmed in the case-law index.
	ReasonVerified = "confirmed in case-law index"

	// ReasonInternational marks a recognized non-domestic citation accepted
	// without a network call.
	ReasonInternational = "recognized international citation, accepted without domestic verification"

	// ReasonNotFound marks a well-formed citation with no match in the index.
	ReasonNotFound = "no matching case found in the case-law index"

	// ReasonNetworkUnavailable marks a citation accepted because the search
	// collaborator could not be reached. Always non-blocking.
	ReasonNetworkUnavailable = "network unavailable: accepted without online verification"

	// ReasonInvalidFormatPrefix prefixes reasons produced by offline checks.
	ReasonInvalidFormatPrefix = "invalid format: "

	// ReasonAmbiguousPrefix prefixes inconclusive online outcomes.
	ReasonAmbiguousPrefix = "verification inconclusive: "
)

// IsNetworkUnavailable reports whether the reason marks an offline-only
// acceptance. The gate never blocks on these.
func IsNetworkUnavailable(reason string) bool {
	return reason == ReasonNetworkUnavailable
}

// IsInvalidFormat reports whether the reason came from an offline check.
func IsInvalidFormat(reason string) bool {
	return strings.HasPrefix(reason, ReasonInvalidFormatPrefix)
}

// IsAmbiguous reports whether the online check was inconclusive.
func IsAmbiguous(reason string) bool {
	return strings.HasPrefix(reason, ReasonAmbiguousPrefix)
}

// =============================================================================
// Verifier
// =============================================================================

// Config configures a Verifier.
type Config struct {
	// Registry is the court and report-series reference data. Required.
	Registry *registry.Registry

	// Validator runs the offline checks before any network call.
	// Default: a validator over Registry with the wall clock.
	Validator *patterns.Validator

	// Cache stores verification records. Default: an in-process MemoryCache.
	Cache Cache

	// Search is the external case-law search collaborator. Required.
	Search SearchClient

	// Timeout bounds each search call so one hung lookup cannot stall the
	// whole document. Default: 5s.
	Timeout time.Duration

	// MaxResults caps hits requested per search. Default: 5.
	MaxResults int

	// Concurrency caps in-flight citation checks per document. Default: 4.
	Concurrency int

	// SearchRate and SearchBurst throttle calls to the search collaborator.
	// Default: 5 calls/second with a burst of 5.
	SearchRate  rate.Limit
	SearchBurst int

	// Metrics records verification counters. Optional.
	Metrics *observability.VerifierMetrics

	// Audit receives one event per verification, fire-and-forget.
	// Default: extensions.NopAuditLogger.
	Audit extensions.AuditLogger
}

// Verifier checks whether citations exist in the indexed case-law corpus.
//
// # Description
//
// Per citation, the verifier normalizes, consults the cache, short-circuits
// recognized international codes, runs the offline validator, and only then
// spends a rate-limited, timeout-bounded search call. Every path degrades to
// a VerificationRecord with a reason; verification never returns an error.
//
// # Thread Safety
//
// Safe for concurrent use. The cache serializes its own access; everything
// else is read-only after construction.
type Verifier struct {
	reg         *registry.Registry
	validator   *patterns.Validator
	cache       Cache
	search      SearchClient
	limiter     *rate.Limiter
	timeout     time.Duration
	maxResults  int
	concurrency int
	metrics     *observability.VerifierMetrics
	audit       extensions.AuditLogger
}

// NewVerifier builds a Verifier, applying defaults for unset options.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("verifier requires a registry")
	}
	if cfg.Search == nil {
		return nil, fmt.Errorf("verifier requires a search client")
	}
	if cfg.Validator == nil {
		cfg.Validator = patterns.NewValidator(cfg.Registry)
	}
	if cfg.Cache == nil {
		cfg.Cache = NewMemoryCache()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.SearchRate <= 0 {
		cfg.SearchRate = rate.Limit(5)
	}
	if cfg.SearchBurst <= 0 {
		cfg.SearchBurst = 5
	}
	if cfg.Audit == nil {
		cfg.Audit = &extensions.NopAuditLogger{}
	}

	return &Verifier{
		reg:         cfg.Registry,
		validator:   cfg.Validator,
		cache:       cfg.Cache,
		search:      cfg.Search,
		limiter:     rate.NewLimiter(cfg.SearchRate, cfg.SearchBurst),
		timeout:     cfg.Timeout,
		maxResults:  cfg.MaxResults,
		concurrency: cfg.Concurrency,
		metrics:     cfg.Metrics,
		audit:       cfg.Audit,
	}, nil
}

// VerifyOne classifies a single citation.
//
// # Description
//
// Performs the following operations:
//  1. Normalizes the citation text.
//  2. Returns the cached record when one exists.
//  3. Short-circuits recognized international codes without a network call.
//  4. Runs the offline validator; any finding means invalid format, again
//     with no network call.
//  5. Queries the search collaborator and inspects titles, snippets and
//     links for the citation or the co-occurrence of its components.
//  6. Degrades a failed search call to acceptance with a network warning.
//
// VerifyOne never fails; every path yields a record with a reason.
func (v *Verifier) VerifyOne(ctx context.Context, citation string) datatypes.VerificationRecord {
	ctx, span := tracer.Start(ctx, "verifier.VerifyOne")
	defer span.End()

	norm := extract.Normalize(citation)
	span.SetAttributes(attribute.String("citation.normalized", norm))

	if rec, ok, err := v.cache.Get(ctx, norm); err != nil {
		slog.Warn("Verification cache read failed, continuing without cache",
			"citation", norm, "error", err)
	} else if ok {
		v.recordCacheLookup(true)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return rec
	}
	v.recordCacheLookup(false)

	rec := v.classify(ctx, norm)
	if err := v.cache.Put(ctx, rec); err != nil {
		slog.Warn("Verification cache write failed", "citation", norm, "error", err)
	}

	outcome := outcomeForRecord(rec)
	span.SetAttributes(attribute.String("verification.outcome", string(outcome)))
	if v.metrics != nil {
		v.metrics.RecordVerification(outcome)
	}
	v.auditVerification(ctx, rec, outcome)

	return rec
}

// VerifyAll extracts and verifies every citation in the text.
//
// # Description
//
// Citations are checked concurrently up to the configured limit; the cache
// serializes shared access. Verified and international citations land in
// Verified, everything else in Unverified with its reason. Every citation in
// the outcome came from this text.
func (v *Verifier) VerifyAll(ctx context.Context, text string) *datatypes.VerificationOutcome {
	ctx, span := tracer.Start(ctx, "verifier.VerifyAll")
	defer span.End()

	matches := extract.ExtractMatches(text)
	span.SetAttributes(attribute.Int("citations.count", len(matches)))
	if v.metrics != nil {
		v.metrics.RecordDocumentCitations(len(matches))
	}

	records := make([]datatypes.VerificationRecord, len(matches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i, m := range matches {
		g.Go(func() error {
			records[i] = v.VerifyOne(gctx, m.RawText)
			return nil
		})
	}
	// Workers never return errors; every failure path is a classification.
	_ = g.Wait()

	outcome := &datatypes.VerificationOutcome{}
	for i, m := range matches {
		rec := records[i]
		cit := datatypes.Citation{
			RawText:        m.RawText,
			NormalizedText: rec.NormalizedText,
			Year:           m.Year,
			Code:           m.Code,
			Classification: datatypes.ClassificationUnclassified,
		}
		switch {
		case rec.Reason == ReasonInternational:
			outcome.Verified = append(outcome.Verified,
				cit.WithClassification(datatypes.ClassificationInternational))
		case rec.Exists && rec.Reason == ReasonVerified:
			outcome.Verified = append(outcome.Verified,
				cit.WithClassification(datatypes.ClassificationDomesticVerified))
		default:
			outcome.Unverified = append(outcome.Unverified, datatypes.UnverifiedCitation{
				Citation: cit.WithClassification(datatypes.ClassificationUnverified),
				Reason:   rec.Reason,
			})
		}
	}
	return outcome
}

// =============================================================================
// Classification
// =============================================================================

func (v *Verifier) classify(ctx context.Context, norm string) datatypes.VerificationRecord {
	rec := datatypes.VerificationRecord{NormalizedText: norm}

	var match extract.Match
	if matches := extract.ExtractMatches(norm); len(matches) > 0 {
		match = matches[0]
	}

	if match.Code != "" {
		if _, ok := v.reg.International(match.Code); ok {
			rec.Exists = true
			rec.Reason = ReasonInternational
			return rec
		}
	}

	if findings := v.validator.Validate(norm); len(findings) > 0 {
		// A malformed citation cannot exist; the search call is not spent.
		rec.Exists = false
		rec.Reason = ReasonInvalidFormatPrefix + findings[0].Message
		return rec
	}

	results, err := v.runSearch(ctx, norm)
	if err != nil {
		slog.Warn("Case-law search unavailable, accepting citation with warning",
			"citation", norm, "error", err)
		rec.Exists = true
		rec.Reason = ReasonNetworkUnavailable
		return rec
	}

	switch url, evidence := v.matchResults(norm, match, results); evidence {
	case evidenceFound:
		rec.Exists = true
		rec.URL = url
		rec.Reason = ReasonVerified
	case evidenceAmbiguous:
		rec.Exists = false
		rec.Reason = ReasonAmbiguousPrefix +
			"a similar citation appears in the index but the components do not fully match"
	default:
		rec.Exists = false
		rec.Reason = ReasonNotFound
	}
	return rec
}

// runSearch throttles and bounds one search collaborator call.
func (v *Verifier) runSearch(ctx context.Context, norm string) ([]SearchResult, error) {
	if err := v.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	start := time.Now()
	results, err := v.search.Search(cctx, searchQuery(norm), v.maxResults)
	if v.metrics != nil {
		v.metrics.RecordSearch(time.Since(start).Seconds(), err)
	}
	return results, err
}

// =============================================================================
// Result Matching
// =============================================================================

type evidence int

const (
	evidenceNotFound evidence = iota
	evidenceAmbiguous
	evidenceFound
)

var digitRunRE = regexp.MustCompile(`\d{1,5}`)

// matchResults inspects search hits for proof the citation exists: either
// the exact normalized form, or the co-occurrence of year, code and number
// within a single hit. A hit carrying the year and code but not the number
// is reported as ambiguous rather than found. This is best-effort evidence,
// not proof; generic series abbreviations can produce false positives.
func (v *Verifier) matchResults(norm string, m extract.Match, results []SearchResult) (string, evidence) {
	needle := matchKey(norm)
	code := matchKey(m.Code)
	year := ""
	if m.Year > 0 {
		year = strconv.Itoa(m.Year)
	}
	number := lastDigitRun(norm, year)

	best := evidenceNotFound
	for _, r := range results {
		hay := matchKey(r.Title + " " + r.Snippet + " " + r.Link)

		if strings.Contains(hay, needle) {
			return r.Link, evidenceFound
		}

		if year == "" || code == "" || !strings.Contains(hay, year) || !strings.Contains(hay, code) {
			continue
		}
		if number != "" && strings.Contains(hay, number) {
			return r.Link, evidenceFound
		}
		best = evidenceAmbiguous
	}
	return "", best
}

// matchKey canonicalizes text for containment checks: dots, apostrophes and
// excess whitespace removed, lowercased.
func matchKey(s string) string {
	return strings.ToLower(registry.NormalizeCode(s))
}

// lastDigitRun returns the final number in the citation (the citation number
// or page), skipping a trailing year repeat such as "(1973)".
func lastDigitRun(norm, year string) string {
	runs := digitRunRE.FindAllString(norm, -1)
	for i := len(runs) - 1; i >= 0; i-- {
		if runs[i] != year {
			return runs[i]
		}
	}
	return ""
}

// searchQuery strips citation punctuation so bracket tokens do not confuse
// the keyword search.
func searchQuery(norm string) string {
	cleaned := strings.NewReplacer("[", " ", "]", " ", "(", " ", ")", " ").Replace(norm)
	return strings.Join(strings.Fields(cleaned), " ")
}

// =============================================================================
// Instrumentation
// =============================================================================

func (v *Verifier) recordCacheLookup(hit bool) {
	if v.metrics != nil {
		v.metrics.RecordCacheLookup(hit)
	}
}

func outcomeForRecord(rec datatypes.VerificationRecord) observability.Outcome {
	switch {
	case rec.Reason == ReasonVerified:
		return observability.OutcomeVerified
	case rec.Reason == ReasonInternational:
		return observability.OutcomeInternational
	case IsNetworkUnavailable(rec.Reason):
		return observability.OutcomeNetworkUnavailable
	case IsInvalidFormat(rec.Reason):
		return observability.OutcomeInvalidFormat
	case IsAmbiguous(rec.Reason):
		return observability.OutcomeAmbiguous
	default:
		return observability.OutcomeNotFound
	}
}

// auditVerification emits one fire-and-forget audit event; a failed write is
// logged and otherwise ignored.
func (v *Verifier) auditVerification(ctx context.Context, rec datatypes.VerificationRecord, outcome observability.Outcome) {
	err := v.audit.Log(ctx, extensions.AuditEvent{
		EventType:    "citation.verify",
		Timestamp:    time.Now().UTC(),
		RequestID:    RequestIDFromContext(ctx),
		Action:       "verify",
		ResourceType: "citation",
		ResourceID:   rec.NormalizedText,
		Outcome:      string(outcome),
		Metadata: map[string]any{
			"reason": rec.Reason,
			"exists": rec.Exists,
		},
	})
	if err != nil {
		slog.Warn("Audit write failed", "citation", rec.NormalizedText, "error", err)
	}
}

// requestIDKey carries the document request ID through verification calls.
type requestIDKey struct{}

// WithRequestID returns a context carrying the request ID for audit
// correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request ID set by WithRequestID, or
// "system" when none was set.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return "system"
}
