// Package orchestrator runs the analysis pipeline end to end: request
// validation, interaction detection, the generative attempt and the
// rules-based fallback. Once a request passes validation it always
// produces a report; generative failures are absorbed, never surfaced.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/giygas/pharma-assistant-api/analysis"
	"github.com/giygas/pharma-assistant-api/interfaces"
	"github.com/giygas/pharma-assistant-api/logging"
	"github.com/giygas/pharma-assistant-api/metrics"
	"github.com/giygas/pharma-assistant-api/report"
)

// Compile-time check that Orchestrator satisfies the analyzer contract
var _ interfaces.Analyzer = (*Orchestrator)(nil)

// Orchestrator wires the pipeline stages together.
type Orchestrator struct {
	catalog   interfaces.CatalogStore
	generator report.TextGenerator
	formatter report.Formatter
	rules     report.RulesGenerator
	timeout   time.Duration

	// Injected for deterministic tests
	now   func() time.Time
	newID func() string
}

// New builds an orchestrator. A nil generator disables the generative
// path entirely, every report is then rules-based. The timeout bounds a
// single generative attempt.
func New(catalog interfaces.CatalogStore, generator report.TextGenerator, timeout time.Duration) *Orchestrator {
	return &Orchestrator{
		catalog:   catalog,
		generator: generator,
		timeout:   timeout,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Analyze runs the full pipeline for one request. The only error it
// returns is *analysis.ClientInputError; once validation passes, the
// caller always receives a document.
func (o *Orchestrator) Analyze(ctx context.Context, req analysis.Request) (*report.Document, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	res := analysis.Detect(req.Medications, req.Allergies, o.catalog)

	if len(res.UnknownMedications) > 0 {
		logging.Warn("Analysis includes unknown medications",
			"patient_id", req.PatientID,
			"unknown", res.UnknownMedications,
		)
	}

	body, source := o.generateBody(ctx, req, res)

	doc := &report.Document{
		AppName:            report.AppName,
		ReportID:           o.newID(),
		PatientID:          req.PatientID,
		PatientName:        req.PatientName,
		GeneratedAt:        o.now().UTC().Format(time.RFC3339),
		Report:             body,
		Source:             source,
		UnknownMedications: res.UnknownMedications,
	}

	metrics.AnalysisReportsTotal.WithLabelValues(string(source)).Inc()
	metrics.AnalysisDuration.WithLabelValues(string(source)).Observe(time.Since(start).Seconds())

	logging.Info("Analysis completed",
		"patient_id", req.PatientID,
		"report_id", doc.ReportID,
		"source", source,
		"findings", len(res.Findings),
		"unknown_medications", len(res.UnknownMedications),
	)

	return doc, nil
}

// generateBody attempts the generative path and falls back to the
// deterministic renderer on any failure, including a validation reject of
// the generated text.
func (o *Orchestrator) generateBody(ctx context.Context, req analysis.Request, res analysis.Result) (string, report.Source) {
	if o.generator == nil {
		return o.rules.Render(req, res, o.now()), report.SourceRules
	}

	genCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	text, err := o.generator.Generate(genCtx, report.BuildPrompt(req, res))
	if err != nil {
		logging.Warn("Generative service unavailable, serving rules-based report",
			"provider", o.generator.Name(),
			"error", err,
		)
		metrics.GenerativeFallbacksTotal.WithLabelValues("service_failure").Inc()
		return o.rules.Render(req, res, o.now()), report.SourceRules
	}

	if err := o.formatter.Validate(text, res.Facts); err != nil {
		logging.Warn("Generated report rejected, serving rules-based report",
			"provider", o.generator.Name(),
			"error", err,
		)
		metrics.GenerativeFallbacksTotal.WithLabelValues(rejectLabel(err)).Inc()
		return o.rules.Render(req, res, o.now()), report.SourceRules
	}

	return text, report.SourceGenerative
}

func rejectLabel(err error) string {
	var violation *report.FormatViolation
	if !errors.As(err, &violation) {
		return "format_violation"
	}
	switch violation.Reason {
	case report.RejectMissingDisclaimer:
		return "missing_disclaimer"
	case report.RejectUnauthorizedDosing:
		return "unauthorized_dosing"
	case report.RejectEmptyOrOversized:
		return "empty_or_oversized"
	default:
		return "format_violation"
	}
}
