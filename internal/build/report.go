package build

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/apidocbuilder/internal/metrics"
	"git.home.luguber.info/inful/apidocbuilder/internal/version"
)

// SkipReasonNoChanges is recorded when the staleness gate short-circuits a run.
const SkipReasonNoChanges = "no_changes"

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
	OutcomeSkipped  BuildOutcome = "skipped"
)

// ProductCounts summarizes one product's path through the pipeline.
type ProductCounts struct {
	Sources      int `json:"sources"`
	Parsed       int `json:"parsed"`
	FailedFiles  int `json:"failed_files"`
	Documentable int `json:"documentable"`
	Merged       int `json:"merged"`
	Dropped      int `json:"dropped"`
	Documents    int `json:"documents"`
}

// BuildReport captures the outcome of one pipeline run.
type BuildReport struct {
	SchemaVersion   int
	BuildID         string
	Start           time.Time
	End             time.Time
	Errors          []error // fatal errors causing build abortion
	Warnings        []error // non-fatal issues such as skipped files
	StageDurations  map[string]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	StageCounts     map[StageName]StageCount
	Products        map[string]ProductCounts
	// Fingerprint is the digest of the fingerprint computed for this run.
	Fingerprint string
	Forced      bool
	Outcome     BuildOutcome
	Issues      []ReportIssue
	// SkipReason indicates why the pipeline was short-circuited. Empty if the full pipeline ran.
	SkipReason string
	Version    string
}

// NewBuildReport returns an empty report with a fresh build ID.
func NewBuildReport() *BuildReport {
	return &BuildReport{
		SchemaVersion:   1,
		BuildID:         uuid.NewString(),
		Start:           time.Now(),
		StageDurations:  make(map[string]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		StageCounts:     make(map[StageName]StageCount),
		Products:        make(map[string]ProductCounts),
		Version:         version.Version,
	}
}

// ReportIssueCode enumerates machine-parseable issue identifiers.
type ReportIssueCode string

const (
	IssueConfiguration         ReportIssueCode = "CONFIGURATION"
	IssueParseFailure          ReportIssueCode = "PARSE_FAILURE"
	IssueSkippedFiles          ReportIssueCode = "SKIPPED_FILES"
	IssueCollision             ReportIssueCode = "COLLISION"
	IssueUnsupportedDefinition ReportIssueCode = "UNSUPPORTED_DEFINITION"
	IssueValidation            ReportIssueCode = "VALIDATION"
	IssueRender                ReportIssueCode = "RENDER"
	IssuePersistence           ReportIssueCode = "PERSISTENCE"
	IssueCanceled              ReportIssueCode = "BUILD_CANCELED"
	IssueGenericStageError     ReportIssueCode = "GENERIC_STAGE_ERROR"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ReportIssue is a structured entry describing one problem encountered.
type ReportIssue struct {
	Code     ReportIssueCode `json:"code"`
	Stage    StageName       `json:"stage"`
	Severity IssueSeverity   `json:"severity"`
	Message  string          `json:"message"`
}

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int `json:"success"`
	Warning  int `json:"warning"`
	Fatal    int `json:"fatal"`
	Canceled int `json:"canceled"`
}

// AddIssue appends a structured issue and mirrors severity into Errors/Warnings.
func (r *BuildReport) AddIssue(code ReportIssueCode, stage StageName, severity IssueSeverity, msg string, err error) {
	r.Issues = append(r.Issues, ReportIssue{Code: code, Stage: stage, Severity: severity, Message: msg})
	if err != nil {
		switch severity {
		case SeverityError:
			r.Errors = append(r.Errors, err)
		case SeverityWarning:
			r.Warnings = append(r.Warnings, err)
		}
	}
}

// HasIssue reports whether an issue with code was recorded.
func (r *BuildReport) HasIssue(code ReportIssueCode) bool {
	for _, is := range r.Issues {
		if is.Code == code {
			return true
		}
	}
	return false
}

// Product returns the counters of product p.
func (r *BuildReport) Product(p string) ProductCounts { return r.Products[p] }

// UpdateProduct applies fn to the counters of product p.
func (r *BuildReport) UpdateProduct(p string, fn func(*ProductCounts)) {
	if r.Products == nil {
		r.Products = make(map[string]ProductCounts)
	}
	pc := r.Products[p]
	fn(&pc)
	r.Products[p] = pc
}

// Documents totals the emitted documents of every product.
func (r *BuildReport) Documents() int {
	n := 0
	for _, pc := range r.Products {
		n += pc.Documents
	}
	return n
}

// Finish sets the end time of the report.
func (r *BuildReport) Finish() { r.End = time.Now() }

// RecordStageResult updates the stage counters and emits metrics.
func (r *BuildReport) RecordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	if r.StageCounts == nil {
		r.StageCounts = make(map[StageName]StageCount)
	}
	sc := r.StageCounts[stage]
	switch res {
	case StageResultSuccess:
		sc.Success++
		if recorder != nil {
			recorder.IncStageResult(string(stage), metrics.ResultSuccess)
		}
	case StageResultWarning:
		sc.Warning++
		if recorder != nil {
			recorder.IncStageResult(string(stage), metrics.ResultWarning)
		}
	case StageResultFatal:
		sc.Fatal++
		if recorder != nil {
			recorder.IncStageResult(string(stage), metrics.ResultFatal)
		}
	case StageResultCanceled:
		sc.Canceled++
		if recorder != nil {
			recorder.IncStageResult(string(stage), metrics.ResultCanceled)
		}
	case StageResultSkipped:
		if recorder != nil {
			recorder.IncStageResult(string(stage), metrics.ResultSkipped)
		}
	}
	r.StageCounts[stage] = sc
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	dur := r.End.Sub(r.Start)
	s := fmt.Sprintf("build=%s products=%d documents=%d duration=%s errors=%d warnings=%d stages=%d outcome=%s",
		r.BuildID, len(r.Products), r.Documents(), dur.Truncate(time.Millisecond),
		len(r.Errors), len(r.Warnings), len(r.StageDurations), string(r.Outcome))
	if r.SkipReason != "" {
		s += " skip=" + r.SkipReason
	}
	return s
}

// DeriveOutcome sets Outcome from recorded errors, warnings and the skip reason.
func (r *BuildReport) DeriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if r.SkipReason != "" {
		r.Outcome = OutcomeSkipped
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// MetricsOutcome maps the outcome onto its metrics label.
func (r *BuildReport) MetricsOutcome() metrics.BuildOutcomeLabel {
	switch r.Outcome {
	case OutcomeWarning:
		return metrics.BuildOutcomeWarning
	case OutcomeFailed:
		return metrics.BuildOutcomeFailed
	case OutcomeCanceled:
		return metrics.BuildOutcomeCanceled
	case OutcomeSkipped:
		return metrics.BuildOutcomeSkipped
	case OutcomeSuccess:
		return metrics.BuildOutcomeSuccess
	default:
		return metrics.BuildOutcomeSuccess
	}
}

// Persist writes the report atomically into the provided root directory.
func (r *BuildReport) Persist(root string) error {
	if r.End.IsZero() {
		r.Finish()
		r.DeriveOutcome()
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return fmt.Errorf("ensure root for report: %w", err)
	}
	jb, err := json.MarshalIndent(r.SanitizedCopy(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	jsonPath := filepath.Join(root, "build-report.json")
	tmpJSON := jsonPath + ".tmp"
	if err := os.WriteFile(tmpJSON, jb, 0o600); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmpJSON, jsonPath); err != nil {
		return fmt.Errorf("atomic rename json: %w", err)
	}
	summaryPath := filepath.Join(root, "build-report.txt")
	tmpTxt := summaryPath + ".tmp"
	if err := os.WriteFile(tmpTxt, []byte(r.Summary()+"\n"), 0o600); err != nil {
		return fmt.Errorf("write temp report summary: %w", err)
	}
	if err := os.Rename(tmpTxt, summaryPath); err != nil {
		return fmt.Errorf("atomic rename summary: %w", err)
	}
	return nil
}

// SanitizedCopy returns a copy with errors converted to strings for JSON.
func (r *BuildReport) SanitizedCopy() *BuildReportSerializable {
	stageCounts := make(map[string]StageCount, len(r.StageCounts))
	for k, v := range r.StageCounts {
		stageCounts[string(k)] = v
	}
	sek := make(map[string]string, len(r.StageErrorKinds))
	for k, v := range r.StageErrorKinds {
		sek[string(k)] = string(v)
	}
	durations := make(map[string]int64, len(r.StageDurations))
	for k, v := range r.StageDurations {
		durations[k] = v.Milliseconds()
	}
	issues := r.Issues
	if issues == nil {
		issues = []ReportIssue{}
	}
	products := r.Products
	if products == nil {
		products = map[string]ProductCounts{}
	}

	s := &BuildReportSerializable{
		SchemaVersion:    r.SchemaVersion,
		BuildID:          r.BuildID,
		Start:            r.Start,
		End:              r.End,
		Errors:           make([]string, len(r.Errors)),
		Warnings:         make([]string, len(r.Warnings)),
		StageDurationsMS: durations,
		StageErrorKinds:  sek,
		StageCounts:      stageCounts,
		Products:         products,
		Documents:        r.Documents(),
		Fingerprint:      r.Fingerprint,
		Forced:           r.Forced,
		Outcome:          string(r.Outcome),
		Issues:           issues,
		SkipReason:       r.SkipReason,
		Version:          r.Version,
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	return s
}

// BuildReportSerializable mirrors BuildReport with string errors for JSON output.
type BuildReportSerializable struct {
	SchemaVersion    int                      `json:"schema_version"`
	BuildID          string                   `json:"build_id"`
	Start            time.Time                `json:"start"`
	End              time.Time                `json:"end"`
	Errors           []string                 `json:"errors"`
	Warnings         []string                 `json:"warnings"`
	StageDurationsMS map[string]int64         `json:"stage_durations_ms"`
	StageErrorKinds  map[string]string        `json:"stage_error_kinds"`
	StageCounts      map[string]StageCount    `json:"stage_counts"`
	Products         map[string]ProductCounts `json:"products"`
	Documents        int                      `json:"documents"`
	Fingerprint      string                   `json:"fingerprint,omitempty"`
	Forced           bool                     `json:"forced,omitempty"`
	Outcome          string                   `json:"outcome"`
	Issues           []ReportIssue            `json:"issues"`
	SkipReason       string                   `json:"skip_reason,omitempty"`
	Version          string                   `json:"version,omitempty"`
}
