package build

import (
	"errors"

	dberrors "git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
)

// StageOutcome is the normalized result of one stage execution.
type StageOutcome struct {
	Stage     StageName
	Error     *StageError
	Result    StageResult
	IssueCode ReportIssueCode
	Severity  IssueSeverity
	Abort     bool
}

func resultFromStageErrorKind(k StageErrorKind) StageResult {
	switch k {
	case StageErrorWarning:
		return StageResultWarning
	case StageErrorCanceled:
		return StageResultCanceled
	case StageErrorFatal:
		return StageResultFatal
	default:
		return StageResultFatal
	}
}

func severityFromStageErrorKind(k StageErrorKind) IssueSeverity {
	if k == StageErrorWarning {
		return SeverityWarning
	}
	return SeverityError
}

// ClassifyStageResult converts a raw error from a stage into a StageOutcome.
// Errors that are not StageErrors are fatal.
func ClassifyStageResult(stage StageName, err error) StageOutcome {
	if err == nil {
		return StageOutcome{Stage: stage, Result: StageResultSuccess}
	}

	var se *StageError
	if !errors.As(err, &se) {
		se = NewFatalStageError(stage, err)
	}
	if se.Kind == StageErrorCanceled {
		return StageOutcome{
			Stage:     stage,
			Error:     se,
			Result:    StageResultCanceled,
			IssueCode: IssueCanceled,
			Severity:  SeverityError,
			Abort:     true,
		}
	}

	return StageOutcome{
		Stage:     stage,
		Error:     se,
		Result:    resultFromStageErrorKind(se.Kind),
		IssueCode: classifyIssueCode(se),
		Severity:  severityFromStageErrorKind(se.Kind),
		Abort:     se.Kind == StageErrorFatal,
	}
}

func classifyIssueCode(se *StageError) ReportIssueCode {
	if se.Stage == StageParseSources && se.Kind == StageErrorWarning {
		return IssueSkippedFiles
	}
	switch dberrors.GetCategory(se.Err) {
	case dberrors.CategoryConfig:
		return IssueConfiguration
	case dberrors.CategoryParse:
		return IssueParseFailure
	case dberrors.CategoryCollision:
		return IssueCollision
	case dberrors.CategoryUnsupported:
		return IssueUnsupportedDefinition
	case dberrors.CategoryValidation:
		return IssueValidation
	case dberrors.CategoryFileSystem, dberrors.CategoryStorage:
		return IssuePersistence
	case dberrors.CategoryRender:
		return IssueRender
	default:
		return IssueGenericStageError
	}
}
