package build

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/apidocbuilder/internal/logfields"
)

// RunStages executes stages in order, recording timing and stopping on the
// first fatal or canceled stage. When the gate marks the run as skippable the
// remaining stages are recorded as skipped and RunStages returns nil.
func RunStages(ctx context.Context, st *State, stages []StageDef) error {
	for i, def := range stages {
		select {
		case <-ctx.Done():
			se := NewCanceledStageError(def.Name, ctx.Err())
			st.Report.StageErrorKinds[def.Name] = se.Kind
			st.Report.AddIssue(IssueCanceled, def.Name, SeverityError, se.Error(), se)
			st.Report.RecordStageResult(def.Name, StageResultCanceled, st.Recorder)
			return se
		default:
		}

		slog.Debug("Stage started", logfields.BuildID(st.Report.BuildID), logfields.Stage(string(def.Name)))
		t0 := time.Now()
		err := def.Fn(ctx, st)
		dur := time.Since(t0)

		st.Report.StageDurations[string(def.Name)] = dur
		if st.Recorder != nil {
			st.Recorder.ObserveStageDuration(string(def.Name), dur)
		}

		out := ClassifyStageResult(def.Name, err)
		if out.Error != nil {
			st.Report.StageErrorKinds[def.Name] = out.Error.Kind
			st.Report.AddIssue(out.IssueCode, out.Stage, out.Severity, out.Error.Error(), out.Error)
		}
		st.Report.RecordStageResult(def.Name, out.Result, st.Recorder)

		slog.Info("Stage complete",
			logfields.BuildID(st.Report.BuildID),
			logfields.Stage(string(def.Name)),
			logfields.DurationMS(float64(dur.Microseconds())/1000),
			logfields.Outcome(string(out.Result)))

		if out.Abort {
			if out.Error != nil {
				return out.Error
			}
			return fmt.Errorf("stage %s aborted", def.Name)
		}

		if def.Name == StageGate && st.Skip {
			slog.Info("Early build exit: fingerprint unchanged and outputs present; skipping remaining stages",
				logfields.BuildID(st.Report.BuildID))
			for _, rest := range stages[i+1:] {
				st.Report.RecordStageResult(rest.Name, StageResultSkipped, st.Recorder)
			}
			st.Report.SkipReason = SkipReasonNoChanges
			return nil
		}
	}
	return nil
}
