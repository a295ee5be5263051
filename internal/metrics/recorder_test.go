package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type testRecorder struct {
	stageDurations map[string]int
	stageResults   map[string]map[ResultLabel]int
	buildDurations int
	buildOutcomes  map[BuildOutcomeLabel]int
	parsed         map[string]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		stageDurations: map[string]int{},
		stageResults:   map[string]map[ResultLabel]int{},
		buildOutcomes:  map[BuildOutcomeLabel]int{},
		parsed:         map[string]int{},
	}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.stageDurations[stage]++
}
func (t *testRecorder) ObserveBuildDuration(_ time.Duration) { t.buildDurations++ }
func (t *testRecorder) IncStageResult(stage string, result ResultLabel) {
	m, ok := t.stageResults[stage]
	if !ok {
		m = map[ResultLabel]int{}
		t.stageResults[stage] = m
	}
	m[result]++
}
func (t *testRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) { t.buildOutcomes[outcome]++ }
func (t *testRecorder) AddParsedFiles(product string, n int)      { t.parsed[product] += n }
func (t *testRecorder) IncParseFailure(string)                    {}
func (t *testRecorder) AddDropped(string, string, int)            {}
func (t *testRecorder) AddEmittedDocuments(string, int)           {}
func (t *testRecorder) SetParseConcurrency(int)                   {}

var (
	_ Recorder = (*testRecorder)(nil)
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestRecorderInjection(t *testing.T) {
	var r Recorder = newTestRecorder()
	r.ObserveStageDuration("emit_documents", time.Millisecond)
	r.IncStageResult("emit_documents", ResultWarning)
	r.AddParsedFiles("hack", 2)
	r.AddParsedFiles("hack", 3)

	tr := r.(*testRecorder)
	assert.Equal(t, 1, tr.stageDurations["emit_documents"])
	assert.Equal(t, 1, tr.stageResults["emit_documents"][ResultWarning])
	assert.Equal(t, 5, tr.parsed["hack"])
}
