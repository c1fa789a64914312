package operations

import (
	"time"

	"datacli/internal/dataprocessing"
)

// Stage names used in logs and metrics
const (
	StageLoad    = "load"
	StageAnalyze = "analyze"
	StageWrite   = "write"
)

// Status is the outcome of one run
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// StageTiming records how long one stage took
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// Result describes a single input processed by the runner
type Result struct {
	TraceID   string                     `json:"trace_id"`
	Input     string                     `json:"input"`
	OutputDir string                     `json:"output_dir"`
	Kind      dataprocessing.DatasetKind `json:"kind,omitempty"`
	Status    Status                     `json:"status"`
	Report    dataprocessing.Report      `json:"report,omitempty"`
	Files     []string                   `json:"files,omitempty"`
	Stages    []StageTiming              `json:"stages,omitempty"`
	Duration  time.Duration              `json:"duration"`
	Err       error                      `json:"-"`
}

func (r *Result) addStage(stage string, start time.Time) {
	r.Stages = append(r.Stages, StageTiming{Stage: stage, Duration: time.Since(start)})
}
