// internal/blockchain/solbc/transaction/metrics.go
package transaction

import "time"

// Stages reported to a Recorder.
const (
	StageSimulate = "simulate"
	StageSend     = "send"
	StageConfirm  = "confirm"
)

// Recorder receives per-stage outcomes of the submit pipeline.
type Recorder interface {
	ObserveTxStage(stage string, duration time.Duration, ok bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTxStage(string, time.Duration, bool) {}
