package models

import (
	"encoding/json"
	"time"
)

// PipelineState records everything we know about one pipeline run:
// which bag it covers, the transfer task id once one exists, the
// last observed transfer status, and a summary for each stage. The
// pipeline journal persists these so an operator can pick up status
// polling for an in-flight transfer after a process restart.
type PipelineState struct {
	// RunId uniquely identifies this pipeline run. It is assigned
	// locally when the run starts, not by any remote service.
	RunId string

	// BagDir is the source directory the run is preserving.
	BagDir string

	// BagName is the name of the packaged bag, which is also the
	// directory name the ingest service sees at the destination.
	BagName string

	// TaskId is the transfer service's handle for the bulk
	// transfer, empty until the transfer has been submitted.
	TaskId string

	// TransferStatus is the last status token the transfer service
	// reported for TaskId.
	TransferStatus string

	// IngestUUID is the identifier the ingest service assigned when
	// it accepted the bag, if it has.
	IngestUUID string

	PackSummary     *WorkSummary
	TransferSummary *WorkSummary
	IngestSummary   *WorkSummary

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPipelineState creates state for a new run over the bag in bagDir.
func NewPipelineState(runId, bagDir string) *PipelineState {
	now := time.Now().UTC()
	return &PipelineState{
		RunId:           runId,
		BagDir:          bagDir,
		PackSummary:     NewWorkSummary(),
		TransferSummary: NewWorkSummary(),
		IngestSummary:   NewWorkSummary(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Touch updates the UpdatedAt timestamp. Call before persisting.
func (state *PipelineState) Touch() {
	state.UpdatedAt = time.Now().UTC()
}

// Finished returns true when every stage of the run has completed,
// successfully or not.
func (state *PipelineState) Finished() bool {
	return state.PackSummary.Finished() &&
		state.TransferSummary.Finished() &&
		state.IngestSummary.Finished()
}

// Succeeded returns true when every stage of the run completed
// without errors.
func (state *PipelineState) Succeeded() bool {
	return state.PackSummary.Succeeded() &&
		state.TransferSummary.Succeeded() &&
		state.IngestSummary.Succeeded()
}

// ToJson returns the state as a single line of JSON, suitable for
// the JSON log.
func (state *PipelineState) ToJson() (string, error) {
	jsonBytes, err := json.Marshal(state)
	if err != nil {
		return "", err
	}
	return string(jsonBytes), nil
}
