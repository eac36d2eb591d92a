package operations

import (
	"fmt"
	"path"
	"time"

	"github.com/cclibraries/rdmflow/bagit"
	"github.com/cclibraries/rdmflow/constants"
	"github.com/cclibraries/rdmflow/context"
	"github.com/cclibraries/rdmflow/models"
	"github.com/cclibraries/rdmflow/network"
	"github.com/cclibraries/rdmflow/util/storage"
	"github.com/satori/go.uuid"
)

// Pipeline sequences the three stages for one bag request:
// package the directory, transfer the bag to the staging endpoint,
// then trigger ingest on the receiving system. Each stage is gated by
// the relevant config completeness check, and each stage's outcome is
// tracked in the run's PipelineState.
//
// The pipeline owns the polling schedule for the transfer stage: it
// blocks, checking the transfer's status at the configured interval
// until the status is terminal or the attempt budget runs out.
type Pipeline struct {
	Context *context.Context
	Request *models.BagRequest
	State   *models.PipelineState

	// Journal, if set, receives the run's state after every stage.
	Journal *storage.PipelineJournal

	bag            *bagit.Bag
	transferClient network.TransferService
	ingestClient   *network.IngestClient
}

// NewPipeline creates a pipeline run for the given request. The run
// gets a locally assigned id, used as its journal key.
func NewPipeline(_context *context.Context, request *models.BagRequest) *Pipeline {
	runId := uuid.NewV4().String()
	return &Pipeline{
		Context: _context,
		Request: request,
		State:   models.NewPipelineState(runId, request.BagDir),
	}
}

// UseJournal tells the pipeline to persist run state to the
// given journal.
func (pipeline *Pipeline) UseJournal(journal *storage.PipelineJournal) {
	pipeline.Journal = journal
}

// UseTransferClient overrides the transfer service the run talks to.
// Without this, the run uses Config.GetTransferClient().
func (pipeline *Pipeline) UseTransferClient(client network.TransferService) {
	pipeline.transferClient = client
}

// UseIngestClient overrides the ingest client the run talks to.
// Without this, the run uses the Context's shared client.
func (pipeline *Pipeline) UseIngestClient(client *network.IngestClient) {
	pipeline.ingestClient = client
}

// Run drives the request through all three stages and returns the
// first error encountered, if any. The run's final state is written
// to the journal and the JSON log either way. Transfer credentials
// are checked up front, before any packaging work, since without them
// the pipeline can never get past stage two.
func (pipeline *Pipeline) Run() error {
	log := pipeline.Context.MessageLog
	log.Info("Run %s: starting pipeline for %s",
		pipeline.State.RunId, pipeline.Request.BagDir)

	if !pipeline.Context.Config.IsTransferConfigComplete() {
		err := models.NewConfigError("Transfer service credentials are not configured.")
		pipeline.State.PackSummary.AddError(err.Error())
		pipeline.finishRun()
		return err
	}

	err := pipeline.packageBag()
	if err == nil {
		err = pipeline.transferBag()
	}
	if err == nil {
		err = pipeline.ingestBag()
	}
	pipeline.finishRun()
	if err == nil {
		log.Info("Run %s: bag %s completed the pipeline",
			pipeline.State.RunId, pipeline.State.BagName)
	}
	return err
}

// packageBag wraps the request's directory into a bag and verifies
// the result before anything is moved.
func (pipeline *Pipeline) packageBag() error {
	summary := pipeline.State.PackSummary
	summary.Start()
	defer summary.Finish()

	bagOperation := NewBagOperation(pipeline.Request.BagDir, pipeline.Request.Metadata)
	bag, err := bagOperation.Pack()
	if err != nil {
		summary.AddError("Could not package %s: %v", pipeline.Request.BagDir, err)
		summary.ErrorIsFatal = true
		summary.Retry = false
		return err
	}
	if !bagOperation.IsValid() {
		err = fmt.Errorf("Bag %s failed validation immediately after packaging", bag.Name())
		summary.AddError(err.Error())
		summary.ErrorIsFatal = true
		summary.Retry = false
		return err
	}
	pipeline.bag = bag
	pipeline.State.BagName = bag.Name()
	pipeline.saveState()
	pipeline.Context.MessageLog.Info("Run %s: packaged and validated bag %s",
		pipeline.State.RunId, bag.Name())
	return nil
}

// transferBag submits the bag's files for bulk transfer from the
// source endpoint to the staging endpoint, then polls until the task
// reaches a terminal status.
func (pipeline *Pipeline) transferBag() error {
	config := pipeline.Context.Config
	summary := pipeline.State.TransferSummary
	summary.Start()
	defer summary.Finish()

	files, err := pipeline.bag.Files()
	if err != nil {
		summary.AddError("Could not list files in bag %s: %v",
			pipeline.State.BagName, err)
		return err
	}
	transfer := NewTransferOperation(config,
		path.Join(config.ProcessingDir, pipeline.State.BagName),
		path.Join(config.IngestDir, pipeline.State.BagName),
		files...)
	if pipeline.transferClient != nil {
		transfer.UseClient(pipeline.transferClient)
	}
	err = transfer.Start(config.SourceEndpoint, config.StagingEndpoint)
	if err != nil {
		summary.AddError("Could not start transfer of bag %s: %v",
			pipeline.State.BagName, err)
		return err
	}
	pipeline.State.TaskId = transfer.TaskId

	// Record the task id before settling in to poll, so the task is
	// findable if this process dies mid-transfer.
	pipeline.saveState()
	pipeline.Context.MessageLog.Info("Run %s: transfer submitted as task %s (%d files)",
		pipeline.State.RunId, transfer.TaskId, len(files))

	status, err := pipeline.waitForTransfer(transfer)
	pipeline.State.TransferStatus = status
	if err != nil {
		summary.AddError(err.Error())
		return err
	}
	if status != constants.TransferStatusSucceeded {
		err = fmt.Errorf("Transfer task %s ended with status %s", transfer.TaskId, status)
		summary.AddError(err.Error())
		summary.ErrorIsFatal = true
		summary.Retry = false
		return err
	}
	pipeline.Context.MessageLog.Info("Run %s: task %s reached status %s",
		pipeline.State.RunId, transfer.TaskId, status)
	return nil
}

// waitForTransfer polls the transfer's status at the configured
// interval until the transfer service reports a terminal status or
// the attempt budget runs out.
func (pipeline *Pipeline) waitForTransfer(transfer *TransferOperation) (string, error) {
	config := pipeline.Context.Config
	maxAttempts := config.MaxPollAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	interval := time.Duration(config.PollIntervalSeconds) * time.Second
	lastStatus := ""
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status, err := transfer.Status()
		if err != nil {
			return lastStatus, err
		}
		lastStatus = status
		if constants.TransferStatusIsTerminal(status) {
			return status, nil
		}
		pipeline.Context.MessageLog.Info("Run %s: task %s status is %s (check %d of %d)",
			pipeline.State.RunId, transfer.TaskId, status, attempt, maxAttempts)
		if attempt < maxAttempts {
			time.Sleep(interval)
		}
	}
	return lastStatus, models.NewTransferError(
		"Task %s did not reach a terminal status after %d checks.",
		transfer.TaskId, maxAttempts)
}

// ingestBag asks the receiving system to accept the transferred bag.
func (pipeline *Pipeline) ingestBag() error {
	config := pipeline.Context.Config
	summary := pipeline.State.IngestSummary
	summary.Start()
	defer summary.Finish()

	if !config.IsIngestConfigComplete() {
		err := models.NewConfigError("Ingest service credentials are not configured.")
		summary.AddError(err.Error())
		return err
	}
	ingest := NewIngestOperation(config, pipeline.State.BagName)
	client := pipeline.ingestClient
	if client == nil {
		// The Context builds one shared ingest client at startup
		// whenever the ingest config is complete.
		client = pipeline.Context.IngestClient
	}
	if client != nil {
		ingest.UseClient(client)
	}
	result, err := ingest.Ingest("", pipeline.Request.TransferType)
	if err != nil {
		summary.AddError("Could not ingest bag %s: %v", pipeline.State.BagName, err)
		return err
	}
	pipeline.State.IngestUUID = result.UUID
	pipeline.Context.MessageLog.Info("Run %s: ingest service accepted bag %s (%s)",
		pipeline.State.RunId, pipeline.State.BagName, result.Message)
	return nil
}

// finishRun persists final state and emits the run record to the
// JSON log.
func (pipeline *Pipeline) finishRun() {
	pipeline.saveState()
	runJson, err := pipeline.State.ToJson()
	if err != nil {
		pipeline.Context.MessageLog.Warning("Run %s: cannot serialize run record: %v",
			pipeline.State.RunId, err)
		return
	}
	pipeline.Context.JsonLog.Println(runJson)
}

// saveState writes the run's current state to the journal, if there
// is one. Journal trouble is logged but never fails the run; the
// journal is bookkeeping, not a stage.
func (pipeline *Pipeline) saveState() {
	pipeline.State.Touch()
	if pipeline.Journal == nil {
		return
	}
	err := pipeline.Journal.SaveRun(pipeline.State)
	if err != nil {
		pipeline.Context.MessageLog.Warning("Run %s: could not save journal record: %v",
			pipeline.State.RunId, err)
	}
}
