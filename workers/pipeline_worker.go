package workers

import (
	"github.com/cclibraries/rdmflow/context"
	"github.com/cclibraries/rdmflow/models"
	"github.com/cclibraries/rdmflow/operations"
	"github.com/cclibraries/rdmflow/util/storage"
	"github.com/nsqio/go-nsq"
)

// PipelineWorker reads bag requests from NSQ and runs each one
// through the full pipeline. A pipeline run waits out an entire
// remote transfer, so the worker touches its NSQ message before
// starting and relies on a generous MessageTimeout in the config.
type PipelineWorker struct {
	Context *context.Context
	Journal *storage.PipelineJournal
}

// NewPipelineWorker returns a worker. If the config names a journal
// path, run state will be recorded there.
func NewPipelineWorker(_context *context.Context) (*PipelineWorker, error) {
	worker := &PipelineWorker{
		Context: _context,
	}
	if _context.Config.JournalPath != "" {
		journal, err := storage.NewPipelineJournal(_context.Config.JournalPath)
		if err != nil {
			return nil, err
		}
		worker.Journal = journal
	}
	return worker, nil
}

// HandleMessage runs the pipeline for one queued bag request.
// Returning an error tells NSQ to requeue the message, up to the
// consumer's max_attempts.
func (worker *PipelineWorker) HandleMessage(message *nsq.Message) error {
	request, err := models.BagRequestFromJson(message.Body)
	if err != nil {
		// A garbled message will never parse; don't requeue it.
		worker.Context.MessageLog.Error("Discarding message that does not "+
			"parse as a bag request: %v", err)
		worker.Context.IncrementFailed()
		return nil
	}
	message.Touch()

	pipeline := operations.NewPipeline(worker.Context, request)
	pipeline.State.PackSummary.AttemptNumber = message.Attempts
	if worker.Journal != nil {
		pipeline.UseJournal(worker.Journal)
	}
	err = pipeline.Run()
	if err != nil {
		worker.Context.MessageLog.Error("Run %s failed for %s: %v",
			pipeline.State.RunId, request.BagDir, err)
		worker.Context.IncrementFailed()
		if pipeline.State.PackSummary.ErrorIsFatal ||
			pipeline.State.TransferSummary.ErrorIsFatal ||
			pipeline.State.IngestSummary.ErrorIsFatal {
			// Requeueing a fatal failure just burns another attempt.
			return nil
		}
		return err
	}
	worker.Context.IncrementSucceeded()
	worker.Context.LogStats()
	return nil
}
