package operations

import (
	"path"

	"github.com/cclibraries/rdmflow/models"
	"github.com/cclibraries/rdmflow/network"
)

// TransferOperation drives one asynchronous bulk transfer between two
// named endpoints and exposes polling for its terminal status. Each
// operation owns its own file list; files may be added until Start is
// called. After a successful Start the operation has a task id and is
// eligible for Status queries.
//
// The operation does no polling of its own. The caller owns the
// schedule: poll interval, timeout and maximum attempts all belong to
// the pipeline driver, which may query Status any number of times
// once a task id exists.
type TransferOperation struct {
	// Config supplies the authenticated transfer client.
	Config *models.Config

	// SourceDir is the directory on the source endpoint that file
	// paths are relative to.
	SourceDir string

	// DestDir is the directory on the destination endpoint that
	// files are moved into, preserving their relative paths.
	DestDir string

	// TaskId is the transfer service's handle for this transfer.
	// Empty until Start succeeds; set exactly once.
	TaskId string

	// LastStatus is the status token most recently returned by
	// Status, for callers that want it without another remote call.
	LastStatus string

	files  []string
	client network.TransferService
}

// NewTransferOperation creates a transfer of the given files (paths
// relative to sourceDir) from sourceDir to destDir. The operation
// gets its own freshly allocated file list; more files may be added
// with AddFile before Start.
func NewTransferOperation(config *models.Config, sourceDir, destDir string, files ...string) *TransferOperation {
	operation := &TransferOperation{
		Config:    config,
		SourceDir: sourceDir,
		DestDir:   destDir,
		files:     make([]string, 0, len(files)),
	}
	operation.files = append(operation.files, files...)
	return operation
}

// AddFile appends one relative path to the pending file list. No
// dedup is done; the caller is responsible for not double-adding.
func (operation *TransferOperation) AddFile(relPath string) {
	operation.files = append(operation.files, relPath)
}

// Files returns a copy of the pending file list.
func (operation *TransferOperation) Files() []string {
	files := make([]string, len(operation.files))
	copy(files, operation.files)
	return files
}

// UseClient tells the operation to talk to the given transfer service
// instead of the one built from its Config. Tests use this; so can
// callers that already hold a client.
func (operation *TransferOperation) UseClient(client network.TransferService) {
	operation.client = client
}

func (operation *TransferOperation) getClient() (network.TransferService, error) {
	if operation.client != nil {
		return operation.client, nil
	}
	return operation.Config.GetTransferClient()
}

// Start submits the transfer: activates both endpoints, fetches a
// fresh submission id, builds a descriptor pairing SourceDir/file
// with DestDir/file for every pending file in order, submits it, and
// records the task id the service assigns.
//
// Start returns a *models.TransferError before touching any remote
// service if the file list is empty, or if this operation has already
// been started. Resubmitting would orphan the tracking handle for
// the earlier task, so callers wanting a second transfer create a
// second operation. Remote failures abort the call and propagate
// unchanged; a task id is recorded only if every step succeeded.
func (operation *TransferOperation) Start(sourceEndpoint, destEndpoint string) error {
	if len(operation.files) == 0 {
		return models.NewTransferError("No files specified for transfer.")
	}
	if operation.TaskId != "" {
		return models.NewTransferError(
			"Transfer was already submitted as task %s. "+
				"Create a new operation to submit another transfer.", operation.TaskId)
	}
	client, err := operation.getClient()
	if err != nil {
		return err
	}
	err = client.EndpointActivate(sourceEndpoint)
	if err != nil {
		return err
	}
	err = client.EndpointActivate(destEndpoint)
	if err != nil {
		return err
	}
	submissionId, err := client.SubmissionID()
	if err != nil {
		return err
	}
	request := network.NewTransferRequest(submissionId, sourceEndpoint, destEndpoint)
	for _, file := range operation.files {
		request.AddItem(path.Join(operation.SourceDir, file),
			path.Join(operation.DestDir, file))
	}
	taskId, err := client.SubmitTransfer(request)
	if err != nil {
		return err
	}
	operation.TaskId = taskId
	return nil
}

// Status asks the transfer service for the task's current status and
// returns the token verbatim. Repeated calls with no intervening
// remote-state change return the same value. Returns a
// *models.TransferError, without any remote call, if the transfer has
// not been started.
func (operation *TransferOperation) Status() (string, error) {
	if operation.TaskId == "" {
		return "", models.NewTransferError("No task information available.")
	}
	client, err := operation.getClient()
	if err != nil {
		return "", err
	}
	status, err := client.TaskStatus(operation.TaskId)
	if err != nil {
		return "", err
	}
	operation.LastStatus = status
	return status, nil
}
