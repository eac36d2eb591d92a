package workers_test

import (
	"fmt"
	"io/ioutil"
	"os"
	"testing"

	"github.com/cclibraries/rdmflow/context"
	"github.com/cclibraries/rdmflow/models"
	"github.com/cclibraries/rdmflow/network"
	"github.com/cclibraries/rdmflow/util/testutil"
	"github.com/cclibraries/rdmflow/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingAuthenticator makes every transfer start look like a
// transient auth outage.
type failingAuthenticator struct{}

func (auth *failingAuthenticator) Exchange(username, secret string) (*network.AccessToken, error) {
	return nil, fmt.Errorf("Auth service returned status code 502")
}

func workerTestContext(t *testing.T) *context.Context {
	config, err := testutil.TestConfig()
	require.Nil(t, err)

	// No journal; these tests exercise message handling only.
	config.JournalPath = ""
	return context.NewContext(config)
}

func TestNewPipelineWorker(t *testing.T) {
	_context := workerTestContext(t)
	defer os.RemoveAll(_context.Config.LogDirectory)

	worker, err := workers.NewPipelineWorker(_context)
	require.Nil(t, err)
	assert.Equal(t, _context, worker.Context)
	assert.Nil(t, worker.Journal)
}

func TestNewPipelineWorkerOpensJournal(t *testing.T) {
	config, err := testutil.TestConfig()
	require.Nil(t, err)
	defer os.RemoveAll(config.LogDirectory)
	_context := context.NewContext(config)

	worker, err := workers.NewPipelineWorker(_context)
	require.Nil(t, err)
	require.NotNil(t, worker.Journal)
	defer worker.Journal.Close()
	assert.Equal(t, config.JournalPath, worker.Journal.FilePath())
}

func TestHandleMessageGarbled(t *testing.T) {
	_context := workerTestContext(t)
	defer os.RemoveAll(_context.Config.LogDirectory)
	worker, err := workers.NewPipelineWorker(_context)
	require.Nil(t, err)

	message := testutil.MakeNsqMessage("this will never parse")
	delegate := testutil.NewNSQTestDelegate()
	message.Delegate = delegate

	// A garbled message is discarded, not requeued.
	err = worker.HandleMessage(message)
	assert.Nil(t, err)
	assert.EqualValues(t, 1, _context.Failed())
}

func TestHandleMessageFatalFailure(t *testing.T) {
	_context := workerTestContext(t)
	defer os.RemoveAll(_context.Config.LogDirectory)
	worker, err := workers.NewPipelineWorker(_context)
	require.Nil(t, err)

	request := models.NewBagRequest("/no/such/dir/anywhere", nil)
	body, err := request.ToJson()
	require.Nil(t, err)
	message := testutil.MakeNsqMessage(string(body))
	delegate := testutil.NewNSQTestDelegate()
	message.Delegate = delegate

	// Packaging a nonexistent directory is a fatal failure, so the
	// worker eats the error rather than burning NSQ attempts.
	err = worker.HandleMessage(message)
	assert.Nil(t, err)
	assert.EqualValues(t, 1, _context.Failed())
	assert.Equal(t, "touch", delegate.Operation)
}

func TestHandleMessageTransientFailure(t *testing.T) {
	_context := workerTestContext(t)
	defer os.RemoveAll(_context.Config.LogDirectory)
	_context.Config.UseAuthenticator(&failingAuthenticator{})
	worker, err := workers.NewPipelineWorker(_context)
	require.Nil(t, err)

	parentDir, err := ioutil.TempDir("", "worker_test")
	require.Nil(t, err)
	defer os.RemoveAll(parentDir)
	sourceDir, err := testutil.CreateBagSourceDir(parentDir, 2)
	require.Nil(t, err)

	request := models.NewBagRequest(sourceDir, testutil.RandomMetadata())
	body, err := request.ToJson()
	require.Nil(t, err)
	message := testutil.MakeNsqMessage(string(body))
	delegate := testutil.NewNSQTestDelegate()
	message.Delegate = delegate

	// Packaging succeeds but the transfer can't start. That's
	// transient, so the error goes back to NSQ for a requeue.
	err = worker.HandleMessage(message)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.EqualValues(t, 1, _context.Failed())
}
