package operations_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/cclibraries/rdmflow/constants"
	"github.com/cclibraries/rdmflow/models"
	"github.com/cclibraries/rdmflow/network"
	"github.com/cclibraries/rdmflow/operations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ingestTestServer records approval calls and answers like the ingest
// service's admin API.
type ingestTestServer struct {
	server       *httptest.Server
	approveCalls []url.Values
}

func newIngestTestServer() *ingestTestServer {
	testServer := &ingestTestServer{
		approveCalls: make([]url.Values, 0),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(constants.IngestApprovePath, func(w http.ResponseWriter, r *http.Request) {
		testServer.approveCalls = append(testServer.approveCalls, r.URL.Query())
		fmt.Fprintln(w, `{"message": "Approval successful.", "uuid": "uuid-1"}`)
	})
	mux.HandleFunc(constants.IngestUnapprovedPath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"results": [{"name": "project_42_bag",
			"type": "unzipped bag", "directory": "project_42_bag", "uuid": "uuid-1"}]}`)
	})
	testServer.server = httptest.NewServer(mux)
	return testServer
}

func (testServer *ingestTestServer) close() {
	testServer.server.Close()
}

func (testServer *ingestTestServer) client(t *testing.T) *network.IngestClient {
	client, err := network.NewIngestClient(testServer.server.URL, "admin", "secret_key")
	require.Nil(t, err)
	return client
}

func ingestTestConfig() *models.Config {
	return &models.Config{
		IngestURL:    "http://localhost:9999",
		IngestUser:   "admin",
		IngestAPIKey: "secret_key",
	}
}

func TestNewIngestOperation(t *testing.T) {
	operation := operations.NewIngestOperation(ingestTestConfig(), "project_42_bag")
	assert.Equal(t, "project_42_bag", operation.BagName)
	assert.Equal(t, constants.TransferTypeUnzippedBag, operation.TransferType)
}

func TestCanIngest(t *testing.T) {
	operation := operations.NewIngestOperation(ingestTestConfig(), "project_42_bag")
	assert.True(t, operation.CanIngest())

	operation = operations.NewIngestOperation(ingestTestConfig(), "")
	assert.False(t, operation.CanIngest())

	operation = operations.NewIngestOperation(nil, "project_42_bag")
	assert.False(t, operation.CanIngest())
}

func TestIngest(t *testing.T) {
	testServer := newIngestTestServer()
	defer testServer.close()

	operation := operations.NewIngestOperation(ingestTestConfig(), "project_42_bag")
	operation.UseClient(testServer.client(t))

	result, err := operation.Ingest("", "")
	require.Nil(t, err)
	assert.Equal(t, "Approval successful.", result.Message)
	assert.Equal(t, "uuid-1", result.UUID)

	require.Equal(t, 1, len(testServer.approveCalls))
	call := testServer.approveCalls[0]
	assert.Equal(t, "admin", call.Get("username"))
	assert.Equal(t, "secret_key", call.Get("api_key"))
	assert.Equal(t, "project_42_bag", call.Get("directory"))
	assert.Equal(t, "unzipped bag", call.Get("type"))
}

func TestIngestOverridesPersist(t *testing.T) {
	testServer := newIngestTestServer()
	defer testServer.close()

	operation := operations.NewIngestOperation(ingestTestConfig(), "bag-41")
	operation.UseClient(testServer.client(t))

	// Overrides apply to this call and become the stored values.
	_, err := operation.Ingest("bag-42", constants.TransferTypeZippedBag)
	require.Nil(t, err)
	assert.Equal(t, "bag-42", operation.BagName)
	assert.Equal(t, constants.TransferTypeZippedBag, operation.TransferType)

	// Empty args reuse what the last call stored.
	_, err = operation.Ingest("", "")
	require.Nil(t, err)

	require.Equal(t, 2, len(testServer.approveCalls))
	for _, call := range testServer.approveCalls {
		assert.Equal(t, "bag-42", call.Get("directory"))
		assert.Equal(t, "zipped bag", call.Get("type"))
	}
}

func TestIngestMissingInfo(t *testing.T) {
	testServer := newIngestTestServer()
	defer testServer.close()

	operation := operations.NewIngestOperation(ingestTestConfig(), "")
	operation.UseClient(testServer.client(t))

	result, err := operation.Ingest("", "")
	assert.Nil(t, result)
	require.NotNil(t, err)
	_, isIngestError := err.(*models.IngestError)
	assert.True(t, isIngestError)
	assert.Equal(t, "Not enough information to ingest bag.", err.Error())

	// The check comes before any remote call.
	assert.Empty(t, testServer.approveCalls)

	// Supplying the bag name through the call itself is fine, and
	// the operation can ingest without arguments from then on.
	_, err = operation.Ingest("project_42_bag", "")
	assert.Nil(t, err)
	assert.True(t, operation.CanIngest())
	_, err = operation.Ingest("", "")
	assert.Nil(t, err)
	require.Equal(t, 2, len(testServer.approveCalls))
	assert.Equal(t, "project_42_bag", testServer.approveCalls[1].Get("directory"))
}

func TestListUnapproved(t *testing.T) {
	testServer := newIngestTestServer()
	defer testServer.close()

	operation := operations.NewIngestOperation(ingestTestConfig(), "")
	operation.UseClient(testServer.client(t))

	transfers, err := operation.ListUnapproved()
	require.Nil(t, err)
	require.Equal(t, 1, len(transfers))
	assert.Equal(t, "project_42_bag", transfers[0].Name)
	assert.Equal(t, "uuid-1", transfers[0].UUID)
}

func TestListUnapprovedNoConfig(t *testing.T) {
	operation := operations.NewIngestOperation(nil, "")
	transfers, err := operation.ListUnapproved()
	assert.Nil(t, transfers)
	require.NotNil(t, err)
	_, isIngestError := err.(*models.IngestError)
	assert.True(t, isIngestError)
}
