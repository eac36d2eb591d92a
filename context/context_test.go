package context_test

import (
	"os"
	"testing"

	"github.com/cclibraries/rdmflow/context"
	"github.com/cclibraries/rdmflow/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContext(t *testing.T) {
	config, err := testutil.TestConfig()
	require.Nil(t, err)
	defer os.RemoveAll(config.LogDirectory)

	_context := context.NewContext(config)
	assert.Equal(t, config, _context.Config)
	assert.NotNil(t, _context.MessageLog)
	assert.NotNil(t, _context.JsonLog)
	assert.NotNil(t, _context.NSQClient)
	assert.NotEmpty(t, _context.PathToLogFile())
	assert.NotEmpty(t, _context.PathToJsonLog())

	// The test config has complete ingest credentials, so the
	// shared ingest client is built up front.
	assert.NotNil(t, _context.IngestClient)
}

func TestNewContextWithoutIngestConfig(t *testing.T) {
	config, err := testutil.TestConfig()
	require.Nil(t, err)
	defer os.RemoveAll(config.LogDirectory)
	config.IngestURL = ""

	_context := context.NewContext(config)
	assert.Nil(t, _context.IngestClient)
}

func TestContextCounters(t *testing.T) {
	config, err := testutil.TestConfig()
	require.Nil(t, err)
	defer os.RemoveAll(config.LogDirectory)

	_context := context.NewContext(config)
	assert.EqualValues(t, 0, _context.Succeeded())
	assert.EqualValues(t, 0, _context.Failed())

	_context.IncrementSucceeded()
	_context.IncrementSucceeded()
	_context.IncrementFailed()
	assert.EqualValues(t, 2, _context.Succeeded())
	assert.EqualValues(t, 1, _context.Failed())
	_context.LogStats()
}
