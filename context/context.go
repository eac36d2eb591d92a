package context

import (
	"fmt"
	stdlog "log"
	"os"
	"sync/atomic"

	"github.com/cclibraries/rdmflow/models"
	"github.com/cclibraries/rdmflow/network"
	"github.com/cclibraries/rdmflow/util/logger"
	"github.com/op/go-logging"
)

/*
Context sets up the items common to the pipeline binaries
(rdm_pipeline, rdm_pipeline_worker, rdm_queue, etc.): the loaded
config, loggers, and the service clients that can be built without
talking to a remote service. The transfer client is not here, because
building it costs a token exchange; get it lazily through
Config.GetTransferClient().
*/
type Context struct {
	Config        *models.Config
	MessageLog    *logging.Logger
	JsonLog       *stdlog.Logger
	NSQClient     *network.NSQClient
	IngestClient  *network.IngestClient
	pathToLogFile string
	pathToJsonLog string
	succeeded     int64
	failed        int64
}

/*
NewContext creates and returns a new Context object. Because some
items are absolutely required by the processes that use it, this
method will exit if it gets an invalid config param from the command
line, or if it cannot set up some essential services, such as logging.

This object is meant to be used as a singleton within any of the
stand-alone pipeline binaries.
*/
func NewContext(config *models.Config) (context *Context) {
	context = &Context{
		succeeded: int64(0),
		failed:    int64(0),
	}
	context.Config = config
	context.MessageLog, context.pathToLogFile = logger.InitLogger(config)
	context.JsonLog, context.pathToJsonLog = logger.InitJsonLogger(config)
	context.NSQClient = network.NewNSQClient(config.NsqdHttpAddress)
	context.initIngestClient()
	return context
}

// Initializes a reusable ingest service client, if the config has
// enough information to build one. Binaries that never talk to the
// ingest service can run with incomplete ingest config.
func (context *Context) initIngestClient() {
	if !context.Config.IsIngestConfigComplete() {
		return
	}
	ingestClient, err := network.NewIngestClient(
		context.Config.IngestURL,
		context.Config.IngestUser,
		context.Config.IngestAPIKey)
	if err != nil {
		message := fmt.Sprintf("Exiting. Cannot initialize ingest client: %v", err)
		fmt.Fprintln(os.Stderr, message)
		context.MessageLog.Fatal(message)
	}
	context.IngestClient = ingestClient
}

// Succeeded returns the number of pipeline runs that succeeded.
func (context *Context) Succeeded() int64 {
	return atomic.LoadInt64(&context.succeeded)
}

// Failed returns the number of pipeline runs that failed.
func (context *Context) Failed() int64 {
	return atomic.LoadInt64(&context.failed)
}

// IncrementSucceeded increases the count of successful runs by one.
func (context *Context) IncrementSucceeded() int64 {
	return atomic.AddInt64(&context.succeeded, 1)
}

// IncrementFailed increases the count of failed runs by one.
func (context *Context) IncrementFailed() int64 {
	return atomic.AddInt64(&context.failed, 1)
}

// PathToLogFile returns the path to this process' log file.
func (context *Context) PathToLogFile() string {
	return context.pathToLogFile
}

// PathToJsonLog returns the path to this process' JSON log file.
func (context *Context) PathToJsonLog() string {
	return context.pathToJsonLog
}

// LogStats logs info about the number of runs that have succeeded
// and failed.
func (context *Context) LogStats() {
	context.MessageLog.Info("**STATS** Succeeded: %d, Failed: %d",
		context.Succeeded(), context.Failed())
}
