package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cclibraries/rdmflow/context"
	"github.com/cclibraries/rdmflow/models"
	"github.com/cclibraries/rdmflow/workers"
)

// rdm_pipeline_worker receives bag requests from nsqd and runs each
// one through the full preservation pipeline. Requests are queued by
// rdm_queue or by anything else that posts a JSON bag request to the
// worker's topic.
func main() {
	pathToConfigFile := parseCommandLine()
	config, err := models.LoadConfigFile(pathToConfigFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	_context := context.NewContext(config)
	_context.MessageLog.Info("Connecting to NSQLookupd at %s", config.NsqLookupd)
	_context.MessageLog.Info("NSQDHttpAddress is %s", config.NsqdHttpAddress)
	consumer, err := workers.CreateNsqConsumer(config, &config.PipelineWorker)
	if err != nil {
		_context.MessageLog.Fatalf(err.Error())
	}
	_context.MessageLog.Info("rdm_pipeline_worker started")

	worker, err := workers.NewPipelineWorker(_context)
	if err != nil {
		_context.MessageLog.Fatalf("Cannot create pipeline worker: %v", err)
	}
	if worker.Journal != nil {
		defer worker.Journal.Close()
	}
	consumer.AddHandler(worker)
	consumer.ConnectToNSQLookupd(config.NsqLookupd)

	// This reader blocks until we get an interrupt, so our program does not exit.
	<-consumer.StopChan
}

func parseCommandLine() (configFile string) {
	var pathToConfigFile string
	flag.StringVar(&pathToConfigFile, "config", "", "Path to rdmflow config file")
	flag.Parse()
	if pathToConfigFile == "" {
		printUsage()
		os.Exit(1)
	}
	return pathToConfigFile
}

// Tell the user about the program.
func printUsage() {
	message := `
rdm_pipeline_worker: Reads bag requests from NSQ and runs each one
through the preservation pipeline (package, transfer, ingest). The
topic, channel and timeouts come from the PipelineWorker section of
the config file. A pipeline run waits out an entire remote transfer,
so set MessageTimeout generously ("180m" or more).

Usage: rdm_pipeline_worker -config=<path to config file>

Param -config is required.
`
	fmt.Println(message)
}
