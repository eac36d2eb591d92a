package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cclibraries/rdmflow/context"
	"github.com/cclibraries/rdmflow/models"
)

// rdm_queue posts bag requests to NSQ for the pipeline worker to pick
// up. Each directory named on the command line becomes one request.
func main() {
	pathToConfigFile, bagDirs := parseCommandLine()
	config, err := models.LoadConfigFile(pathToConfigFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	_context := context.NewContext(config)
	topic := config.PipelineWorker.NsqTopic
	queued := 0
	for _, bagDir := range bagDirs {
		request := models.NewBagRequest(bagDir, nil)
		payload, err := request.ToJson()
		if err != nil {
			_context.MessageLog.Error("Cannot serialize request for %s: %v", bagDir, err)
			continue
		}
		err = _context.NSQClient.Enqueue(topic, payload)
		if err != nil {
			_context.MessageLog.Error("Error queueing %s: %v", bagDir, err)
			fmt.Fprintf(os.Stderr, "Error queueing %s: %v\n", bagDir, err)
			continue
		}
		_context.MessageLog.Info("Added %s to NSQ topic %s", bagDir, topic)
		queued++
	}
	fmt.Printf("Queued %d of %d bag requests to topic %s\n", queued, len(bagDirs), topic)
	if queued != len(bagDirs) {
		os.Exit(1)
	}
}

func parseCommandLine() (configFile string, bagDirs []string) {
	var pathToConfigFile string
	flag.StringVar(&pathToConfigFile, "config", "", "Path to rdmflow config file")
	flag.Parse()
	if pathToConfigFile == "" || len(flag.Args()) == 0 {
		printUsage()
		os.Exit(1)
	}
	return pathToConfigFile, flag.Args()
}

// Tell the user about the program.
func printUsage() {
	message := `
rdm_queue: Queues bag requests in NSQ. Each directory named on the
command line is posted to the pipeline worker's topic as one request,
to be packaged, transferred and ingested by rdm_pipeline_worker. The
topic comes from the PipelineWorker section of the config file.

Usage: rdm_queue -config=<path to config file> <directory> [<directory> ...]

Param -config is required.
`
	fmt.Println(message)
}
