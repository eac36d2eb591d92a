package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cclibraries/rdmflow/context"
	"github.com/cclibraries/rdmflow/models"
	"github.com/cclibraries/rdmflow/operations"
	"github.com/cclibraries/rdmflow/util/storage"
)

// rdm_pipeline pushes one directory through the full preservation
// pipeline: package it as a bag, transfer the bag to the staging
// endpoint, and trigger ingest on the receiving system. It blocks
// until the transfer reaches a terminal status.
func main() {
	pathToConfigFile, bagDir, metadata := parseCommandLine()
	config, err := models.LoadConfigFile(pathToConfigFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	_context := context.NewContext(config)
	request := models.NewBagRequest(bagDir, metadata)
	pipeline := operations.NewPipeline(_context, request)
	if config.JournalPath != "" {
		journal, err := storage.NewPipelineJournal(config.JournalPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open journal at %s: %v\n",
				config.JournalPath, err)
			os.Exit(1)
		}
		defer journal.Close()
		pipeline.UseJournal(journal)
	}
	err = pipeline.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Run %s failed: %v\n", pipeline.State.RunId, err)
		os.Exit(1)
	}
	fmt.Printf("Run %s: bag %s transferred as task %s and handed to ingest\n",
		pipeline.State.RunId, pipeline.State.BagName, pipeline.State.TaskId)
}

func parseCommandLine() (configFile string, bagDir string, metadata map[string]string) {
	var pathToConfigFile string
	var dir string
	flag.StringVar(&pathToConfigFile, "config", "", "Path to rdmflow config file")
	flag.StringVar(&dir, "dir", "", "Directory to package and preserve")
	flag.Parse()
	if pathToConfigFile == "" || dir == "" {
		printUsage()
		os.Exit(1)
	}
	metadata = make(map[string]string)
	for _, arg := range flag.Args() {
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 {
			fmt.Fprintf(os.Stderr, "Metadata arg '%s' is not in Label=Value form\n", arg)
			os.Exit(1)
		}
		metadata[parts[0]] = parts[1]
	}
	return pathToConfigFile, dir, metadata
}

// Tell the user about the program.
func printUsage() {
	message := `
rdm_pipeline: Packages a directory into a fixity-checked bag, moves
the bag to the staging endpoint through the managed transfer service,
and asks the preservation system to ingest it. Blocks until the
transfer finishes, polling at the interval set in the config file.

Usage: rdm_pipeline -config=<path to config file> -dir=<directory> [Label=Value ...]

Params -config and -dir are required. Any remaining Label=Value args
become descriptive metadata in the bag's bag-info.txt.

Transfer and ingest credentials may come from the config file or from
the TRANSFER_API_USER, TRANSFER_API_SECRET, INGEST_API_USER and
INGEST_API_KEY environment variables.
`
	fmt.Println(message)
}
