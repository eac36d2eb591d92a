package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cclibraries/rdmflow/context"
	"github.com/cclibraries/rdmflow/models"
	"github.com/cclibraries/rdmflow/operations"
)

// rdm_check_ingest lists the transfers sitting in the ingest
// service's approval queue.
func main() {
	pathToConfigFile := parseCommandLine()
	config, err := models.LoadConfigFile(pathToConfigFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if !config.IsIngestConfigComplete() {
		fmt.Fprintln(os.Stderr, "Ingest service credentials are not configured. "+
			"Set IngestURL in the config file and supply credentials in the "+
			"file or through INGEST_API_USER and INGEST_API_KEY.")
		os.Exit(1)
	}
	_context := context.NewContext(config)
	ingest := operations.NewIngestOperation(config, "")
	ingest.UseClient(_context.IngestClient)
	transfers, err := ingest.ListUnapproved()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing unapproved transfers: %v\n", err)
		os.Exit(1)
	}
	if len(transfers) == 0 {
		fmt.Println("No transfers are awaiting approval.")
		return
	}
	fmt.Printf("%d transfer(s) awaiting approval:\n", len(transfers))
	for _, transfer := range transfers {
		fmt.Printf("  %s  (type: %s, directory: %s, uuid: %s)\n",
			transfer.Name, transfer.Type, transfer.Directory, transfer.UUID)
	}
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
rdm_check_ingest: Lists transfers awaiting approval on the ingest
service. Useful for checking what the pipeline has delivered that the
receiving system has not yet accepted.

Usage: rdm_check_ingest -config=<path to config file>

Param -config is required.
`
	fmt.Println(message)
}
