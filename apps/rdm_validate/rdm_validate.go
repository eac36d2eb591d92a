package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cclibraries/rdmflow/bagit"
)

// rdm_validate re-checks an existing bag's payload against its
// manifest and reports every problem found.
func main() {
	pathToBag := parseCommandLine()
	bag, err := bagit.ReadBag(pathToBag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	validationErrors := bag.Validate()
	if len(validationErrors) == 0 {
		fmt.Printf("Bag %s is valid\n", bag.Name())
		return
	}
	fmt.Printf("Bag %s is NOT valid:\n", bag.Name())
	for _, validationError := range validationErrors {
		fmt.Printf("  %s\n", validationError.Error())
	}
	os.Exit(2)
}

func parseCommandLine() (pathToBag string) {
	var bagPath string
	flag.StringVar(&bagPath, "bag", "", "Path to the bag directory to validate")
	flag.Parse()
	if bagPath == "" {
		printUsage()
		os.Exit(1)
	}
	return bagPath
}

// Tell the user about the program.
func printUsage() {
	message := `
rdm_validate: Validates an existing bag by recomputing the checksum
of every file in the payload manifest and flagging payload files that
are missing from the manifest.

Usage: rdm_validate -bag=<path to bag directory>

Exits 0 if the bag is valid, 2 if not.
`
	fmt.Println(message)
}
