package main

import (
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/cclibraries/rdmflow/bagit"
	"github.com/cclibraries/rdmflow/constants"
	"github.com/cclibraries/rdmflow/models"
	"github.com/cclibraries/rdmflow/network"
	"github.com/cclibraries/rdmflow/util/fileutil"
)

// rdm_store_artifact copies a packaged bag into the archival S3
// bucket, one object per file, keyed as "<bag name>/<relative path>".
// This is how preservation copies reach long-term distribution
// storage once the ingest service has produced them.
func main() {
	pathToConfigFile, pathToBag := parseCommandLine()
	config, err := models.LoadConfigFile(pathToConfigFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if config.ArtifactBucket == "" || config.ArtifactRegion == "" {
		fmt.Fprintln(os.Stderr, "ArtifactBucket and ArtifactRegion must be set "+
			"in the config file.")
		os.Exit(1)
	}
	bag, err := bagit.ReadBag(pathToBag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if !bag.IsValid() {
		fmt.Fprintf(os.Stderr, "Bag %s fails validation; refusing to store "+
			"a bad preservation copy. Run rdm_validate for details.\n", bag.Name())
		os.Exit(2)
	}
	files, err := bag.Files()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	stored := 0
	for _, file := range files {
		err = storeFile(config, bag, file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error storing %s: %v\n", file, err)
			continue
		}
		stored++
	}
	fmt.Printf("Stored %d of %d files from bag %s in bucket %s\n",
		stored, len(files), bag.Name(), config.ArtifactBucket)
	if stored != len(files) {
		os.Exit(1)
	}
}

func storeFile(config *models.Config, bag *bagit.Bag, relPath string) error {
	absPath := filepath.Join(bag.Path, relPath)
	contentType := mime.TypeByExtension(filepath.Ext(relPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := fmt.Sprintf("%s/%s", bag.Name(), filepath.ToSlash(relPath))
	upload := network.NewArtifactUpload(config.ArtifactRegion,
		config.ArtifactBucket, key, contentType)
	upload.AddMetadata("bag", bag.Name())
	upload.AddMetadata("bagpath", filepath.ToSlash(relPath))
	digest, err := fileutil.CalculateChecksum(absPath, constants.AlgSha256)
	if err == nil {
		upload.AddMetadata("sha256", digest)
	}
	reader, err := os.Open(absPath)
	if err != nil {
		return err
	}
	defer reader.Close()
	upload.Send(reader)
	if upload.ErrorMessage != "" {
		return fmt.Errorf(upload.ErrorMessage)
	}
	return nil
}

func parseCommandLine() (configFile string, pathToBag string) {
	var pathToConfigFile string
	var bagPath string
	flag.StringVar(&pathToConfigFile, "config", "", "Path to rdmflow config file")
	flag.StringVar(&bagPath, "bag", "", "Path to the bag directory to store")
	flag.Parse()
	if pathToConfigFile == "" || bagPath == "" {
		printUsage()
		os.Exit(1)
	}
	return pathToConfigFile, bagPath
}

// Tell the user about the program.
func printUsage() {
	message := `
rdm_store_artifact: Validates a packaged bag, then uploads every file
in it to the archival S3 bucket named in the config file. Objects are
keyed as "<bag name>/<relative path>" and carry the bag name, path and
sha256 digest as S3 metadata.

Usage: rdm_store_artifact -config=<path to config file> -bag=<path to bag>

Both params are required. AWS credentials come from the standard
AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY environment variables.
`
	fmt.Println(message)
}
