// Package bagit wraps directories of preservation content into
// fixity-checked archival bags and verifies the integrity of
// existing bags.
package bagit

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/APTrust/bagins"
	"github.com/cclibraries/rdmflow/constants"
	"github.com/cclibraries/rdmflow/util/fileutil"
)

// Bag is a directory packaged with a payload manifest and descriptive
// metadata, suitable for archival transfer. Get one from Pack or
// ReadBag.
type Bag struct {
	// Path is the absolute path to the bag directory.
	Path string
}

// Pack wraps the contents of sourceDir into a new bag and returns it.
// The bag is written next to sourceDir, in a directory named
// "<sourceDir>_bag", with a sha256 payload manifest and the given
// metadata in bag-info.txt. The source directory is left untouched.
func Pack(sourceDir string, metadata map[string]string) (*Bag, error) {
	absSource, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absSource)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("'%s' is not a directory", sourceDir)
	}
	parentDir := filepath.Dir(absSource)
	bagName := filepath.Base(absSource) + "_bag"

	// bagins.NewBag fails if the parent dir doesn't exist
	err = os.MkdirAll(parentDir, 0755)
	if err != nil {
		return nil, err
	}
	underlying, err := bagins.NewBag(parentDir, bagName,
		[]string{constants.AlgSha256}, true)
	if err != nil {
		return nil, err
	}

	files, err := fileutil.RelativeFileList(absSource)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		err = underlying.AddFile(filepath.Join(absSource, file), file)
		if err != nil {
			return nil, fmt.Errorf("Error adding file %s to bag: %v", file, err)
		}
	}

	err = writeBagInfo(underlying, metadata)
	if err != nil {
		return nil, err
	}

	saveErrors := underlying.Save()
	if len(saveErrors) > 0 {
		messages := make([]string, len(saveErrors))
		for i, saveError := range saveErrors {
			messages[i] = saveError.Error()
		}
		return nil, fmt.Errorf("Error saving bag: %s", strings.Join(messages, "; "))
	}
	return &Bag{Path: filepath.Join(parentDir, bagName)}, nil
}

// writeBagInfo adds a bag-info.txt tag file containing the caller's
// metadata plus a Bagging-Date. Keys are written in sorted order so
// repeated packagings of the same content produce the same tag file.
func writeBagInfo(underlying *bagins.Bag, metadata map[string]string) error {
	err := underlying.AddTagfile("bag-info.txt")
	if err != nil {
		return fmt.Errorf("Error adding bag-info.txt: %v", err)
	}
	bagInfo, err := underlying.TagFile("bag-info.txt")
	if err != nil {
		return fmt.Errorf("Error retrieving bag-info.txt: %v", err)
	}
	bagInfo.Data.AddField(*bagins.NewTagField("Bagging-Date",
		time.Now().UTC().Format("2006-01-02")))
	labels := make([]string, 0, len(metadata))
	for label := range metadata {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		bagInfo.Data.AddField(*bagins.NewTagField(label, metadata[label]))
	}
	return nil
}

// ReadBag returns a Bag for an already-packaged directory. It checks
// only that the directory looks like a bag (has bagit.txt and a sha256
// payload manifest); call Validate or IsValid to check fixity.
func ReadBag(pathToBag string) (*Bag, error) {
	absPath, err := filepath.Abs(pathToBag)
	if err != nil {
		return nil, err
	}
	if !fileutil.FileExists(filepath.Join(absPath, "bagit.txt")) {
		return nil, fmt.Errorf("'%s' does not look like a bag: bagit.txt is missing", pathToBag)
	}
	if !fileutil.FileExists(filepath.Join(absPath, manifestName())) {
		return nil, fmt.Errorf("'%s' does not look like a bag: %s is missing",
			pathToBag, manifestName())
	}
	return &Bag{Path: absPath}, nil
}

// Name returns the bag's name, which is the name of the bag directory.
// This is also the name the ingest service sees once the bag has been
// transferred.
func (bag *Bag) Name() string {
	return filepath.Base(bag.Path)
}

// Files returns the relative paths of every file in the bag,
// manifests and tag files included. This is the file list a transfer
// of the whole bag should move.
func (bag *Bag) Files() ([]string, error) {
	return fileutil.RelativeFileList(bag.Path)
}

// Validate re-checks the bag's payload against its sha256 manifest and
// returns a description of every problem found: unreadable or missing
// manifest, payload files whose digests don't match, and payload files
// present on disk but absent from the manifest.
func (bag *Bag) Validate() []error {
	validationErrors := make([]error, 0)
	manifestPath := filepath.Join(bag.Path, manifestName())
	checksums, err := parseManifest(manifestPath)
	if err != nil {
		return append(validationErrors, err)
	}
	for relPath, expectedDigest := range checksums {
		filePath := filepath.Join(bag.Path, relPath)
		if !fileutil.FileExists(filePath) {
			validationErrors = append(validationErrors,
				fmt.Errorf("File '%s' in manifest is missing from bag", relPath))
			continue
		}
		actualDigest, err := fileutil.CalculateChecksum(filePath, constants.AlgSha256)
		if err != nil {
			validationErrors = append(validationErrors,
				fmt.Errorf("Cannot digest file '%s': %v", relPath, err))
			continue
		}
		if actualDigest != expectedDigest {
			validationErrors = append(validationErrors,
				fmt.Errorf("Checksum mismatch for '%s': manifest says %s, file has %s",
					relPath, expectedDigest, actualDigest))
		}
	}
	payloadFiles, err := fileutil.RelativeFileList(filepath.Join(bag.Path, "data"))
	if err != nil {
		return append(validationErrors, err)
	}
	for _, payloadFile := range payloadFiles {
		relPath := filepath.Join("data", payloadFile)
		if _, present := checksums[relPath]; !present {
			validationErrors = append(validationErrors,
				fmt.Errorf("File '%s' is in the bag but not in the manifest", relPath))
		}
	}
	return validationErrors
}

// IsValid returns true if the bag passes Validate with no errors.
func (bag *Bag) IsValid() bool {
	return len(bag.Validate()) == 0
}

func manifestName() string {
	return fmt.Sprintf("manifest-%s.txt", constants.AlgSha256)
}

// parseManifest reads a payload manifest into a map of relative file
// path to expected digest. Manifest lines look like
// "<digest> <relative path>" with one or more spaces between.
func parseManifest(manifestPath string) (map[string]string, error) {
	content, err := ioutil.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("Cannot read manifest '%s': %v", manifestPath, err)
	}
	checksums := make(map[string]string)
	for lineNum, line := range strings.Split(string(content), "\n") {
		cleanLine := strings.TrimSpace(line)
		if cleanLine == "" {
			continue
		}
		parts := strings.SplitN(cleanLine, " ", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("Manifest line %d is not valid: %s",
				lineNum+1, cleanLine)
		}
		checksums[strings.TrimSpace(parts[1])] = strings.TrimSpace(parts[0])
	}
	return checksums, nil
}
