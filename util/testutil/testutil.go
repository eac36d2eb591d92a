// Package testutil provides fixtures for unit tests: throwaway bag
// source directories, randomized bag metadata, and configs pointed at
// temp space.
package testutil

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/cclibraries/rdmflow/models"
	"github.com/icrowley/fake"
	"github.com/op/go-logging"
)

// RandomMetadata returns plausible descriptive metadata for a
// test bag.
func RandomMetadata() map[string]string {
	return map[string]string{
		"Title":                       fake.Title(),
		"Source-Organization":         fake.Company(),
		"Contact-Name":                fake.FullName(),
		"Internal-Sender-Description": fake.Sentence(),
	}
}

// CreateBagSourceDir creates a directory of small text files under
// parentDir, suitable for packaging in tests, and returns its path.
func CreateBagSourceDir(parentDir string, fileCount int) (string, error) {
	sourceDir, err := ioutil.TempDir(parentDir, "bagsource")
	if err != nil {
		return "", err
	}
	err = os.MkdirAll(filepath.Join(sourceDir, "subdir"), 0755)
	if err != nil {
		return "", err
	}
	for i := 0; i < fileCount; i++ {
		name := fmt.Sprintf("file_%d.txt", i)
		if i%2 == 1 {
			name = filepath.Join("subdir", name)
		}
		err = ioutil.WriteFile(filepath.Join(sourceDir, name),
			[]byte(fake.Sentence()+"\n"), 0644)
		if err != nil {
			return "", err
		}
	}
	return sourceDir, nil
}

// TestConfig returns a config whose log directory and journal live in
// temp space and whose credentials are filled with throwaway values.
// The returned config passes both completeness checks.
func TestConfig() (*models.Config, error) {
	tempDir, err := ioutil.TempDir("", "rdmflow_test")
	if err != nil {
		return nil, err
	}
	return &models.Config{
		TransferUser:        "test_user",
		TransferSecret:      "test_secret",
		SourceEndpoint:      "ep-src",
		StagingEndpoint:     "ep-dst",
		ProcessingDir:       "/processing",
		IngestDir:           "/ingest",
		IngestURL:           "http://localhost:9999",
		IngestUser:          "ingest_user",
		IngestAPIKey:        "ingest_key",
		LogDirectory:        tempDir,
		LogLevel:            logging.DEBUG,
		JournalPath:         filepath.Join(tempDir, "journal.db"),
		PollIntervalSeconds: 0,
		MaxPollAttempts:     5,
	}, nil
}
