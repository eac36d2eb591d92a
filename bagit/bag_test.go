package bagit_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cclibraries/rdmflow/bagit"
	"github.com/cclibraries/rdmflow/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func packTestBag(t *testing.T, fileCount int) (parentDir string, bag *bagit.Bag) {
	parentDir, err := ioutil.TempDir("", "bagit_test")
	require.Nil(t, err)
	sourceDir, err := testutil.CreateBagSourceDir(parentDir, fileCount)
	require.Nil(t, err)
	bag, err = bagit.Pack(sourceDir, testutil.RandomMetadata())
	require.Nil(t, err)
	return parentDir, bag
}

func TestPack(t *testing.T) {
	parentDir, err := ioutil.TempDir("", "bagit_test")
	require.Nil(t, err)
	defer os.RemoveAll(parentDir)

	sourceDir, err := testutil.CreateBagSourceDir(parentDir, 4)
	require.Nil(t, err)

	bag, err := bagit.Pack(sourceDir, map[string]string{"Title": "Field Notes"})
	require.Nil(t, err)

	// The bag lands next to the source dir, named after it.
	assert.Equal(t, sourceDir+"_bag", bag.Path)
	assert.Equal(t, filepath.Base(sourceDir)+"_bag", bag.Name())

	// The standard bag furniture is present.
	assert.True(t, fileExists(filepath.Join(bag.Path, "bagit.txt")))
	assert.True(t, fileExists(filepath.Join(bag.Path, "manifest-sha256.txt")))
	assert.True(t, fileExists(filepath.Join(bag.Path, "bag-info.txt")))

	// The payload went to data/, source layout preserved.
	assert.True(t, fileExists(filepath.Join(bag.Path, "data", "file_0.txt")))
	assert.True(t, fileExists(filepath.Join(bag.Path, "data", "subdir", "file_1.txt")))

	// The source dir is untouched.
	assert.True(t, fileExists(filepath.Join(sourceDir, "file_0.txt")))

	// The caller's metadata is in bag-info.txt.
	bagInfo, err := ioutil.ReadFile(filepath.Join(bag.Path, "bag-info.txt"))
	require.Nil(t, err)
	assert.Contains(t, string(bagInfo), "Title")
	assert.Contains(t, string(bagInfo), "Field Notes")
	assert.Contains(t, string(bagInfo), "Bagging-Date")
}

func TestPackRejectsNonDirectory(t *testing.T) {
	parentDir, err := ioutil.TempDir("", "bagit_test")
	require.Nil(t, err)
	defer os.RemoveAll(parentDir)

	pathToFile := filepath.Join(parentDir, "not_a_dir.txt")
	require.Nil(t, ioutil.WriteFile(pathToFile, []byte("hi\n"), 0644))

	_, err = bagit.Pack(pathToFile, nil)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "not a directory")

	_, err = bagit.Pack(filepath.Join(parentDir, "no_such_dir"), nil)
	assert.NotNil(t, err)
}

func TestReadBag(t *testing.T) {
	parentDir, bag := packTestBag(t, 4)
	defer os.RemoveAll(parentDir)

	reread, err := bagit.ReadBag(bag.Path)
	require.Nil(t, err)
	assert.Equal(t, bag.Path, reread.Path)
	assert.Equal(t, bag.Name(), reread.Name())

	// A plain directory is not a bag.
	_, err = bagit.ReadBag(parentDir)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "bagit.txt")
}

func TestBagFiles(t *testing.T) {
	parentDir, bag := packTestBag(t, 4)
	defer os.RemoveAll(parentDir)

	files, err := bag.Files()
	require.Nil(t, err)

	// 4 payload files plus bagit.txt, bag-info.txt, the payload
	// manifest and the tag manifest.
	assert.Equal(t, 8, len(files))
	hasManifest := false
	for _, file := range files {
		assert.False(t, filepath.IsAbs(file))
		if file == "manifest-sha256.txt" {
			hasManifest = true
		}
	}
	assert.True(t, hasManifest)
}

func TestValidate(t *testing.T) {
	parentDir, bag := packTestBag(t, 4)
	defer os.RemoveAll(parentDir)

	assert.Empty(t, bag.Validate())
	assert.True(t, bag.IsValid())
}

func TestValidateDetectsAlteredFile(t *testing.T) {
	parentDir, bag := packTestBag(t, 4)
	defer os.RemoveAll(parentDir)

	pathToFile := filepath.Join(bag.Path, "data", "file_0.txt")
	require.Nil(t, ioutil.WriteFile(pathToFile, []byte("tampered\n"), 0644))

	validationErrors := bag.Validate()
	require.Equal(t, 1, len(validationErrors))
	assert.Contains(t, validationErrors[0].Error(), "Checksum mismatch")
	assert.Contains(t, validationErrors[0].Error(), "file_0.txt")
	assert.False(t, bag.IsValid())
}

func TestValidateDetectsMissingFile(t *testing.T) {
	parentDir, bag := packTestBag(t, 4)
	defer os.RemoveAll(parentDir)

	require.Nil(t, os.Remove(filepath.Join(bag.Path, "data", "file_0.txt")))

	validationErrors := bag.Validate()
	require.Equal(t, 1, len(validationErrors))
	assert.Contains(t, validationErrors[0].Error(), "missing from bag")
}

func TestValidateDetectsUnmanifestedFile(t *testing.T) {
	parentDir, bag := packTestBag(t, 4)
	defer os.RemoveAll(parentDir)

	pathToFile := filepath.Join(bag.Path, "data", "stowaway.txt")
	require.Nil(t, ioutil.WriteFile(pathToFile, []byte("stowaway\n"), 0644))

	validationErrors := bag.Validate()
	require.Equal(t, 1, len(validationErrors))
	assert.Contains(t, validationErrors[0].Error(), "not in the manifest")
	assert.Contains(t, validationErrors[0].Error(), "stowaway.txt")
}

func TestValidateDetectsBadManifest(t *testing.T) {
	parentDir, bag := packTestBag(t, 2)
	defer os.RemoveAll(parentDir)

	manifestPath := filepath.Join(bag.Path, "manifest-sha256.txt")
	require.Nil(t, ioutil.WriteFile(manifestPath, []byte("garbage_with_no_space\n"), 0644))

	validationErrors := bag.Validate()
	require.Equal(t, 1, len(validationErrors))
	assert.True(t, strings.Contains(validationErrors[0].Error(), "not valid"))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
