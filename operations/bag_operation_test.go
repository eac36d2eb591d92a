package operations_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/cclibraries/rdmflow/operations"
	"github.com/cclibraries/rdmflow/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBagOperation(t *testing.T) {
	operation := operations.NewBagOperation("/data/project_42", nil)
	assert.Equal(t, "/data/project_42", operation.Dir)
	assert.NotNil(t, operation.Metadata)
	assert.Nil(t, operation.Bag)

	metadata := map[string]string{"Title": "Field Notes"}
	operation = operations.NewBagOperation("/data/project_42", metadata)
	assert.Equal(t, "Field Notes", operation.Metadata["Title"])
}

func TestBagOperationPack(t *testing.T) {
	parentDir, err := ioutil.TempDir("", "bag_operation_test")
	require.Nil(t, err)
	defer os.RemoveAll(parentDir)
	sourceDir, err := testutil.CreateBagSourceDir(parentDir, 4)
	require.Nil(t, err)

	operation := operations.NewBagOperation(sourceDir, testutil.RandomMetadata())

	// Nothing packaged yet, so there's no valid bag to speak of.
	assert.False(t, operation.IsValid())

	bag, err := operation.Pack()
	require.Nil(t, err)
	require.NotNil(t, bag)
	assert.Equal(t, bag, operation.Bag)
	assert.Equal(t, filepath.Base(sourceDir)+"_bag", bag.Name())
	assert.True(t, operation.IsValid())
}

func TestBagOperationPackFailure(t *testing.T) {
	operation := operations.NewBagOperation("/no/such/dir/anywhere", nil)
	bag, err := operation.Pack()
	assert.Nil(t, bag)
	assert.NotNil(t, err)
	assert.Nil(t, operation.Bag)
	assert.False(t, operation.IsValid())
}

func TestBagOperationDetectsCorruption(t *testing.T) {
	parentDir, err := ioutil.TempDir("", "bag_operation_test")
	require.Nil(t, err)
	defer os.RemoveAll(parentDir)
	sourceDir, err := testutil.CreateBagSourceDir(parentDir, 2)
	require.Nil(t, err)

	operation := operations.NewBagOperation(sourceDir, nil)
	bag, err := operation.Pack()
	require.Nil(t, err)
	require.True(t, operation.IsValid())

	// Alter a payload file behind the bag's back.
	pathToFile := filepath.Join(bag.Path, "data", "file_0.txt")
	require.Nil(t, ioutil.WriteFile(pathToFile, []byte("tampered\n"), 0644))
	assert.False(t, operation.IsValid())
}
