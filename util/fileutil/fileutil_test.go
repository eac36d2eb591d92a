package fileutil_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/cclibraries/rdmflow/constants"
	"github.com/cclibraries/rdmflow/util/fileutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestTree(t *testing.T) string {
	dir, err := ioutil.TempDir("", "fileutil_test")
	require.Nil(t, err)
	err = os.MkdirAll(filepath.Join(dir, "subdir"), 0755)
	require.Nil(t, err)
	err = ioutil.WriteFile(filepath.Join(dir, "one.txt"), []byte("one\n"), 0644)
	require.Nil(t, err)
	err = ioutil.WriteFile(filepath.Join(dir, "subdir", "two.txt"), []byte("two\n"), 0644)
	require.Nil(t, err)
	return dir
}

func TestFileExists(t *testing.T) {
	dir := makeTestTree(t)
	defer os.RemoveAll(dir)
	assert.True(t, fileutil.FileExists(filepath.Join(dir, "one.txt")))
	assert.True(t, fileutil.FileExists(dir))
	assert.False(t, fileutil.FileExists(filepath.Join(dir, "no_such_file.txt")))
}

func TestExpandTilde(t *testing.T) {
	expanded, err := fileutil.ExpandTilde("~/tmp")
	require.Nil(t, err)
	assert.True(t, len(expanded) > len("~/tmp"))
	assert.True(t, filepath.IsAbs(expanded))

	expanded, err = fileutil.ExpandTilde("/no/tilde/here")
	require.Nil(t, err)
	assert.Equal(t, "/no/tilde/here", expanded)
}

func TestRecursiveFileList(t *testing.T) {
	dir := makeTestTree(t)
	defer os.RemoveAll(dir)
	files, err := fileutil.RecursiveFileList(dir)
	require.Nil(t, err)
	require.Equal(t, 2, len(files))
	sort.Strings(files)
	assert.Equal(t, filepath.Join(dir, "one.txt"), files[0])
	assert.Equal(t, filepath.Join(dir, "subdir", "two.txt"), files[1])
}

func TestRelativeFileList(t *testing.T) {
	dir := makeTestTree(t)
	defer os.RemoveAll(dir)
	files, err := fileutil.RelativeFileList(dir)
	require.Nil(t, err)
	require.Equal(t, 2, len(files))
	sort.Strings(files)
	assert.Equal(t, "one.txt", files[0])
	assert.Equal(t, filepath.Join("subdir", "two.txt"), files[1])
}

func TestCalculateChecksum(t *testing.T) {
	dir := makeTestTree(t)
	defer os.RemoveAll(dir)
	pathToFile := filepath.Join(dir, "one.txt")

	md5Digest, err := fileutil.CalculateChecksum(pathToFile, constants.AlgMd5)
	require.Nil(t, err)
	assert.Equal(t, "5bbf5a52328e7439ae6e719dfe712200", md5Digest)

	sha256Digest, err := fileutil.CalculateChecksum(pathToFile, constants.AlgSha256)
	require.Nil(t, err)
	assert.Equal(t,
		"2c8b08da5ce60398e1f19af0e5dccc744df274b826abe585eaba68c525434806",
		sha256Digest)

	_, err = fileutil.CalculateChecksum(pathToFile, "sha512")
	assert.NotNil(t, err)

	_, err = fileutil.CalculateChecksum(filepath.Join(dir, "no_such_file.txt"),
		constants.AlgSha256)
	assert.NotNil(t, err)
}
