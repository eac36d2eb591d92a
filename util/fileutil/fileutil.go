package fileutil

import (
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/cclibraries/rdmflow/constants"
)

// FileExists returns true if the file at path exists.
// This returns true for directories as well as files.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	if err != nil && os.IsNotExist(err) {
		return false
	}
	return true
}

// ExpandTilde expands the tilde in a directory path to the current
// user's home directory. For example, on Linux, ~/data
// would expand to something like /home/josie/data
func ExpandTilde(filePath string) (string, error) {
	if strings.Index(filePath, "~") < 0 {
		return filePath, nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", err
	}
	homeDir := usr.HomeDir + "/"
	expandedDir := strings.Replace(filePath, "~/", homeDir, 1)
	return expandedDir, nil
}

// RecursiveFileList returns a list of all files in path dir
// and its subfolders. It does not return directories.
func RecursiveFileList(dir string) ([]string, error) {
	files := make([]string, 0)
	err := filepath.Walk(dir, func(filePath string, f os.FileInfo, err error) error {
		if f != nil && f.IsDir() == false {
			files = append(files, filePath)
		}
		return nil
	})
	return files, err
}

// RelativeFileList returns the relative paths of all files in dir
// and its subfolders, relative to dir itself. This is the form the
// transfer service wants file paths in: relative to the directory
// being moved.
func RelativeFileList(dir string) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	absFiles, err := RecursiveFileList(absDir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(absFiles))
	for _, absFile := range absFiles {
		relPath, err := filepath.Rel(absDir, absFile)
		if err != nil {
			return nil, err
		}
		files = append(files, relPath)
	}
	return files, nil
}

// CalculateChecksum calculates the md5 or sha256 checksum of a file.
// Param pathToFile is the path the file, and algorithm should be one
// of constants.AlgMd5 or constants.AlgSha256. Returns the hex-encoded
// digest or an error.
func CalculateChecksum(pathToFile, algorithm string) (string, error) {
	var _hash hash.Hash = nil
	if algorithm == constants.AlgMd5 {
		_hash = md5.New()
	} else if algorithm == constants.AlgSha256 {
		_hash = sha256.New()
	} else {
		return "", fmt.Errorf("Unsupported algorithm: %s", algorithm)
	}
	inputFile, err := os.Open(pathToFile)
	if err != nil {
		return "", err
	}
	defer inputFile.Close()
	io.Copy(_hash, inputFile)
	digest := fmt.Sprintf("%x", _hash.Sum(nil))
	return digest, nil
}
