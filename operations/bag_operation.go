// Package operations holds the core pipeline logic: packaging a
// directory into a bag, driving the bulk transfer, triggering ingest
// on the receiving system, and the driver that sequences the three.
// Everything here is synchronous and fail-fast; errors are returned
// to the caller, never logged or swallowed on its behalf.
package operations

import (
	"github.com/cclibraries/rdmflow/bagit"
)

// BagOperation packages one directory into an archival bag and
// answers questions about the bag's integrity. Create a fresh
// BagOperation for each directory; a packaged directory should never
// be packaged again through the same operation.
type BagOperation struct {
	// Dir is the directory to package.
	Dir string

	// Metadata is the descriptive metadata for the bag's
	// bag-info.txt.
	Metadata map[string]string

	// Bag is the packaged bag. Nil until Pack has succeeded.
	Bag *bagit.Bag
}

// NewBagOperation creates an operation that will package dir with the
// given metadata. Nil metadata is fine.
func NewBagOperation(dir string, metadata map[string]string) *BagOperation {
	if metadata == nil {
		metadata = make(map[string]string)
	}
	return &BagOperation{
		Dir:      dir,
		Metadata: metadata,
	}
}

// Pack wraps the directory into a new bag, stores it as this
// operation's current bag, and returns it. Errors from the packaging
// layer propagate unchanged.
func (operation *BagOperation) Pack() (*bagit.Bag, error) {
	bag, err := bagit.Pack(operation.Dir, operation.Metadata)
	if err != nil {
		return nil, err
	}
	operation.Bag = bag
	return bag, nil
}

// IsValid returns the packaged bag's integrity verdict. If nothing
// has been packaged yet, the answer is simply false; the absence of a
// bag is a valid negative answer, not an error.
func (operation *BagOperation) IsValid() bool {
	if operation.Bag == nil {
		return false
	}
	return operation.Bag.IsValid()
}
