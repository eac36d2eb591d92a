package models

import (
	"encoding/json"
)

// BagRequest is the message the queueing apps post to NSQ and the
// pipeline worker consumes. It names a directory to preserve and the
// descriptive metadata to write into the bag.
type BagRequest struct {
	// BagDir is the directory to package and push through
	// the pipeline.
	BagDir string `json:"bag_dir"`

	// Metadata is the descriptive metadata for the bag's
	// bag-info.txt. Insertion order is irrelevant.
	Metadata map[string]string `json:"metadata"`

	// TransferType optionally overrides the container form tag sent
	// to the ingest service. Blank means the default,
	// constants.TransferTypeUnzippedBag.
	TransferType string `json:"transfer_type,omitempty"`
}

// NewBagRequest creates a request to preserve the given directory.
func NewBagRequest(bagDir string, metadata map[string]string) *BagRequest {
	if metadata == nil {
		metadata = make(map[string]string)
	}
	return &BagRequest{
		BagDir:   bagDir,
		Metadata: metadata,
	}
}

// BagRequestFromJson decodes a BagRequest from an NSQ message body.
func BagRequestFromJson(data []byte) (*BagRequest, error) {
	request := &BagRequest{}
	err := json.Unmarshal(data, request)
	if err != nil {
		return nil, err
	}
	if request.Metadata == nil {
		request.Metadata = make(map[string]string)
	}
	return request, nil
}

// ToJson serializes the request for posting to NSQ.
func (request *BagRequest) ToJson() ([]byte, error) {
	return json.Marshal(request)
}
