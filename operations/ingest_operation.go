package operations

import (
	"github.com/cclibraries/rdmflow/constants"
	"github.com/cclibraries/rdmflow/models"
	"github.com/cclibraries/rdmflow/network"
)

// IngestOperation signals the receiving preservation system to accept
// a previously transferred bag, and can query the set of transfers
// awaiting approval. The receiving system is the source of truth for
// approval semantics and idempotence; this operation just issues the
// calls and hands back what came over the wire.
type IngestOperation struct {
	// Config supplies the ingest service credentials and host.
	Config *models.Config

	// BagName is the name of the bag to approve, which must match
	// the transferred directory's name at the destination.
	BagName string

	// TransferType is the container form tag sent with the approval
	// request. Defaults to constants.TransferTypeUnzippedBag.
	TransferType string

	client *network.IngestClient
}

// NewIngestOperation creates an operation for the named bag. Param
// bagName may be empty and supplied later through Ingest.
func NewIngestOperation(config *models.Config, bagName string) *IngestOperation {
	return &IngestOperation{
		Config:       config,
		BagName:      bagName,
		TransferType: constants.TransferTypeUnzippedBag,
	}
}

// CanIngest reports whether there is enough information to attempt an
// ingest: a config and a bag name are both present. Pure check; it
// does not consult the remote service.
func (operation *IngestOperation) CanIngest() bool {
	return operation.Config != nil && operation.BagName != ""
}

// UseClient tells the operation to talk to the given ingest client
// instead of building one from its Config.
func (operation *IngestOperation) UseClient(client *network.IngestClient) {
	operation.client = client
}

func (operation *IngestOperation) getClient() (*network.IngestClient, error) {
	if operation.client != nil {
		return operation.client, nil
	}
	client, err := network.NewIngestClient(
		operation.Config.IngestURL,
		operation.Config.IngestUser,
		operation.Config.IngestAPIKey)
	if err != nil {
		return nil, err
	}
	operation.client = client
	return client, nil
}

// ListUnapproved returns the transfers awaiting approval on the
// ingest service, decoded but otherwise verbatim.
func (operation *IngestOperation) ListUnapproved() ([]*network.UnapprovedTransfer, error) {
	if operation.Config == nil {
		return nil, models.NewIngestError("Not enough information to list unapproved transfers.")
	}
	client, err := operation.getClient()
	if err != nil {
		return nil, err
	}
	return client.UnapprovedTransfers()
}

// Ingest asks the ingest service to approve the bag. Non-empty
// bagName and transferType args override the stored values for this
// call AND become the new stored values; last call wins. Pass empty
// strings to reuse what's stored.
//
// Returns a *models.IngestError, before any remote call, if config or
// bag name is still missing after applying overrides. The service's
// raw approval response is returned for the caller to interpret; a
// rejected approval is surfaced as-is and never retried here.
func (operation *IngestOperation) Ingest(bagName, transferType string) (*network.ApproveResult, error) {
	if bagName != "" {
		operation.BagName = bagName
	}
	if transferType != "" {
		operation.TransferType = transferType
	}
	if !operation.CanIngest() {
		return nil, models.NewIngestError("Not enough information to ingest bag.")
	}
	client, err := operation.getClient()
	if err != nil {
		return nil, err
	}
	return client.ApproveTransfer(operation.BagName, operation.TransferType)
}
