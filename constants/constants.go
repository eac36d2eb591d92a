// Common vars and constants, shared by many parts of the rdmflow library.
package constants

// Transfer task status tokens, as reported by the transfer service.
// The pipeline compares these by equality only and never interprets
// them beyond "terminal or not."
const (
	TransferStatusActive    = "ACTIVE"
	TransferStatusInactive  = "INACTIVE"
	TransferStatusSucceeded = "SUCCEEDED"
	TransferStatusFailed    = "FAILED"
)

// TransferStatusIsTerminal returns true if the transfer service will
// never change the status of a task that has reached the given status.
func TransferStatusIsTerminal(status string) bool {
	return status == TransferStatusSucceeded || status == TransferStatusFailed
}

// Transfer type tags understood by the ingest service's approval
// endpoint. These are free-form strings on the wire; this list covers
// the container forms we actually send.
const (
	TransferTypeUnzippedBag = "unzipped bag"
	TransferTypeZippedBag   = "zipped bag"
	TransferTypeStandard    = "standard"
)

// Paths on the ingest service's administrative API. Both calls are
// authenticated with username and api_key query params.
const (
	IngestUnapprovedPath = "/api/transfer/unapproved/"
	IngestApprovePath    = "/api/transfer/approve/"
)

// Checksum algorithms we write into bag manifests and will verify
// on validation.
const (
	AlgMd5    = "md5"
	AlgSha256 = "sha256"
)

var ChecksumAlgorithms = []string{AlgMd5, AlgSha256}

// Names of the three pipeline stages, used in logs and in the
// pipeline journal.
const (
	StagePackage  = "Package"
	StageTransfer = "Transfer"
	StageIngest   = "Ingest"
)

// Environment variables that may supply service credentials when
// they are not present in the config file.
const (
	EnvTransferUser   = "TRANSFER_API_USER"
	EnvTransferSecret = "TRANSFER_API_SECRET"
	EnvIngestUser     = "INGEST_API_USER"
	EnvIngestKey      = "INGEST_API_KEY"
)
