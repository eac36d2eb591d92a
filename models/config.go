package models

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/cclibraries/rdmflow/constants"
	"github.com/cclibraries/rdmflow/network"
	"github.com/op/go-logging"
)

// WorkerConfig describes the NSQ settings for the pipeline worker.
type WorkerConfig struct {
	// This describes how often the NSQ client should ping
	// the NSQ server to let it know it's still there. The
	// setting must be formatted like so:
	//
	// "800ms" for 800 milliseconds
	// "10s" for ten seconds
	// "1m" for one minute
	HeartbeatInterval string

	// The maximum number of times the worker should try to
	// process a job. If non-fatal errors cause a job to
	// fail, it will be requeued this number of times.
	MaxAttempts uint16

	// Maximum number of jobs a worker will accept from the
	// queue at one time. Pipeline runs are long (a transfer can
	// take hours), so keep this low to prevent messages from
	// timing out.
	MaxInFlight int

	// If the NSQ server does not hear from a client that a
	// job is complete in this amount of time, the server
	// considers the job to have timed out and re-queues it.
	// Pipeline runs wait out an entire remote transfer, so this
	// needs to be generous: "180m" or more.
	MessageTimeout string

	// The name of the NSQ Channel the worker should read from.
	NsqChannel string

	// The name of the NSQ Topic the worker should listen to.
	NsqTopic string

	// This describes how long the NSQ client will wait for
	// a read from the NSQ server before timing out. The format
	// is the same as for HeartbeatInterval.
	ReadTimeout string

	// This describes how long the NSQ client will wait for
	// a write to the NSQ server to complete before timing out.
	// The format is the same as for HeartbeatInterval.
	WriteTimeout string
}

// Config holds everything a pipeline run needs to know: credentials
// and identifiers for the transfer and ingest services, the endpoint
// and directory layout, and ambient settings (logging, NSQ, artifact
// storage). Load it once with LoadConfigFile; nothing mutates it after
// that except the lazily created transfer client, which the Config
// itself owns.
type Config struct {
	// ActiveConfig is the path of the config file currently in use.
	ActiveConfig string

	// TransferAPIURL is the base URL of the managed file-transfer
	// service's REST API.
	TransferAPIURL string

	// TransferAuthURL is the base URL of the transfer service's
	// token-exchange endpoint.
	TransferAuthURL string

	// TransferUser is the username we transfer under. May be left
	// blank in the config file and supplied through the
	// TRANSFER_API_USER environment variable instead.
	TransferUser string

	// TransferSecret is the secret matching TransferUser. May be
	// supplied through TRANSFER_API_SECRET instead.
	TransferSecret string

	// SourceEndpoint is the transfer service endpoint where the
	// content to be preserved is stored.
	SourceEndpoint string

	// StagingEndpoint is the transfer service endpoint the ingest
	// service reads from.
	StagingEndpoint string

	// ArchiveEndpoint is the transfer service endpoint where
	// preservation copies end up, when NeedsPreservation is true.
	ArchiveEndpoint string

	// ProcessingDir is the directory on the source endpoint where
	// bags sit while being moved.
	ProcessingDir string

	// IngestDir is the directory on the staging endpoint that the
	// ingest service watches for arriving transfers.
	IngestDir string

	// ArchiveDir is the directory preservation copies are
	// written to.
	ArchiveDir string

	// AccessDir is the directory access copies are written to.
	AccessDir string

	// IngestURL is the base URL of the preservation-management
	// system's administrative API.
	IngestURL string

	// IngestUser is the ingest service account name. May be supplied
	// through INGEST_API_USER instead.
	IngestUser string

	// IngestAPIKey is the API key matching IngestUser. May be
	// supplied through INGEST_API_KEY instead.
	IngestAPIKey string

	// NeedsPreservation says whether creation and storage of an
	// archival preservation copy is required downstream.
	NeedsPreservation bool

	// ArtifactBucket is the S3 bucket preservation artifacts are
	// uploaded to.
	ArtifactBucket string

	// ArtifactRegion is the AWS region hosting ArtifactBucket.
	ArtifactRegion string

	// LogDirectory is where we'll write our log files.
	LogDirectory string

	// LogLevel is defined in github.com/op/go-logging
	// and should be one of the following:
	// 1 - CRITICAL
	// 2 - ERROR
	// 3 - WARNING
	// 4 - NOTICE
	// 5 - INFO
	// 6 - DEBUG
	LogLevel logging.Level

	// If true, processes will log to STDERR in addition
	// to their standard log files. You really only want
	// to do this in development.
	LogToStderr bool

	// NsqdHttpAddress is the address to which we post pipeline
	// requests we want to queue, e.g. "http://127.0.0.1:4151".
	NsqdHttpAddress string

	// NsqLookupd is the hostname:port of the NSQ lookup daemon the
	// pipeline worker connects through.
	NsqLookupd string

	// PipelineWorker holds the NSQ settings for the pipeline worker.
	PipelineWorker WorkerConfig

	// JournalPath is the bolt DB file where pipeline run state is
	// recorded. Blank disables the journal.
	JournalPath string

	// PollIntervalSeconds is how long the pipeline driver waits
	// between transfer status checks.
	PollIntervalSeconds int

	// MaxPollAttempts is how many status checks the pipeline driver
	// makes before giving up on a transfer.
	MaxPollAttempts int

	mutex          sync.Mutex
	transferClient *network.TransferClient
	authenticator  network.Authenticator
}

// LoadConfigFile returns the configuration that the user requested,
// which is specified in the -config flag when we run a program from
// the command line. Credentials missing from the file are filled in
// from the environment.
func LoadConfigFile(pathToConfigFile string) (*Config, error) {
	data, err := ioutil.ReadFile(pathToConfigFile)
	if err != nil {
		return nil, fmt.Errorf("Error reading config file '%s': %v",
			pathToConfigFile, err)
	}
	config := &Config{}
	err = json.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("Error parsing JSON from config file '%s': %v",
			pathToConfigFile, err)
	}
	config.ActiveConfig = pathToConfigFile
	config.LoadCredsFromEnv()
	return config, nil
}

// LoadCredsFromEnv fills in service credentials that are missing from
// the config file but present in the environment. Values from the
// config file win.
func (config *Config) LoadCredsFromEnv() {
	if config.TransferUser == "" {
		config.TransferUser = os.Getenv(constants.EnvTransferUser)
	}
	if config.TransferSecret == "" {
		config.TransferSecret = os.Getenv(constants.EnvTransferSecret)
	}
	if config.IngestUser == "" {
		config.IngestUser = os.Getenv(constants.EnvIngestUser)
	}
	if config.IngestAPIKey == "" {
		config.IngestAPIKey = os.Getenv(constants.EnvIngestKey)
	}
}

// IsTransferConfigComplete returns true if we have enough information
// to attempt a transfer: both transfer credentials are set. Pure
// check; contacts no remote service.
func (config *Config) IsTransferConfigComplete() bool {
	return config.TransferUser != "" && config.TransferSecret != ""
}

// IsIngestConfigComplete returns true if we have enough information
// to talk to the ingest service: username, API key and host URL are
// all set. Pure check; contacts no remote service.
func (config *Config) IsIngestConfigComplete() bool {
	return config.IngestUser != "" && config.IngestAPIKey != "" && config.IngestURL != ""
}

// GetTransferClient returns an authenticated transfer service client.
// On first call it checks that both transfer credentials are set
// (returning a *ConfigError before any network traffic if not),
// exchanges them for an access token, and builds the client. The
// client is cached for the Config's lifetime, so later calls are free
// of network cost. Token-exchange failures from the authenticator
// propagate unchanged.
func (config *Config) GetTransferClient() (*network.TransferClient, error) {
	config.mutex.Lock()
	defer config.mutex.Unlock()
	if config.transferClient != nil {
		return config.transferClient, nil
	}
	if config.TransferUser == "" {
		return nil, NewConfigError("No transfer service username set.")
	}
	if config.TransferSecret == "" {
		return nil, NewConfigError("No transfer service secret set.")
	}
	authenticator := config.authenticator
	if authenticator == nil {
		authenticator = network.NewGoauthAuthenticator(config.TransferAuthURL)
	}
	token, err := authenticator.Exchange(config.TransferUser, config.TransferSecret)
	if err != nil {
		return nil, err
	}
	config.transferClient = network.NewTransferClient(
		config.TransferAPIURL, token.Identity, token.Token)
	return config.transferClient, nil
}

// UseAuthenticator tells the Config to exchange credentials through
// the given authenticator instead of the default goauth one. Call this
// before the first GetTransferClient; it has no effect once a client
// has been cached.
func (config *Config) UseAuthenticator(authenticator network.Authenticator) {
	config.mutex.Lock()
	defer config.mutex.Unlock()
	config.authenticator = authenticator
}

// AbsLogDirectory returns the absolute path of the log directory.
func (config *Config) AbsLogDirectory() string {
	absLogDir, err := filepath.Abs(config.LogDirectory)
	if err != nil {
		msg := fmt.Sprintf("Cannot get absolute path to log directory. "+
			"config.LogDirectory is set to '%s'", config.LogDirectory)
		panic(msg)
	}
	return absLogDir
}

// EnsureLogDirectory creates the logging directory if it does not
// already exist and returns its absolute path.
func (config *Config) EnsureLogDirectory() (string, error) {
	absLogDir := config.AbsLogDirectory()
	err := os.MkdirAll(absLogDir, 0755)
	if err != nil {
		return "", err
	}
	return absLogDir, nil
}
