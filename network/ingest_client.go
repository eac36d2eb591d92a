package network

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/cclibraries/rdmflow/constants"
)

// UnapprovedTransfer describes one transfer sitting in the ingest
// service's approval queue. The shape of this record is owned by the
// ingest service; we decode the fields we know about and pass them
// through without interpretation.
type UnapprovedTransfer struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Directory string `json:"directory"`
	UUID      string `json:"uuid"`
}

// ApproveResult is the ingest service's response to an approval
// request. Whether approval means "queued" or "already processing"
// belongs to the ingest service; callers interpret this as they
// see fit.
type ApproveResult struct {
	Message string `json:"message"`
	UUID    string `json:"uuid"`
}

// IngestClient talks to the preservation-management system's
// administrative API. Both calls it makes are simple GETs
// authenticated by username and api_key query params.
type IngestClient struct {
	hostUrl    string
	apiUser    string
	apiKey     string
	httpClient *http.Client
	transport  *http.Transport
}

// NewIngestClient creates a new ingest service client. Param hostUrl
// should come from the IngestURL setting in the config file; apiUser
// and apiKey are the ingest service credentials.
func NewIngestClient(hostUrl, apiUser, apiKey string) (*IngestClient, error) {
	// see security warning on nil PublicSuffixList here:
	// http://gotour.golang.org/src/pkg/net/http/cookiejar/jar.go?s=1011:1492#L24
	cookieJar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("Can't create cookie jar for HTTP client: %v", err)
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 8,
		DisableKeepAlives:   false,
	}
	httpClient := &http.Client{Jar: cookieJar, Transport: transport}
	return &IngestClient{
		hostUrl:    strings.TrimSuffix(hostUrl, "/"),
		apiUser:    apiUser,
		apiKey:     apiKey,
		httpClient: httpClient,
		transport:  transport,
	}, nil
}

// HostURL returns the base URL of the ingest service.
func (client *IngestClient) HostURL() string {
	return client.hostUrl
}

// UnapprovedTransfers returns the list of transfers awaiting approval
// on the ingest service, decoded but otherwise verbatim.
func (client *IngestClient) UnapprovedTransfers() ([]*UnapprovedTransfer, error) {
	params := url.Values{
		"username": {client.apiUser},
		"api_key":  {client.apiKey},
	}
	body, err := client.doGet(constants.IngestUnapprovedPath, params)
	if err != nil {
		return nil, err
	}
	// The service wraps the array in a results field. Some older
	// revisions return the bare array, so fall back to that.
	wrapped := &struct {
		Message string                `json:"message"`
		Results []*UnapprovedTransfer `json:"results"`
	}{}
	err = json.Unmarshal(body, wrapped)
	if err == nil && wrapped.Results != nil {
		return wrapped.Results, nil
	}
	transfers := make([]*UnapprovedTransfer, 0)
	err = json.Unmarshal(body, &transfers)
	if err != nil {
		return nil, fmt.Errorf("Could not decode unapproved transfer list: %v. "+
			"Response body: %s", err, string(body))
	}
	return transfers, nil
}

// ApproveTransfer asks the ingest service to accept the transfer in
// the named directory into its processing workflow. Param directory is
// the bag name as it appears at the destination; transferType is the
// container form tag, e.g. constants.TransferTypeUnzippedBag.
func (client *IngestClient) ApproveTransfer(directory, transferType string) (*ApproveResult, error) {
	params := url.Values{
		"username":  {client.apiUser},
		"api_key":   {client.apiKey},
		"directory": {directory},
		"type":      {transferType},
	}
	body, err := client.doGet(constants.IngestApprovePath, params)
	if err != nil {
		return nil, err
	}
	result := &ApproveResult{}
	err = json.Unmarshal(body, result)
	if err != nil {
		return nil, fmt.Errorf("Could not decode approval response: %v. "+
			"Response body: %s", err, string(body))
	}
	return result, nil
}

func (client *IngestClient) doGet(apiPath string, params url.Values) ([]byte, error) {
	absoluteUrl := fmt.Sprintf("%s%s?%s", client.hostUrl, apiPath, params.Encode())
	response, err := client.httpClient.Get(absoluteUrl)
	if err != nil {
		return nil, err
	}
	body, err := ioutil.ReadAll(response.Body)
	response.Body.Close()
	if err != nil {
		return nil, err
	}
	if response.StatusCode != 200 {
		return nil, fmt.Errorf("Ingest service returned status code %d for %s. "+
			"Response body: %s", response.StatusCode, apiPath, string(body))
	}
	return body, nil
}
