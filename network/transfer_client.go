package network

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
)

// TransferService describes the calls the pipeline makes against the
// managed file-transfer API. TransferClient is the HTTP implementation.
// The orchestration code in the operations package depends only on
// this interface.
type TransferService interface {
	EndpointActivate(endpointId string) error
	SubmissionID() (string, error)
	SubmitTransfer(request *TransferRequest) (string, error)
	TaskStatus(taskId string) (string, error)
}

// TransferItem pairs one source path with its destination path.
type TransferItem struct {
	SourcePath      string `json:"source_path"`
	DestinationPath string `json:"destination_path"`
}

// TransferRequest is the transfer descriptor we submit to the transfer
// service. The submission id comes from the service itself and lets
// the service deduplicate retried submissions.
type TransferRequest struct {
	SubmissionId        string          `json:"submission_id"`
	SourceEndpoint      string          `json:"source_endpoint"`
	DestinationEndpoint string          `json:"destination_endpoint"`
	Items               []*TransferItem `json:"items"`
}

// NewTransferRequest returns a TransferRequest with an empty item list.
func NewTransferRequest(submissionId, sourceEndpoint, destinationEndpoint string) *TransferRequest {
	return &TransferRequest{
		SubmissionId:        submissionId,
		SourceEndpoint:      sourceEndpoint,
		DestinationEndpoint: destinationEndpoint,
		Items:               make([]*TransferItem, 0),
	}
}

// AddItem adds one source/destination path pair to the request.
func (request *TransferRequest) AddItem(sourcePath, destinationPath string) {
	request.Items = append(request.Items, &TransferItem{
		SourcePath:      sourcePath,
		DestinationPath: destinationPath,
	})
}

// TransferClient talks to the managed file-transfer service's REST API.
// Get one of these from Config.GetTransferClient(), which handles the
// token exchange and caches the client for reuse.
type TransferClient struct {
	apiUrl     string
	identity   string
	token      string
	httpClient *http.Client
	transport  *http.Transport
}

// NewTransferClient returns a new transfer service client that
// authenticates with the given access token. Param apiUrl should come
// from the TransferAPIURL setting in the config file.
func NewTransferClient(apiUrl, identity, token string) *TransferClient {
	transport := &http.Transport{
		MaxIdleConnsPerHost: 8,
		DisableKeepAlives:   false,
	}
	httpClient := &http.Client{Transport: transport}
	return &TransferClient{
		apiUrl:     apiUrl,
		identity:   identity,
		token:      token,
		httpClient: httpClient,
		transport:  transport,
	}
}

// Identity returns the account name the client's token was issued for.
func (client *TransferClient) Identity() string {
	return client.identity
}

// EndpointActivate activates the named endpoint so it can serve as the
// source or destination of a transfer. Endpoints must be activated
// before a transfer between them is submitted.
func (client *TransferClient) EndpointActivate(endpointId string) error {
	activateUrl := fmt.Sprintf("%s/endpoint/%s/autoactivate",
		client.apiUrl, url.PathEscape(endpointId))
	body, err := client.doRequest("POST", activateUrl, nil)
	if err != nil {
		return err
	}
	result := &struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{}
	err = json.Unmarshal(body, result)
	if err != nil {
		return err
	}
	if result.Code == "AutoActivationFailed" {
		return fmt.Errorf("Could not activate endpoint %s: %s",
			endpointId, result.Message)
	}
	return nil
}

// SubmissionID fetches a fresh submission id from the transfer
// service. Each transfer submission needs its own; the service uses it
// to deduplicate retried submissions.
func (client *TransferClient) SubmissionID() (string, error) {
	submissionUrl := fmt.Sprintf("%s/submission_id", client.apiUrl)
	body, err := client.doRequest("GET", submissionUrl, nil)
	if err != nil {
		return "", err
	}
	result := &struct {
		Value string `json:"value"`
	}{}
	err = json.Unmarshal(body, result)
	if err != nil {
		return "", err
	}
	if result.Value == "" {
		return "", fmt.Errorf("Transfer service returned an empty submission id")
	}
	return result.Value, nil
}

// SubmitTransfer submits the transfer described by request and returns
// the task id the service assigns to it. Use the task id with
// TaskStatus to follow the transfer's progress.
func (client *TransferClient) SubmitTransfer(request *TransferRequest) (string, error) {
	transferUrl := fmt.Sprintf("%s/transfer", client.apiUrl)
	requestJson, err := json.Marshal(request)
	if err != nil {
		return "", err
	}
	body, err := client.doRequest("POST", transferUrl, bytes.NewBuffer(requestJson))
	if err != nil {
		return "", err
	}
	result := &struct {
		TaskId string `json:"task_id"`
	}{}
	err = json.Unmarshal(body, result)
	if err != nil {
		return "", err
	}
	if result.TaskId == "" {
		return "", fmt.Errorf("Transfer service accepted the submission "+
			"but returned no task id. Response body: %s", string(body))
	}
	return result.TaskId, nil
}

// TaskStatus returns the current status token for the task with the
// given id, exactly as the transfer service reports it. We request the
// status field only, to keep the remote payload small.
func (client *TransferClient) TaskStatus(taskId string) (string, error) {
	taskUrl := fmt.Sprintf("%s/task/%s?fields=status",
		client.apiUrl, url.PathEscape(taskId))
	body, err := client.doRequest("GET", taskUrl, nil)
	if err != nil {
		return "", err
	}
	result := &struct {
		Status string `json:"status"`
	}{}
	err = json.Unmarshal(body, result)
	if err != nil {
		return "", err
	}
	return result.Status, nil
}

func (client *TransferClient) doRequest(method, absoluteUrl string, requestData io.Reader) ([]byte, error) {
	request, err := http.NewRequest(method, absoluteUrl, requestData)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Authorization", fmt.Sprintf("Bearer %s", client.token))
	if requestData != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, err
	}

	// Always read the body, or the connection will hang open forever.
	body, err := ioutil.ReadAll(response.Body)
	response.Body.Close()
	if err != nil {
		return nil, err
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("Transfer service returned status code %d for %s %s. "+
			"Response body: %s", response.StatusCode, method, absoluteUrl, string(body))
	}
	return body, nil
}
