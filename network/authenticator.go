package network

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
)

// AccessToken is what the transfer service's auth endpoint hands back
// when we exchange a username and secret. Identity is the canonical
// account name the token was issued for, which may differ from the
// username we sent (e.g. "josie" vs. "josie@example.edu").
type AccessToken struct {
	Identity string `json:"username"`
	Token    string `json:"access_token"`
}

// Authenticator exchanges transfer service credentials for an access
// token. The HTTP implementation below talks to the real auth service;
// tests supply their own.
type Authenticator interface {
	Exchange(username, secret string) (*AccessToken, error)
}

// GoauthAuthenticator exchanges credentials for a token using the
// transfer service's goauth endpoint. The exchange is a single GET
// with HTTP basic auth.
type GoauthAuthenticator struct {
	authUrl    string
	httpClient *http.Client
}

// NewGoauthAuthenticator returns an authenticator that talks to the
// auth service at authUrl. Param authUrl should come from the
// TransferAuthURL setting in the config file.
func NewGoauthAuthenticator(authUrl string) *GoauthAuthenticator {
	return &GoauthAuthenticator{
		authUrl:    authUrl,
		httpClient: &http.Client{},
	}
}

// Exchange trades a username and secret for an access token.
// Returns an error if the auth service rejects the credentials or
// cannot be reached.
func (auth *GoauthAuthenticator) Exchange(username, secret string) (*AccessToken, error) {
	tokenUrl := fmt.Sprintf("%s/goauth/token?grant_type=client_credentials", auth.authUrl)
	request, err := http.NewRequest("GET", tokenUrl, nil)
	if err != nil {
		return nil, err
	}
	request.SetBasicAuth(username, secret)
	response, err := auth.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	body, err := ioutil.ReadAll(response.Body)
	response.Body.Close()
	if err != nil {
		return nil, err
	}
	if response.StatusCode != 200 {
		return nil, fmt.Errorf("Auth service returned status code %d. Response body: %s",
			response.StatusCode, string(body))
	}
	token := &AccessToken{}
	err = json.Unmarshal(body, token)
	if err != nil {
		return nil, err
	}
	if token.Token == "" {
		return nil, fmt.Errorf("Auth service returned an empty access token")
	}
	if token.Identity == "" {
		token.Identity = username
	}
	return token, nil
}
