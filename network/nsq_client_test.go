package network_test

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cclibraries/rdmflow/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueue(t *testing.T) {
	var gotTopic string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/put", r.URL.Path)
		gotTopic = r.URL.Query().Get("topic")
		gotBody, _ = ioutil.ReadAll(r.Body)
		fmt.Fprint(w, "OK")
	}))
	defer server.Close()

	client := network.NewNSQClient(server.URL)
	err := client.Enqueue("rdm_pipeline_topic", []byte(`{"bag_dir": "/data/project_42"}`))
	require.Nil(t, err)
	assert.Equal(t, "rdm_pipeline_topic", gotTopic)
	assert.Equal(t, `{"bag_dir": "/data/project_42"}`, string(gotBody))
}

func TestEnqueueServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "TOPIC_NOT_FOUND", http.StatusNotFound)
	}))
	defer server.Close()

	client := network.NewNSQClient(server.URL)
	err := client.Enqueue("rdm_pipeline_topic", []byte("{}"))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "404")
}
