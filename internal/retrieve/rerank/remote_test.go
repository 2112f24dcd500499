package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteScorePostsPairsAndParsesScores(t *testing.T) {
	var gotAuth string
	var gotReq scoreRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/score", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(scoreResponse{Scores: []float64{0.5, 0.25}})
	}))
	defer server.Close()

	remote := NewRemote(RemoteConfig{Endpoint: server.URL, APIKey: "secret"})
	scores, err := remote.Score(context.Background(), []Pair{
		{Query: "насос", Doc: "насос центробежный"},
		{Query: "насос", Doc: "клапан запорный"},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.25}, scores)
	assert.Equal(t, "Bearer secret", gotAuth)
	require.Len(t, gotReq.Pairs, 2)
	assert.Equal(t, [2]string{"насос", "насос центробежный"}, gotReq.Pairs[0])
}

func TestRemoteScoreOmitsAuthorizationWithoutAPIKey(t *testing.T) {
	var sawAuth bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = len(r.Header["Authorization"]) > 0
		json.NewEncoder(w).Encode(scoreResponse{Scores: []float64{1.0}})
	}))
	defer server.Close()

	remote := NewRemote(RemoteConfig{Endpoint: server.URL})
	_, err := remote.Score(context.Background(), []Pair{{Query: "q", Doc: "d"}})
	require.NoError(t, err)
	assert.False(t, sawAuth, "unexpected Authorization header present")
}

func TestRemoteScoreReturnsTransientErrorOnNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	remote := NewRemote(RemoteConfig{Endpoint: server.URL})
	_, err := remote.Score(context.Background(), []Pair{{Query: "q", Doc: "d"}})
	require.Error(t, err)
}
