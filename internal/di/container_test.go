package di

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmdesk/internal/app/messaging"
	"dmdesk/internal/config"
)

func testConfig(baseURL string) config.Config {
	cfg := config.Default()
	cfg.Twitter.BaseURL = baseURL
	cfg.Credentials = config.Credentials{
		ConsumerKey:       "ck",
		ConsumerSecret:    "cs",
		AccessToken:       "at",
		AccessTokenSecret: "ats",
	}
	return cfg
}

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /2/users/me", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"id":"7","username":"operator"}}`))
	})
	mux.HandleFunc("GET /2/users/by/username/{username}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("username") != "alice" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"title":"Not Found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"id":"42","username":"alice"}}`))
	})
	mux.HandleFunc("POST /2/dm_conversations/with/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"dm_conversation_id":"7-42","dm_event_id":"1"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestBuildContainerWiresWorkflow(t *testing.T) {
	srv := fakeAPI(t)
	var logs bytes.Buffer

	c, err := BuildContainer(context.Background(), testConfig(srv.URL), WithLogOutput(&logs))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Cleanup(context.Background()) })

	assert.True(t, c.Status.Connected)
	assert.Equal(t, "@operator", c.Status.Display)

	result := c.Orchestrator.Process(context.Background(), "@alice", "hello")
	assert.True(t, result.OK(), result.Text)
	assert.Contains(t, result.Text, "User ID: 42")

	text := c.Orchestrator.Handle(context.Background(), "ghost", "hello")
	assert.Equal(t, "❌ User @ghost not found", text)
	assert.Contains(t, logs.String(), "Container ready")
}

func TestBuildContainerProbeFailureIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"title":"Unauthorized","status":401}`))
	}))
	t.Cleanup(srv.Close)

	c, err := BuildContainer(context.Background(), testConfig(srv.URL), WithLogOutput(&bytes.Buffer{}))
	require.NoError(t, err)

	assert.False(t, c.Status.Connected)
	assert.Equal(t, messaging.StatusConnectionError, c.Status.Display)
}

func TestBuildContainerWithoutProbe(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	t.Cleanup(srv.Close)

	c, err := BuildContainer(context.Background(), testConfig(srv.URL), WithoutProbe(), WithLogOutput(&bytes.Buffer{}))
	require.NoError(t, err)

	assert.Zero(t, hits)
	assert.Equal(t, messaging.StatusNotConnected, c.Status.Display)
}

func TestBuildContainerRequiresCredentials(t *testing.T) {
	cfg := testConfig("https://api.example.com")
	cfg.Credentials.AccessTokenSecret = ""

	_, err := BuildContainer(context.Background(), cfg, WithoutProbe())

	require.ErrorIs(t, err, config.ErrMissingCredentials)
}

func TestBuildContainerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig("")

	_, err := BuildContainer(context.Background(), cfg, WithoutProbe())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "twitter.base_url")
}
