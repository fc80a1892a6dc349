package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventlisting/src/core/domain"
	"eventlisting/src/core/ports"
	"eventlisting/src/infra/logger"
)

func TestClient_CreateEvent(t *testing.T) {
	var gotBody map[string]any
	var gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, EventsPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotRequestID = r.Header.Get(RequestIDHeader)
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"e1","eventName":"Launch"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second, logger.Discard())
	ctx := WithRequestID(context.Background(), "req-1")

	raw, err := c.CreateEvent(ctx, map[string]string{"eventName": "Launch"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"e1","eventName":"Launch"}`, string(raw))
	assert.Equal(t, "Launch", gotBody["eventName"])
	assert.Equal(t, "req-1", gotRequestID)
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"eventEnd must be after eventStart"}` + "\n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, logger.Discard())
	_, err := c.CreateEvent(context.Background(), map[string]string{})

	var statusErr *ports.BackendStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, `{"error":"eventEnd must be after eventStart"}`, statusErr.Body)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, logger.Discard())
	_, err := c.ListEvents(context.Background())

	assert.True(t, domain.IsUnavailable(err))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, 20*time.Millisecond, logger.Discard())
	_, err := c.ListEvents(context.Background())

	assert.True(t, domain.IsUnavailable(err))
	assert.ErrorContains(t, err, "timed out")
}
