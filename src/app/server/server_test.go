package server

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventlisting/src/infra/backend"
	"eventlisting/src/infra/cache"
	"eventlisting/src/infra/config"
	"eventlisting/src/infra/logger"
	"eventlisting/src/infra/repo"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second},
		Log:    config.LogConfig{Level: "info", Format: "json"},
		Web:    config.WebConfig{Host: "127.0.0.1", Port: 0, BackendTimeout: time.Second},
	}
}

const launchBody = `{"eventName":"Launch","dateStart":"2026-01-01T00:00:00Z","dateEnd":"2026-01-02T00:00:00Z",` +
	`"covers":["a.jpg"],"eventType":"Conference","features":["Keynote","Networking"]}`

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAPI_CreateThenList(t *testing.T) {
	srv := New(testConfig(), logger.Discard(), repo.NewMemoryRepository(), nil, prometheus.NewRegistry())
	h := srv.Router()

	w := do(t, h, http.MethodPost, "/events/Events", launchBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Conference", created["eventType"])
	assert.Equal(t, []any{"Keynote", "Networking"}, created["features"])
	assert.Equal(t, []any{"a.jpg"}, created["covers"])
	assert.Equal(t, "/events/"+created["id"].(string), w.Header().Get("Location"))

	w = do(t, h, http.MethodGet, "/events/Events", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Conference", list[0]["eventType"])
	assert.Equal(t, "2026-01-01T00:00:00Z", list[0]["eventStart"])
	assert.Equal(t, "2026-01-02T00:00:00Z", list[0]["eventEnd"])
}

func TestAPI_CreateRejections(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "empty body",
			body: "",
			want: `{"error":"no creation arguments","value":null}`,
		},
		{
			name: "null body",
			body: "null",
			want: `{"error":"no creation arguments","value":null}`,
		},
		{
			name: "malformed json",
			body: `{"eventName":`,
			want: `{"error":"no creation arguments","value":null}`,
		},
	}
	srv := New(testConfig(), logger.Discard(), repo.NewMemoryRepository(), nil, prometheus.NewRegistry())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv.Router(), http.MethodPost, "/events/Events", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestAPI_FieldValidationProblem(t *testing.T) {
	srv := New(testConfig(), logger.Discard(), repo.NewMemoryRepository(), nil, prometheus.NewRegistry())

	w := do(t, srv.Router(), http.MethodPost, "/events/Events",
		`{"eventName":"`+strings.Repeat("x", 201)+`","dateStart":"2026-01-01T00:00:00Z"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var problem struct {
		Status int                 `json:"status"`
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, http.StatusBadRequest, problem.Status)
	assert.Equal(t, []string{"The field eventName must be a string with a maximum length of 200."}, problem.Errors["eventName"])
	assert.Equal(t, []string{"The eventType field is required."}, problem.Errors["eventType"])
	assert.Equal(t, []string{"The dateEnd field is required."}, problem.Errors["dateEnd"])
	assert.NotContains(t, problem.Errors, "dateStart")
}

func TestAPI_BlankNamesRequired(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{
			name:  "blank eventType",
			body:  `{"eventName":"Launch","dateStart":"2026-01-01T00:00:00Z","dateEnd":"2026-01-02T00:00:00Z","eventType":"   "}`,
			field: "eventType",
		},
		{
			name:  "blank eventName",
			body:  `{"eventName":"   ","dateStart":"2026-01-01T00:00:00Z","dateEnd":"2026-01-02T00:00:00Z","eventType":"Conference"}`,
			field: "eventName",
		},
	}
	memory := repo.NewMemoryRepository()
	srv := New(testConfig(), logger.Discard(), memory, nil, prometheus.NewRegistry())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv.Router(), http.MethodPost, "/events/Events", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var problem struct {
				Title  string              `json:"title"`
				Status int                 `json:"status"`
				Errors map[string][]string `json:"errors"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
			assert.NotEmpty(t, problem.Title)
			assert.Equal(t, http.StatusBadRequest, problem.Status)
			assert.Equal(t, map[string][]string{tt.field: {"The " + tt.field + " field is required."}}, problem.Errors)
		})
	}
	assert.Empty(t, memory.Categories(), "nothing stored")
}

func TestAPI_BusinessRuleEchoesInput(t *testing.T) {
	memory := repo.NewMemoryRepository()
	srv := New(testConfig(), logger.Discard(), memory, nil, prometheus.NewRegistry())

	body := `{"eventName":"Launch","dateStart":"2026-01-02T00:00:00Z","dateEnd":"2026-01-02T00:00:00Z",` +
		`"eventType":"Conference","features":["Keynote"]}`
	w := do(t, srv.Router(), http.MethodPost, "/events/Events", body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var got struct {
		Error string         `json:"error"`
		Value map[string]any `json:"value"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "eventEnd must be after eventStart", got.Error)
	assert.Equal(t, "Launch", got.Value["eventName"])
	assert.Empty(t, memory.Categories())
	assert.Empty(t, memory.Features())
}

func TestAPI_ListServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)

	srv := New(testConfig(), logger.Discard(), repo.NewMemoryRepository(), rc, prometheus.NewRegistry())
	h := srv.Router()

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/events/Events", "").Code)
	assert.True(t, mr.Exists(cache.ListKey))

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/events/Events", launchBody).Code)
	assert.False(t, mr.Exists(cache.ListKey), "create must invalidate the cached list")

	w := do(t, h, http.MethodGet, "/events/Events", "")
	assert.Contains(t, w.Body.String(), `"eventName":"Launch"`)
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	srv := New(testConfig(), logger.Discard(), repo.NewMemoryRepository(), nil, prometheus.NewRegistry())
	h := srv.Router()

	assert.JSONEq(t, `{"status":"ok"}`, do(t, h, http.MethodGet, "/health", "").Body.String())

	w := do(t, h, http.MethodGet, "/health/detailed", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":{"status":"healthy"}`)

	w = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	w = do(t, h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestWeb_AddEventThroughAPI(t *testing.T) {
	api := New(testConfig(), logger.Discard(), repo.NewMemoryRepository(), nil, prometheus.NewRegistry())
	apiHTTP := httptest.NewServer(api.Router())
	defer apiHTTP.Close()

	client := backend.NewClient(apiHTTP.URL, time.Second, logger.Discard())
	web := NewWeb(testConfig(), logger.Discard(), client, prometheus.NewRegistry())

	form := url.Values{
		"eventName": {"  Launch "},
		"eventType": {"Conference"},
		"dateStart": {"2026-01-01"},
		"dateEnd":   {"2026-01-02"},
		"covers":    {"a.jpg\r\nb.jpg, "},
		"features":  {"Keynote,Networking"},
		"width":     {"320"},
	}
	req := httptest.NewRequest(http.MethodPost, "/addevent", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	web.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got struct {
		DTO  map[string]any `json:"dto"`
		Card struct {
			ID    string  `json:"id"`
			Width *string `json:"width"`
			Data  struct {
				DateStart string   `json:"dateStart"`
				Covers    []string `json:"covers"`
				Features  []string `json:"features"`
				EventName string   `json:"eventName"`
			} `json:"data"`
		} `json:"card"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, got.DTO["id"], got.Card.ID)
	assert.Equal(t, "320", *got.Card.Width)
	assert.Equal(t, "Launch", got.Card.Data.EventName)
	assert.Equal(t, "2026-01-01T00:00:00.000Z", got.Card.Data.DateStart)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, got.Card.Data.Covers)
	assert.Equal(t, []string{"Keynote", "Networking"}, got.Card.Data.Features)

	w = httptest.NewRecorder()
	web.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cards", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var cards []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, got.Card.ID, cards[0]["id"])
}

func TestWeb_AddEventRejected(t *testing.T) {
	client := backend.NewClient("http://127.0.0.1:1", time.Second, logger.Discard())
	web := NewWeb(testConfig(), logger.Discard(), client, prometheus.NewRegistry())

	form := url.Values{"eventName": {"Launch"}, "dateStart": {"2026-01-01"}, "dateEnd": {"2026-01-02"}, "covers": {""}}
	req := httptest.NewRequest(http.MethodPost, "/addevent", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	web.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var got struct {
		Errors map[string]string `json:"errors"`
		Values map[string]string `json:"values"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Contains(t, got.Errors, "covers")
	assert.Equal(t, "Launch", got.Values["eventName"])
}

func TestWeb_BackendDown(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	client := backend.NewClient(deadURL, time.Second, logger.Discard())
	web := NewWeb(testConfig(), logger.Discard(), client, prometheus.NewRegistry())

	form := url.Values{"eventName": {"Launch"}, "dateStart": {"2026-01-01"}, "dateEnd": {"2026-01-02"}, "covers": {"a.jpg"}}
	req := httptest.NewRequest(http.MethodPost, "/addevent", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	web.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Backend unavailable")
}

func TestServer_ServesOverTCP(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	cfg := testConfig()
	cfg.Server.Port = l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	srv := New(cfg, logger.Discard(), repo.NewMemoryRepository(), nil, prometheus.NewRegistry())
	served := make(chan error, 1)
	go func() { served <- srv.http.ListenAndServe() }()

	require.NoError(t, srv.WaitForReady(2*time.Second))

	resp, err := http.Get("http://" + cfg.Server.Addr() + "/events/Events")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Shutdown())
	assert.True(t, errors.Is(<-served, http.ErrServerClosed))
}

func TestServer_WaitForReadyTimesOut(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	cfg := testConfig()
	cfg.Server.Port = l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	srv := New(cfg, logger.Discard(), repo.NewMemoryRepository(), nil, prometheus.NewRegistry())
	assert.ErrorContains(t, srv.WaitForReady(50*time.Millisecond), "not ready")
}
