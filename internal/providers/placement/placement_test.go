package placement

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
roads:
  - road: e6mini.xodr
    density: 2.0
    candidates:
      - {lane: -2, s: 20, skin: car_blue}
      - {lane: -3, s: 40}
      - {lane: -2, s: 60, skin: truck_yellow}
      - {lane: -3, s: 80}
  - road: fabriksgatan_traffic_lights.xodr
    candidates:
      - {lane: -1, s: 30}
`

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestCatalogDensity(t *testing.T) {
	cat, err := LoadCatalog(writeCatalog(t, catalogYAML))
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Roads())

	tests := []struct {
		name    string
		road    string
		density float64
		want    int
	}{
		{"full density", "e6mini.xodr", 2.0, 4},
		{"above list density", "e6mini.xodr", 5.0, 4},
		{"half density rounds up", "e6mini.xodr", 1.0, 2},
		{"small density keeps one", "e6mini.xodr", 0.1, 1},
		{"zero density", "e6mini.xodr", 0, 0},
		{"full path matches file name", "/opt/esmini/resources/xodr/e6mini.xodr", 2.0, 4},
		{"default list density", "fabriksgatan_traffic_lights.xodr", 1.0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cat.Candidates(context.Background(), tt.road, Anchor{}, tt.density)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
			for i, c := range got {
				assert.Equal(t, i, c.Index)
			}
		})
	}
}

func TestCatalogContents(t *testing.T) {
	cat, err := LoadCatalog(writeCatalog(t, catalogYAML))
	require.NoError(t, err)

	got, err := cat.Candidates(context.Background(), "e6mini.xodr", Anchor{Lane: -2}, 2)
	require.NoError(t, err)
	assert.Equal(t, Candidate{Index: 2, Lane: -2, S: 60, Skin: "truck_yellow"}, got[2])
	assert.Empty(t, got[1].Skin)

	got[0].S = 999
	again, _ := cat.Candidates(context.Background(), "e6mini.xodr", Anchor{}, 2)
	assert.Equal(t, 20.0, again[0].S, "returned slices are copies")
}

func TestCatalogErrors(t *testing.T) {
	cat, err := LoadCatalog(writeCatalog(t, catalogYAML))
	require.NoError(t, err)

	_, err = cat.Candidates(context.Background(), "unknown.xodr", Anchor{}, 1)
	assert.ErrorIs(t, err, ErrUnknownRoad)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = cat.Candidates(ctx, "e6mini.xodr", Anchor{}, 1)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadCatalog(writeCatalog(t, "roads: [\n"))
	assert.Error(t, err)

	_, err = NewCatalog([]RoadCandidates{{Road: "a.xodr"}, {Road: "dir/a.xodr"}})
	assert.Error(t, err)

	_, err = NewCatalog([]RoadCandidates{{}})
	assert.Error(t, err)
}

func testClientConfig(url string) ClientConfig {
	cfg := DefaultClientConfig(url)
	cfg.Timeout = 2 * time.Second
	cfg.MaxRetries = 2
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	return cfg
}

func TestClientCandidates(t *testing.T) {
	var received candidatesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/candidates", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"index":3,"lane":-2,"s":45.5,"skin":"car_blue"}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(testClientConfig(srv.URL + "/"))
	require.NoError(t, err)

	got, err := client.Candidates(context.Background(), "e6mini.xodr", Anchor{Lane: -2, S: 10}, 2)
	require.NoError(t, err)
	assert.Equal(t, []Candidate{{Index: 0, Lane: -2, S: 45.5, Skin: "car_blue"}}, got, "index comes from list position")
	assert.Equal(t, candidatesRequest{Road: "e6mini.xodr", Anchor: Anchor{Lane: -2, S: 10}, Density: 2}, received)
}

func TestClientAssignsIndicesFromPosition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"lane":-3,"s":100},{"lane":-3,"s":200},{"index":0,"lane":-2,"s":300}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(testClientConfig(srv.URL))
	require.NoError(t, err)

	got, err := client.Candidates(context.Background(), "e6mini.xodr", Anchor{Lane: -2}, 2)
	require.NoError(t, err)
	assert.Equal(t, []Candidate{
		{Index: 0, Lane: -3, S: 100},
		{Index: 1, Lane: -3, S: 200},
		{Index: 2, Lane: -2, S: 300},
	}, got)
}

func TestClientRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client, err := NewClient(testClientConfig(srv.URL))
	require.NoError(t, err)

	got, err := client.Candidates(context.Background(), "e6mini.xodr", Anchor{}, 1)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "persistent server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "client error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client, err := NewClient(testClientConfig(srv.URL))
			require.NoError(t, err)

			_, err = client.Candidates(context.Background(), "e6mini.xodr", Anchor{}, 1)
			assert.Error(t, err)
		})
	}

	_, err := NewClient(ClientConfig{})
	assert.Error(t, err)
}

func TestStaticAndSourceFunc(t *testing.T) {
	src := Static(Candidate{Index: 0, Lane: -2, S: 10})
	got, err := src.Candidates(context.Background(), "any", Anchor{}, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	var seen string
	fn := SourceFunc(func(_ context.Context, road string, _ Anchor, _ float64) ([]Candidate, error) {
		seen = road
		return nil, nil
	})
	_, _ = fn.Candidates(context.Background(), "road.xodr", Anchor{}, 1)
	assert.Equal(t, "road.xodr", seen)
}
