package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/duonguwu/ai-challenge/internal/config"
	"github.com/duonguwu/ai-challenge/internal/embedding"
	"github.com/duonguwu/ai-challenge/internal/models"
	"github.com/duonguwu/ai-challenge/internal/search"
	"github.com/duonguwu/ai-challenge/internal/vectorstore"
)

const (
	testCollection = "video_keyframes"
	testDimensions = 8
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := vectorstore.NewMemoryStore()
	ctx := context.Background()
	if err := store.EnsureCollection(ctx, testCollection, testDimensions, vectorstore.DistanceCosine); err != nil {
		t.Fatal(err)
	}
	points := make([]*vectorstore.Point, 0, 3)
	for i, spec := range []struct {
		videoID string
		idx     int
	}{
		{"L21_V001", 1},
		{"L21_V001", 2},
		{"L21_V002", 1},
	} {
		vec := make([]float32, testDimensions)
		vec[i] = 1
		id := models.OriginalID(spec.videoID, spec.idx)
		points = append(points, &vectorstore.Point{
			ID:     id,
			Vector: vec,
			Payload: models.KeyframePayload{
				OriginalID:    id,
				VideoID:       spec.videoID,
				KeyframeIndex: spec.idx,
			},
		})
	}
	if err := store.Upsert(ctx, testCollection, points); err != nil {
		t.Fatal(err)
	}

	embedder := embedding.NewMockEmbedder(testDimensions)
	engine := search.NewEngine(store, embedder, testCollection,
		&config.SearchConfig{DefaultLimit: 500, MaxLimit: 1000}, zap.NewNop())
	srv := NewServer(engine, store, embedder, &config.ServerConfig{}, zap.NewNop())

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeSearchResponse(t *testing.T, resp *http.Response) *models.SearchResponse {
	t.Helper()
	var out models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return &out
}

func TestSearchTextEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts, "/api/v1/search/text", &models.TextSearchRequest{
		QueryTexts: []string{"a red car on the street"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	out := decodeSearchResponse(t, resp)
	if out.TotalResults != 3 {
		t.Errorf("total results = %d, want 3", out.TotalResults)
	}
	for i, r := range out.Results {
		if r.Rank != i+1 {
			t.Errorf("result %d has rank %d", i, r.Rank)
		}
	}
	grouped := 0
	for _, g := range out.GroupedByVideo {
		grouped += g.TotalFrames
	}
	if grouped != out.TotalResults {
		t.Errorf("groups hold %d frames, want %d", grouped, out.TotalResults)
	}
}

func TestSearchTextEndpointBadJSON(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/v1/search/text", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSearchTextEndpointEmptyQueries(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts, "/api/v1/search/text", &models.TextSearchRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSearchImageEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts, "/api/v1/search/image", &models.ImageSearchRequest{
		ImageBase64: base64.StdEncoding.EncodeToString([]byte("fake jpeg bytes")),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	out := decodeSearchResponse(t, resp)
	if out.TotalResults != 3 {
		t.Errorf("total results = %d, want 3", out.TotalResults)
	}
}

func TestSearchImageEndpointBadBase64(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts, "/api/v1/search/image", &models.ImageSearchRequest{
		ImageBase64: "not-base64!!!",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCollectionInfoEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/v1/collection")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var info models.CollectionInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info.Name != testCollection || info.PointsCount != 3 || info.VectorSize != testDimensions {
		t.Errorf("collection info = %+v", info)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	var status map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status["status"] != "ok" {
		t.Errorf("health status = %q", status["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "keyframe_search") {
		t.Error("metrics output should contain keyframe_search series")
	}
}
