package source

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"globe-graph/internal/graph"
)

const graphBody = `{"nodes": {"A": {"latitude": 0, "longitude": 0}, "B": {"latitude": 10, "longitude": 20}},
	"edges": [{"head": "A", "tail": "B", "is_directed": true, "weight": 2}]}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/file/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			io.WriteString(w, graphBody)
		case http.MethodPost:
			f, _, err := r.FormFile("file")
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				io.WriteString(w, `{"error": "No file uploaded."}`)
				return
			}
			data, _ := io.ReadAll(f)
			if !strings.Contains(string(data), "nodes") {
				w.WriteHeader(http.StatusBadRequest)
				io.WriteString(w, `{"error": "Could not parse graph file."}`)
				return
			}
			w.Write(data)
		}
	})
	mux.HandleFunc("/api/globe/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/globe/earth/" {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error": "Globe not found."}`)
			return
		}
		io.WriteString(w, `{"type": "FeatureCollection", "features": [{"type": "Feature",
			"properties": {"name": "square"},
			"geometry": {"type": "Polygon", "coordinates": [[[10, 0], [20, 0], [20, 10], [10, 10], [10, 0]]]}}]}`)
	})
	mux.HandleFunc("/broken/api/file/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "<html>oops</html>")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchGraph(t *testing.T) {
	srv := newServer(t)
	c := NewClient(srv.URL+"/", time.Second)
	p, err := c.FetchGraph(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Nodes) != 2 || p.Nodes[0].ID != "A" || len(p.Edges) != 1 {
		t.Errorf("unexpected payload %+v", p)
	}
}

func TestUploadGraphFile(t *testing.T) {
	srv := newServer(t)
	c := NewClient(srv.URL, time.Second)

	p, err := c.UploadGraphFile(context.Background(), "g.json", strings.NewReader(graphBody))
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Nodes) != 2 {
		t.Errorf("expected the echoed graph, got %+v", p)
	}

	_, err = c.UploadGraphFile(context.Background(), "g.txt", strings.NewReader("hello"))
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if ne.Status != http.StatusBadRequest || err.Error() != "Could not parse graph file." {
		t.Errorf("server message should be surfaced, got %d %q", ne.Status, err.Error())
	}
}

func TestUploadTooLarge(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)
	big := strings.NewReader(strings.Repeat("x", MaxUploadSize+1))
	_, err := c.UploadGraphFile(context.Background(), "big.json", big)
	if !IsNetwork(err) || err.Error() != "File too large." {
		t.Errorf("expected too large error, got %v", err)
	}
}

func TestFetchGlobe(t *testing.T) {
	srv := newServer(t)
	c := NewClient(srv.URL, time.Second)

	features, err := c.FetchGlobe(context.Background(), "earth")
	if err != nil {
		t.Fatal(err)
	}
	if len(features) != 1 || features[0].Name != "square" {
		t.Fatalf("unexpected features %+v", features)
	}
	if p := features[0].Ring[1]; p.Latitude != 0 || p.Longitude != 20 {
		t.Errorf("coordinates should be read as [lon, lat], got %+v", p)
	}

	_, err = c.FetchGlobe(context.Background(), "mars")
	var ne *NetworkError
	if !errors.As(err, &ne) || ne.Status != http.StatusNotFound || ne.Message != "Globe not found." {
		t.Errorf("expected not found NetworkError, got %v", err)
	}
}

func TestNetworkErrorWithoutServerMessage(t *testing.T) {
	srv := newServer(t)
	c := NewClient(srv.URL+"/broken", time.Second)
	_, err := c.FetchGraph(context.Background())
	var ne *NetworkError
	if !errors.As(err, &ne) || ne.Message != "" || ne.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected error %v", err)
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error should name the status: %v", err)
	}

	c = NewClient("http://127.0.0.1:1", time.Second)
	if _, err := c.FetchGraph(context.Background()); !IsNetwork(err) {
		t.Errorf("connection failure should be a NetworkError, got %v", err)
	}
}

func TestReadGraphFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "g.yaml")
	os.WriteFile(path, []byte("nodes:\n  A: {latitude: 1, longitude: 2}\n"), 0644)

	p, err := ReadGraphFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Nodes) != 1 || *p.Nodes[0].Longitude != 2 {
		t.Errorf("unexpected payload %+v", p)
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"nodes": [`), 0644)
	if _, err := ReadGraphFile(bad); !errors.Is(err, graph.ErrLoad) {
		t.Errorf("expected LoadError, got %v", err)
	}
	if _, err := ReadGraphFile(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not exist, got %v", err)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "g.json")
	os.WriteFile(path, []byte(graphBody), 0644)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan struct{}, 4)
	if err := Watch(ctx, path, func() { changed <- struct{}{} }); err != nil {
		t.Fatal(err)
	}

	os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0644)
	os.WriteFile(path, []byte(graphBody), 0644)

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestLoadGlobe(t *testing.T) {
	srv := newServer(t)
	c := NewClient(srv.URL, time.Second)
	ctx := context.Background()

	for _, id := range []string{"", BuiltinGlobe} {
		f, err := LoadGlobe(ctx, nil, id)
		if err != nil || len(f) == 0 {
			t.Errorf("LoadGlobe(%q) should give the builtin landmass, got %d features, %v", id, len(f), err)
		}
	}

	path := filepath.Join(t.TempDir(), "land.geojson")
	collection := `{"type": "FeatureCollection", "features": [{"type": "Feature", "properties": {},
		"geometry": {"type": "Polygon", "coordinates": [[[0, 0], [5, 0], [5, 5], [0, 0]]]}}]}`
	if err := os.WriteFile(path, []byte(collection), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := LoadGlobe(ctx, nil, path)
	if err != nil || len(f) != 1 {
		t.Errorf("local file should load without a server, got %d features, %v", len(f), err)
	}

	f, err = LoadGlobe(ctx, c, "earth")
	if err != nil || len(f) != 1 {
		t.Errorf("server globe should load, got %d features, %v", len(f), err)
	}
	if _, err := LoadGlobe(ctx, nil, "earth"); err == nil {
		t.Error("a server globe without a client should fail")
	}
}
