// Package source fetches graph and globe payloads: from the HTTP API, from
// local files, and again whenever a watched file changes.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"globe-graph/internal/debug"
	"globe-graph/internal/globe"
	"globe-graph/internal/graph"
)

const (
	// MaxUploadSize matches the server's upload limit.
	MaxUploadSize = 500 * 1024

	// MaxResponseSize bounds how much of a response body is read.
	MaxResponseSize = 16 << 20

	DefaultTimeout = 10 * time.Second
)

// NetworkError is a failed request. Message is the server's own error text
// when it sent one.
type NetworkError struct {
	Op      string
	URL     string
	Status  int
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Status != 0:
		return fmt.Sprintf("%s %s: status %d", e.Op, e.URL, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s %s failed", e.Op, e.URL)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Client talks to the graph server API.
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// FetchGraph downloads the current graph.
func (c *Client) FetchGraph(ctx context.Context) (*graph.Payload, error) {
	body, err := c.do(ctx, "fetch graph", http.MethodGet, c.url("/api/file/"), nil, "")
	if err != nil {
		return nil, err
	}
	return graph.Decode(body, "json")
}

// UploadGraphFile sends a graph file to the server, which parses it and
// answers with the graph payload.
func (c *Client) UploadGraphFile(ctx context.Context, name string, r io.Reader) (*graph.Payload, error) {
	u := c.url("/api/file/")
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, &NetworkError{Op: "upload graph", URL: u, Err: err}
	}
	if len(data) > MaxUploadSize {
		return nil, &NetworkError{Op: "upload graph", URL: u, Message: "File too large."}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return nil, &NetworkError{Op: "upload graph", URL: u, Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return nil, &NetworkError{Op: "upload graph", URL: u, Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &NetworkError{Op: "upload graph", URL: u, Err: err}
	}

	body, err := c.do(ctx, "upload graph", http.MethodPost, u, &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	return graph.Decode(body, "json")
}

// FetchGlobe downloads the landmass features of globe id.
func (c *Client) FetchGlobe(ctx context.Context, id string) ([]globe.Feature, error) {
	u := c.url("/api/globe/" + url.PathEscape(id) + "/")
	body, err := c.do(ctx, "fetch globe", http.MethodGet, u, nil, "")
	if err != nil {
		return nil, err
	}
	return globe.Decode(body)
}

func (c *Client) do(ctx context.Context, op, method, u string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: u, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	debug.Log("source: %s %s", method, u)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, &NetworkError{Op: op, URL: u, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		ne := &NetworkError{Op: op, URL: u, Status: resp.StatusCode, Message: serverMessage(data)}
		debug.Log("source: %s failed: %v", op, ne)
		return nil, ne
	}
	return data, nil
}

// serverMessage extracts the text of an {"error": "..."} body.
func serverMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return body.Error
}

// ReadGraphFile loads a graph payload from a local JSON or YAML file.
func ReadGraphFile(path string) (*graph.Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}
	return graph.Decode(data, formatOf(path))
}

// ReadGlobeFile loads landmass features from a local GeoJSON file.
func ReadGlobeFile(path string) ([]globe.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read globe file: %w", err)
	}
	return globe.Decode(data)
}

// BuiltinGlobe names the landmass compiled into the binary.
const BuiltinGlobe = "builtin"

// LoadGlobe resolves globe id: the built-in landmass for "" or BuiltinGlobe,
// a local GeoJSON file when id ends in .json or .geojson, otherwise the
// server's globe of that id.
func LoadGlobe(ctx context.Context, c *Client, id string) ([]globe.Feature, error) {
	switch {
	case id == "" || id == BuiltinGlobe:
		return globe.Builtin(), nil
	case formatOf(id) == "json":
		return ReadGlobeFile(id)
	case c == nil:
		return nil, fmt.Errorf("globe %q: no server configured", id)
	}
	return c.FetchGlobe(ctx, id)
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json", ".geojson":
		return "json"
	}
	return ""
}

// IsNetwork reports whether err came from talking to the server.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
