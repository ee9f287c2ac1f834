package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"globe-graph/internal/graph"
)

const obstructedGraph = `{
	"nodes": {
		"A": {"latitude": 0, "longitude": 0},
		"M": {"latitude": 0, "longitude": 45},
		"B": {"latitude": 0, "longitude": 90}
	},
	"edges": [{"head": "A", "tail": "B", "is_directed": false, "weight": 1}]
}`

func writeGraph(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(path, []byte(obstructedGraph), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBeautifyCommand(t *testing.T) {
	out, err := execute(t, "beautify", "--graph", writeGraph(t))
	if err != nil {
		t.Fatalf("beautify failed: %v\n%s", err, out)
	}
	var handles []graph.HandleInfo
	if err := json.Unmarshal([]byte(out), &handles); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(handles) != 1 || handles[0].Head != "A" || handles[0].Tail != "B" {
		t.Fatalf("unexpected handles %+v", handles)
	}
	if handles[0].HeadHandle == nil || handles[0].TailHandle == nil {
		t.Error("the obstructed edge should be bent")
	}
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.png")
	out, err := execute(t, "export", "--graph", writeGraph(t), "--out", target, "--width", "300", "--height", "200")
	if err != nil {
		t.Fatalf("export failed: %v\n%s", err, out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}

	out, err = execute(t, "export", "--graph", writeGraph(t), "--data-url", "--format", "jpeg", "--width", "64", "--height", "64")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.HasPrefix(out, "data:image/jpeg;base64,") {
		t.Errorf("unexpected output %.40q", out)
	}
}

func TestExportRejectsBadGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte(`{"nodes": {"A": [0, 0]}, "edges": [{"head": "A", "tail": "Z"}]}`), 0644)
	if _, err := execute(t, "export", "--graph", path, "--out", filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Error("expected an error for an unknown node")
	}
}

func TestConfigFlagOverrides(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "c.toml")
	os.WriteFile(cfgPath, []byte("[display]\naspect_ratio = 3.0\n"), 0644)

	if _, err := execute(t, "beautify", "-c", cfgPath, "-a", "9", "--graph", writeGraph(t)); err == nil {
		t.Error("an out of range aspect flag should be rejected")
	}
	if _, err := execute(t, "beautify", "-c", cfgPath, "--graph", writeGraph(t)); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
