package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// NodeSpec is one node of a decoded payload. Optional attributes are empty
// or nil when the payload did not set them.
type NodeSpec struct {
	ID           string
	Latitude     *float64
	Longitude    *float64
	IP           string
	Colour       string
	Opacity      *float64
	FontColour   string
	StrokeColour string
}

// EdgeSpec is one edge of a decoded payload.
type EdgeSpec struct {
	Head     string
	Tail     string
	Directed bool
	Weight   *float64
	Colour   string
	Opacity  *float64
}

// Payload is the strongly typed form of a graph payload. Nodes keep the
// order they had in the document.
type Payload struct {
	Name  string
	Nodes []NodeSpec
	Edges []EdgeSpec
}

type rawNode struct {
	Latitude     *float64 `json:"latitude" yaml:"latitude"`
	Longitude    *float64 `json:"longitude" yaml:"longitude"`
	IP           string   `json:"ip" yaml:"ip"`
	Colour       string   `json:"colour" yaml:"colour"`
	Opacity      *float64 `json:"opacity" yaml:"opacity"`
	FontColour   string   `json:"fontcolour" yaml:"fontcolour"`
	StrokeColour string   `json:"strokecolour" yaml:"strokecolour"`

	// encoding/json matches keys case-insensitively; yaml does not.
	FontColourCamel   string `json:"-" yaml:"fontColour"`
	StrokeColourCamel string `json:"-" yaml:"strokeColour"`
}

func (r rawNode) spec(id string) NodeSpec {
	s := NodeSpec{
		ID:           id,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		IP:           r.IP,
		Colour:       r.Colour,
		Opacity:      r.Opacity,
		FontColour:   r.FontColour,
		StrokeColour: r.StrokeColour,
	}
	if s.FontColour == "" {
		s.FontColour = r.FontColourCamel
	}
	if s.StrokeColour == "" {
		s.StrokeColour = r.StrokeColourCamel
	}
	return s
}

type rawEdge struct {
	Head       string   `json:"head" yaml:"head"`
	Tail       string   `json:"tail" yaml:"tail"`
	IsDirected bool     `json:"is_directed" yaml:"is_directed"`
	Weight     *float64 `json:"weight" yaml:"weight"`
	Colour     string   `json:"colour" yaml:"colour"`
	Opacity    *float64 `json:"opacity" yaml:"opacity"`
}

func (r rawEdge) spec() EdgeSpec {
	return EdgeSpec{
		Head:     r.Head,
		Tail:     r.Tail,
		Directed: r.IsDirected,
		Weight:   r.Weight,
		Colour:   r.Colour,
		Opacity:  r.Opacity,
	}
}

// Decode parses a payload. format is "json", "yaml" or empty to sniff it
// from the first non-blank byte.
func Decode(data []byte, format string) (*Payload, error) {
	switch strings.ToLower(format) {
	case "json":
		return DecodeJSON(data)
	case "yaml", "yml":
		return DecodeYAML(data)
	case "":
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '{' {
			return DecodeJSON(data)
		}
		return DecodeYAML(data)
	}
	return nil, fmt.Errorf("unknown payload format %q", format)
}

func malformed(format string, args ...any) *LoadError {
	return loadErrorf(ErrMalformed, format, args...)
}

// DecodeJSON parses a JSON payload with a token decoder so node order and
// duplicate node ids survive decoding.
//
// Besides the documented form it accepts the file API's compact form:
// nodes as [latitude, longitude] arrays, and "directed"/"undirected" lists
// of [head, tail, weight] triples.
func DecodeJSON(data []byte) (*Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	p := &Payload{}
	for dec.More() {
		key, err := objectKey(dec)
		if err != nil {
			return nil, err
		}
		switch key {
		case "name":
			if err := dec.Decode(&p.Name); err != nil {
				return nil, malformed("name: %v", err)
			}
		case "nodes":
			if err := decodeJSONNodes(dec, p); err != nil {
				return nil, err
			}
		case "edges":
			var edges []rawEdge
			if err := dec.Decode(&edges); err != nil {
				return nil, malformed("edges: %v", err)
			}
			for _, e := range edges {
				p.Edges = append(p.Edges, e.spec())
			}
		case "directed", "undirected":
			var triples [][]any
			if err := dec.Decode(&triples); err != nil {
				return nil, malformed("%s: %v", key, err)
			}
			for i, t := range triples {
				e, err := compactEdge(t, key == "directed")
				if err != nil {
					return nil, malformed("%s[%d]: %v", key, i, err)
				}
				p.Edges = append(p.Edges, e)
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, malformed("%s: %v", key, err)
			}
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, malformed("trailing data after payload")
	}
	return p, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return malformed("%v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return malformed("expected %q, got %v", want, tok)
	}
	return nil
}

func objectKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", malformed("%v", err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", malformed("expected object key, got %v", tok)
	}
	return key, nil
}

func decodeJSONNodes(dec *json.Decoder, p *Payload) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for dec.More() {
		id, err := objectKey(dec)
		if err != nil {
			return err
		}
		if seen[id] {
			return loadErrorf(ErrDuplicateNode, "node %q", id)
		}
		seen[id] = true

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return malformed("node %q: %v", id, err)
		}
		spec, err := jsonNode(id, raw)
		if err != nil {
			return err
		}
		p.Nodes = append(p.Nodes, spec)
	}
	return expectDelim(dec, '}')
}

func jsonNode(id string, raw json.RawMessage) (NodeSpec, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(trimmed, &pair); err != nil || len(pair) != 2 {
			return NodeSpec{}, malformed("node %q: want [latitude, longitude]", id)
		}
		return NodeSpec{ID: id, Latitude: &pair[0], Longitude: &pair[1]}, nil
	}

	var r rawNode
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return NodeSpec{}, malformed("node %q: %v", id, err)
	}
	return r.spec(id), nil
}

func compactEdge(t []any, directed bool) (EdgeSpec, error) {
	if len(t) < 2 || len(t) > 3 {
		return EdgeSpec{}, fmt.Errorf("want [head, tail, weight]")
	}
	head, ok1 := t[0].(string)
	tail, ok2 := t[1].(string)
	if !ok1 || !ok2 {
		return EdgeSpec{}, fmt.Errorf("head and tail must be node ids")
	}
	e := EdgeSpec{Head: head, Tail: tail, Directed: directed}
	if len(t) == 3 {
		w, ok := t[2].(float64)
		if !ok {
			return EdgeSpec{}, fmt.Errorf("weight must be a number")
		}
		e.Weight = &w
	}
	return e, nil
}

// DecodeYAML parses a YAML payload. The node mapping is walked as a
// yaml.Node tree so document order is kept and duplicate ids are caught.
func DecodeYAML(data []byte) (*Payload, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, malformed("%v", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, malformed("empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, malformed("payload must be a mapping")
	}

	p := &Payload{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]
		switch key {
		case "name":
			if err := val.Decode(&p.Name); err != nil {
				return nil, malformed("name: %v", err)
			}
		case "nodes":
			if err := decodeYAMLNodes(val, p); err != nil {
				return nil, err
			}
		case "edges":
			var edges []rawEdge
			if err := val.Decode(&edges); err != nil {
				return nil, malformed("edges: %v", err)
			}
			for _, e := range edges {
				p.Edges = append(p.Edges, e.spec())
			}
		case "directed", "undirected":
			var triples [][]any
			if err := val.Decode(&triples); err != nil {
				return nil, malformed("%s: %v", key, err)
			}
			for j, t := range triples {
				e, err := compactEdge(yamlNumbers(t), key == "directed")
				if err != nil {
					return nil, malformed("%s[%d]: %v", key, j, err)
				}
				p.Edges = append(p.Edges, e)
			}
		}
	}
	return p, nil
}

func decodeYAMLNodes(n *yaml.Node, p *Payload) error {
	if n.Kind != yaml.MappingNode {
		return malformed("nodes must be a mapping")
	}
	seen := make(map[string]bool)
	for i := 0; i+1 < len(n.Content); i += 2 {
		id, val := n.Content[i].Value, n.Content[i+1]
		if seen[id] {
			return loadErrorf(ErrDuplicateNode, "node %q", id)
		}
		seen[id] = true

		if val.Kind == yaml.SequenceNode {
			var pair []float64
			if err := val.Decode(&pair); err != nil || len(pair) != 2 {
				return malformed("node %q: want [latitude, longitude]", id)
			}
			p.Nodes = append(p.Nodes, NodeSpec{ID: id, Latitude: &pair[0], Longitude: &pair[1]})
			continue
		}
		var r rawNode
		if err := val.Decode(&r); err != nil {
			return malformed("node %q: %v", id, err)
		}
		p.Nodes = append(p.Nodes, r.spec(id))
	}
	return nil
}

// yamlNumbers widens yaml's int decoding to float64 so compact triples
// look the same as their JSON counterparts.
func yamlNumbers(t []any) []any {
	out := make([]any, len(t))
	for i, v := range t {
		switch n := v.(type) {
		case int:
			out[i] = float64(n)
		case int64:
			out[i] = float64(n)
		default:
			out[i] = v
		}
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
