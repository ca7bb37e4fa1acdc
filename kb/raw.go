package kb

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"github.com/wbrown/janus-kgraph/kgraph"
)

// Raw is the two-part input contract of a knowledge-base document: concepts
// and entities, each keyed by an opaque id.
type Raw struct {
	Concepts map[string]RawConcept `json:"concepts"`
	Entities map[string]RawEntity  `json:"entities"`
}

// RawConcept is a concept record before ingestion.
type RawConcept struct {
	Name       string   `json:"name"`
	SubclassOf []string `json:"subclassOf"`
}

// RawEntity is a non-concept entity record before ingestion.
type RawEntity struct {
	Name       string         `json:"name"`
	InstanceOf []string       `json:"instanceOf"`
	Attributes []RawAttribute `json:"attributes"`
	Relations  []RawRelation  `json:"relations"`
}

// RawAttribute is one attribute statement as it appears on the wire.
type RawAttribute struct {
	Key        string                `json:"key"`
	Value      RawValue              `json:"value"`
	Qualifiers map[string][]RawValue `json:"qualifiers"`
}

// RawRelation is one relation statement as it appears on the wire.
type RawRelation struct {
	Relation   string                `json:"relation"`
	Direction  string                `json:"direction"`
	Object     string                `json:"object"`
	Qualifiers map[string][]RawValue `json:"qualifiers"`
}

// RawValue is a typed value record. Value holds a string for "string" and
// "date" records and a number (or numeric string) for "quantity" and "year".
type RawValue struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// Decode reads a knowledge-base JSON document.
func Decode(r io.Reader) (*Raw, error) {
	raw := &Raw{}
	if err := json.NewDecoder(r).Decode(raw); err != nil {
		return nil, fmt.Errorf("kb: decode document: %w", err)
	}
	return raw, nil
}

// LoadFile reads and decodes the knowledge-base document at path.
func LoadFile(path string) (*Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("kb: open %q: %w", path, err)
	}
	defer f.Close()
	raw, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("kb: load %q: %w", path, err)
	}
	return raw, nil
}

// parseValue converts a wire value record into a typed value. Date and year
// records share the temporal grammar, so a "date" record carrying a bare
// year parses as a year.
func parseValue(rv RawValue) (kgraph.Value, error) {
	switch rv.Type {
	case "string":
		s, ok := rv.Value.(string)
		if !ok {
			return kgraph.Value{}, fmt.Errorf("kb: string record holds %T", rv.Value)
		}
		return kgraph.NewString(s), nil
	case "quantity":
		n, err := toFloat(rv.Value)
		if err != nil {
			return kgraph.Value{}, fmt.Errorf("kb: quantity record: %w", err)
		}
		return kgraph.NewQuantity(n, rv.Unit), nil
	case "year", "date":
		return kgraph.ParseTemporal(asString(rv.Value))
	}
	return kgraph.Value{}, fmt.Errorf("kb: unknown value type %q", rv.Type)
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		var f float64
		if _, err := fmt.Sscanf(n, "%g", &f); err != nil {
			return 0, fmt.Errorf("non-numeric value %q", n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("non-numeric value %T", v)
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprint(v)
}
