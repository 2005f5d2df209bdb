package wizard

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed flows.yaml
var defaultFlowsYAML []byte

//go:embed flows.schema.json
var flowsSchemaJSON []byte

// SchemaError lists every schema violation found in a flow document.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "wizard: invalid flow configuration: " + strings.Join(e.Problems, "; ")
}

// DefaultFlows returns the built-in flow set.
func DefaultFlows() (*FlowSet, error) {
	return ParseFlows(defaultFlowsYAML)
}

// MustDefaultFlows is DefaultFlows for package initialisation and tests.
func MustDefaultFlows() *FlowSet {
	fs, err := DefaultFlows()
	if err != nil {
		panic(err)
	}
	return fs
}

// LoadFlows reads a flow file from disk.
func LoadFlows(path string) (*FlowSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow file: %w", err)
	}
	return ParseFlows(data)
}

// ParseFlows validates a YAML flow document against the flow schema and
// decodes it.
func ParseFlows(data []byte) (*FlowSet, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse flow YAML: %w", err)
	}
	if doc == nil {
		return nil, &SchemaError{Problems: []string{"document is empty"}}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(flowsSchemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("flow schema validation error: %w", err)
	}
	if !result.Valid() {
		se := &SchemaError{}
		for _, re := range result.Errors() {
			se.Problems = append(se.Problems, fmt.Sprintf("%s: %s", re.Field(), re.Description()))
		}
		return nil, se
	}

	var fs FlowSet
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("failed to decode flows: %w", err)
	}
	if err := fs.validate(); err != nil {
		return nil, err
	}
	return &fs, nil
}
