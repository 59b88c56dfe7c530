package report

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAML encodes v through its JSON form, so field names, order and the
// flattened pass-through fields match the JSON output.
func YAML(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("re-reading JSON as YAML: %w", err)
	}
	blockStyle(&doc)
	return yaml.Marshal(&doc)
}

// blockStyle drops the flow and quoting styles the JSON source left on every
// node, so the encoder picks its defaults.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
