package output

import (
	"encoding/json"
	"io"

	"go.yaml.in/yaml/v3"
)

// JSONFormatter formats data as indented JSON. URLs and bodies are
// printed verbatim, without HTML escaping of &, < and >.
type JSONFormatter struct{}

// Format writes data as JSON followed by a newline.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(data)
}

// YAMLFormatter formats data as YAML.
type YAMLFormatter struct{}

// Format writes data as a single YAML document.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}
