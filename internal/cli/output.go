package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ambiyansyah-risyal/corkboard"
)

// OutputFormat selects how call results are printed.
type OutputFormat string

const (
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// ParseOutputFormat accepts json, yaml or yml.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return OutputJSON, nil
	case "yaml", "yml":
		return OutputYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedOutput, s)
	}
}

// writeOutcome prints a call result. The done sentinel is printed as the
// result report it came from.
func writeOutcome(w io.Writer, out corkboard.Outcome[json.RawMessage], format OutputFormat) error {
	body := []byte(out.Payload)
	if out.Done() {
		body = []byte(`{"result_code":"` + corkboard.DoneResultCode + `"}`)
	}

	switch format {
	case OutputYAML:
		var doc interface{}
		if err := json.Unmarshal(body, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err := buf.WriteTo(w)
		return err
	}
}
