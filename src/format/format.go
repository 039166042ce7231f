// Package format reads and writes the configuration file formats external
// tools accept, normalizing decoded values to plain Go maps and ints.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// Format identifies a config file syntax.
type Format string

const (
	TOML  Format = "toml"
	YAML  Format = "yaml"
	JSON  Format = "json"
	JSONC Format = "jsonc"
)

// Extension returns the file suffix used for temp artifacts of this format.
func (f Format) Extension() string {
	switch f {
	case TOML:
		return ".toml"
	case YAML:
		return ".yaml"
	case JSONC:
		return ".jsonc"
	default:
		return ".json"
	}
}

// Detect infers a format from a file name. ok is false when the extension
// is not recognized (".prettierrc", ".yamllint").
func Detect(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, true
	case ".yaml", ".yml":
		return YAML, true
	case ".json":
		return JSON, true
	case ".jsonc":
		return JSONC, true
	}
	return "", false
}

// Decode parses data as f into a normalized map.
func Decode(data []byte, f Format) (map[string]any, error) {
	var doc map[string]any
	switch f {
	case TOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding toml: %w", err)
		}
	case YAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	case JSON, JSONC:
		if len(bytes.TrimSpace(data)) == 0 {
			return map[string]any{}, nil
		}
		if f == JSONC {
			std, err := StripJSONC(data)
			if err != nil {
				return nil, err
			}
			data = std
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return Normalize(doc).(map[string]any), nil
}

// DecodeAuto tries JSON (with comments) first, then YAML. Used for files
// whose extension does not name a format.
func DecodeAuto(data []byte) (map[string]any, Format, error) {
	if doc, err := Decode(data, JSONC); err == nil {
		return doc, JSON, nil
	}
	doc, err := Decode(data, YAML)
	if err != nil {
		return nil, "", fmt.Errorf("not valid json or yaml: %w", err)
	}
	return doc, YAML, nil
}

// Encode serializes doc as f. JSONC is written as plain JSON.
func Encode(doc map[string]any, f Format) ([]byte, error) {
	switch f {
	case TOML:
		out, err := toml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encoding toml: %w", err)
		}
		return out, nil
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		return buf.Bytes(), nil
	case JSON, JSONC:
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json: %w", err)
		}
		return append(out, '\n'), nil
	}
	return nil, fmt.Errorf("unsupported format %q", f)
}

// Normalize converts decoder-specific shapes into map[string]any, []any and
// int (for integral numbers). Other values pass through.
func Normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = Normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = Normalize(val)
		}
		return out
	case int64:
		return int(x)
	case int32:
		return int(x)
	case uint64:
		return int(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int(x)
		}
		return x
	}
	return v
}

// StripJSONC rewrites JSON with comments and trailing commas as standard
// JSON. data is not modified.
func StripJSONC(data []byte) ([]byte, error) {
	out, err := hujson.Standardize(bytes.Clone(data))
	if err != nil {
		return nil, fmt.Errorf("decoding jsonc: %w", err)
	}
	return out, nil
}
