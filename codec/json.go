package codec

import (
	"bytes"
	"encoding/json"
)

// JSON is the standard-library codec, kept for manifests that must be
// written without third-party code paths.
type JSON struct {
	// Indent pretty-prints manifests with two spaces.
	Indent bool
}

// Marshal encodes v without HTML escaping and without a trailing newline.
func (c JSON) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if c.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// Unmarshal decodes data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns "json".
func (JSON) Name() string { return "json" }

// Default is the codec used for new manifests.
var Default Codec = GoJSON{}
