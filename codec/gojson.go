package codec

import gojson "github.com/goccy/go-json"

// GoJSON is the default manifest codec, backed by github.com/goccy/go-json.
// Output is byte-compatible with JSON, so either codec reads the other's
// manifests.
type GoJSON struct {
	// Indent pretty-prints manifests with two spaces.
	Indent bool
}

// Marshal encodes v without HTML escaping; manifests are never embedded in
// HTML.
func (c GoJSON) Marshal(v any) ([]byte, error) {
	if c.Indent {
		return gojson.MarshalIndentWithOption(v, "", "  ", gojson.DisableHTMLEscape())
	}
	return gojson.MarshalWithOption(v, gojson.DisableHTMLEscape())
}

// Unmarshal decodes data into v.
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// Name returns "go-json".
func (GoJSON) Name() string { return "go-json" }

// Append encodes v and appends it to dst.
func (c GoJSON) Append(dst []byte, v any) ([]byte, error) {
	b, err := c.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(dst, b...), nil
}
