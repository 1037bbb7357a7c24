// Package specs decodes the registration payloads fed to the three
// extension managers (spec §6): ColorSpec, UnitSpec, and FunctionSpec
// entries, arriving either as a YAML "spec pack" (a single file registering
// many entries at once) or as one-off JSON payloads (e.g. a single color
// spec POSTed to a long-running service).
//
// JSON payloads are walked with gjson/sjson rather than encoding/json
// directly: real-world token spec packs are hand-authored and irregular —
// "attrs" is sometimes a bare string array and sometimes an array of
// {name, default} objects, and "version" is sometimes a bare number instead
// of a dotted string. sjson normalizes both shapes into the canonical form
// before a single encoding/json.Unmarshal does the rest, rather than
// writing custom decode logic per accepted shape.
package specs

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ColorInitializerDoc is one `initializers[]` entry of spec §6's ColorSpec
// schema: a constructor keyword (e.g. "rgb") bound to a TokenScript source
// body evaluated with `input` bound to the call's positional arguments.
type ColorInitializerDoc struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Script  string `json:"script" yaml:"script"`
}

// ColorConversionDoc is one `conversions[]` entry: a directed edge between
// two subtype URIs (or "$self", resolved to the owning spec's own URI),
// whose script is evaluated with `input` bound to the source Color.
type ColorConversionDoc struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Script string `json:"script" yaml:"script"`
}

// ColorSpecDoc is the decoded registration payload for one color subtype
// (spec §6 ColorSpec schema).
type ColorSpecDoc struct {
	Name    string   `json:"name" yaml:"name"`
	Version string   `json:"version" yaml:"version"`
	Attrs   []string `json:"attrs" yaml:"attrs"`
	// Schema maps each attribute name to one of "number", "string", "color"
	// (spec §6 ColorSpec.schema.properties), enforced by
	// ColorManager.SetAttribute on assignment (spec §4.3). A spec with no
	// "schema" key leaves this nil; ApplyPack then defaults every Attrs
	// entry to "number" (spec §9's schema is "optional", and every native
	// color subtype in this pack — rgb, hsl — is all-numeric-channel).
	Schema       map[string]string     `json:"schema" yaml:"schema"`
	Initializers []ColorInitializerDoc `json:"initializers" yaml:"initializers"`
	Conversions  []ColorConversionDoc  `json:"conversions" yaml:"conversions"`
}

// UnitSpecDoc is the decoded registration payload for one unit (spec §6
// UnitSpec schema).
type UnitSpecDoc struct {
	Name    string  `json:"name" yaml:"name"`
	Version string  `json:"version" yaml:"version"`
	Kind    string  `json:"kind" yaml:"kind"` // "absolute" or "relative"
	ToBase  float64 `json:"to_base" yaml:"to_base"`
}

// FunctionSpecDoc is the decoded registration payload for one user function
// (spec §6 FunctionSpec schema): name, version, arity, and its TokenScript
// source body.
type FunctionSpecDoc struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	MinArgs int    `json:"min_args" yaml:"min_args"`
	MaxArgs int    `json:"max_args" yaml:"max_args"`
	// Script is the function body's TokenScript source, evaluated with
	// `input` bound to the call's argument list (spec §4.6.4). A spec with
	// no script declares arity only and is not registered by ApplyPack.
	Script string `json:"script" yaml:"script"`
}

// Pack is a full spec pack: every color/unit/function registration loaded
// from one YAML document (spec §6: "a spec pack registers many entries at
// once").
type Pack struct {
	Colors    []ColorSpecDoc    `yaml:"colors"`
	Units     []UnitSpecDoc     `yaml:"units"`
	Functions []FunctionSpecDoc `yaml:"functions"`
}

// DecodePackYAML parses a full spec pack document.
func DecodePackYAML(data []byte) (*Pack, error) {
	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding spec pack: %w", err)
	}
	return &p, nil
}

// DecodeColorSpecJSON normalizes and decodes a single color spec payload.
// Two irregularities are tolerated: "attrs" as either `["r","g","b"]` or
// `[{"name":"r"}, {"name":"g"}, {"name":"b"}]`, and "version" as either a
// dotted string or a bare JSON number (e.g. `1` meaning "1").
func DecodeColorSpecJSON(data []byte) (*ColorSpecDoc, error) {
	normalized, err := normalizeVersion(data)
	if err != nil {
		return nil, err
	}
	normalized, err = normalizeAttrObjects(normalized)
	if err != nil {
		return nil, err
	}
	var doc ColorSpecDoc
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, fmt.Errorf("decoding color spec: %w", err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("color spec missing required \"name\"")
	}
	return &doc, nil
}

// normalizeVersion rewrites a bare-number "version" field into its string
// form so the struct's `string` field always decodes cleanly.
func normalizeVersion(data []byte) ([]byte, error) {
	versionField := gjson.GetBytes(data, "version")
	if !versionField.Exists() || versionField.Type == gjson.String {
		return data, nil
	}
	return sjson.SetBytes(data, "version", versionField.String())
}

// normalizeAttrObjects rewrites `"attrs": [{"name": "r"}, ...]` into
// `"attrs": ["r", ...]`.
func normalizeAttrObjects(data []byte) ([]byte, error) {
	attrs := gjson.GetBytes(data, "attrs")
	if !attrs.IsArray() {
		return data, nil
	}
	items := attrs.Array()
	if len(items) == 0 || items[0].Type != gjson.JSON {
		return data, nil // already a bare string array, or empty
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		name := item.Get("name")
		if !name.Exists() {
			return nil, fmt.Errorf("attrs object missing \"name\" field")
		}
		names = append(names, name.String())
	}
	return sjson.SetBytes(data, "attrs", names)
}

// DecodeUnitSpecJSON normalizes and decodes a single unit spec payload,
// tolerating the same bare-number "version" irregularity as colors.
func DecodeUnitSpecJSON(data []byte) (*UnitSpecDoc, error) {
	normalized, err := normalizeVersion(data)
	if err != nil {
		return nil, err
	}
	var doc UnitSpecDoc
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, fmt.Errorf("decoding unit spec: %w", err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("unit spec missing required \"name\"")
	}
	return &doc, nil
}

// DecodeFunctionSpecJSON normalizes and decodes a single function spec
// payload. "max_args" of the JSON literal `"variadic"` is normalized to -1
// (unbounded), matching managers.FunctionDef's MaxArgs convention.
func DecodeFunctionSpecJSON(data []byte) (*FunctionSpecDoc, error) {
	normalized, err := normalizeVersion(data)
	if err != nil {
		return nil, err
	}
	maxArgs := gjson.GetBytes(normalized, "max_args")
	if maxArgs.Exists() && maxArgs.Type == gjson.String {
		if maxArgs.String() == "variadic" {
			normalized, err = sjson.SetBytes(normalized, "max_args", -1)
			if err != nil {
				return nil, err
			}
		} else if n, convErr := strconv.Atoi(maxArgs.String()); convErr == nil {
			normalized, err = sjson.SetBytes(normalized, "max_args", n)
			if err != nil {
				return nil, err
			}
		}
	}
	var doc FunctionSpecDoc
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, fmt.Errorf("decoding function spec: %w", err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("function spec missing required \"name\"")
	}
	return &doc, nil
}
