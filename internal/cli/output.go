package cli

import (
	"encoding/json"
	"io"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpfed/internal/errors"
)

// Format selects how a command renders its result.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the accepted --format values.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatTOML}

// ErrUnknownFormat is returned for a --format value not in Formats.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat validates an output format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatText, nil
	}
	if !slices.Contains(Formats, f) {
		return "", errors.Wrapf(ErrUnknownFormat, "%q (valid: text, json, yaml, toml)", s)
	}
	return f, nil
}

// Render writes v in the structured format f, or calls text for FormatText.
// TOML needs a table at the top level, so v should be a struct or map.
func Render(w io.Writer, f Format, v any, text func(io.Writer) error) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return errors.Wrap(enc.Encode(v), "encoding JSON")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encoding YAML")
		}
		return errors.Wrap(enc.Close(), "encoding YAML")
	case FormatTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return errors.Wrap(enc.Encode(v), "encoding TOML")
	default:
		return text(w)
	}
}
