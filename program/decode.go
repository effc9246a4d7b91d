package program

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownFormat is returned for model documents with an unsupported encoding
	ErrUnknownFormat = errors.New("unknown model format")
	// ErrInvalidUnit is returned when a decoded unit is structurally unusable
	ErrInvalidUnit = errors.New("invalid program unit")
)

// Format is a model document encoding
type Format string

const (
	FormatYAML    Format = "yaml"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// FormatFromPath picks the encoding from a file extension
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	case ".msgpack", ".mpk":
		return FormatMsgpack, true
	}
	return "", false
}

// ParseFormat parses a user supplied format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatYAML, FormatJSON, FormatMsgpack:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ReadFile decodes and validates every unit of the model document at path.
// Unnamed units are named after the file.
func ReadFile(path string) ([]*Unit, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model: %w", err)
	}
	defer func() { _ = file.Close() }()

	units, err := DecodeAll(file, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("%w: %s has no documents", ErrInvalidUnit, path)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i, unit := range units {
		if unit.Name == "" {
			unit.Name = base
			if len(units) > 1 {
				unit.Name = fmt.Sprintf("%s[%d]", base, i)
			}
		}
		if err := unit.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return units, nil
}

// Decode reads one unit in the given format
func Decode(r io.Reader, format Format) (*Unit, error) {
	next, err := newUnitDecoder(r, format)
	if err != nil {
		return nil, err
	}

	unit := &Unit{}
	if err := next(unit); err != nil && !(format == FormatYAML && errors.Is(err, io.EOF)) {
		return nil, err
	}
	return unit, nil
}

// DecodeAll reads a stream of units until the end of r
func DecodeAll(r io.Reader, format Format) ([]*Unit, error) {
	next, err := newUnitDecoder(r, format)
	if err != nil {
		return nil, err
	}

	var units []*Unit
	for {
		unit := &Unit{}
		if err := next(unit); err != nil {
			if errors.Is(err, io.EOF) {
				return units, nil
			}
			return nil, err
		}
		units = append(units, unit)
	}
}

// newUnitDecoder returns a function decoding the next unit of r. It returns
// io.EOF unwrapped at the end of the stream.
func newUnitDecoder(r io.Reader, format Format) (func(*Unit) error, error) {
	var (
		decode func(any) error
		kind   string
	)

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		decode, kind = dec.Decode, "JSON"
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		decode, kind = dec.Decode, "YAML"
	case FormatMsgpack:
		dec := msgpack.NewDecoder(r)
		dec.SetCustomStructTag("json")
		decode, kind = dec.Decode, "msgpack"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return func(unit *Unit) error {
		err := decode(unit)
		if err == nil || errors.Is(err, io.EOF) {
			return err
		}
		return fmt.Errorf("failed to parse %s model: %w", kind, err)
	}, nil
}

// Encode writes unit in the given format
func Encode(w io.Writer, unit *Unit, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(unit)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(unit); err != nil {
			return err
		}
		return enc.Close()
	case FormatMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		enc.SetOmitEmpty(true)
		if err := enc.Encode(unit); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Validate rejects units the analyzers cannot interpret. Dangling references
// (assignments to unknown members, unknown receivers) are not errors.
func (u *Unit) Validate() error {
	if u.Name == "" {
		return fmt.Errorf("%w: missing unit name", ErrInvalidUnit)
	}

	seen := make(map[string]struct{}, len(u.Types))
	for i, t := range u.Types {
		if t == nil || t.Name == "" {
			return fmt.Errorf("%w: type #%d has no name", ErrInvalidUnit, i)
		}
		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("%w: duplicate type %q", ErrInvalidUnit, t.Name)
		}
		seen[t.Name] = struct{}{}
	}

	for _, fn := range u.Functions {
		if fn == nil {
			return fmt.Errorf("%w: nil function", ErrInvalidUnit)
		}
		for _, call := range fn.Calls {
			if call == nil || call.Callee == nil {
				continue
			}
			for j, p := range call.Callee.Params {
				if p.Variadic && j != len(call.Callee.Params)-1 {
					return fmt.Errorf("%w: %s calls %s with variadic parameter %q not in last position",
						ErrInvalidUnit, fn.Name, call.Callee.Name, p.Name)
				}
			}
		}
	}

	return nil
}
