package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/poiesic/datamill/core"
)

const maxDocumentSize = 1024 * 1024 // 1MB

// Document is a parsed YAML mapping. Only top-level keys are addressed.
type Document map[string]any

// LoadDocument reads path and parses it as a YAML mapping.
//
// A missing file yields core.ErrNotFound. Malformed YAML, an empty document,
// or a root that is not a mapping yields core.ErrFormat.
func LoadDocument(path string) (Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: config file %s", core.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if len(content) > maxDocumentSize {
		return nil, fmt.Errorf("%w: config file %s exceeds %d bytes", core.ErrFormat, path, maxDocumentSize)
	}
	return ParseDocument(content)
}

// ParseDocument parses YAML content that must be a mapping at the root.
func ParseDocument(content []byte) (Document, error) {
	parser := yaml.Parser()

	// koanf happily loads an empty document as an empty map, so the root
	// shape is checked against the parser output first.
	root, err := parser.Unmarshal(content)
	if err != nil {
		return nil, fmt.Errorf("%w: config must be a YAML mapping: %w", core.ErrFormat, err)
	}
	if root == nil {
		return nil, fmt.Errorf("%w: config must be a YAML mapping, got an empty document", core.ErrFormat)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), parser); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrFormat, err)
	}
	return Document(k.Raw()), nil
}

// Has reports whether key is present, even with a null value.
func (d Document) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Keys returns the top-level keys in sorted order.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the required string value for key, trimmed of surrounding
// whitespace. Blank strings are rejected.
func (d Document) String(key string) (string, error) {
	v, ok := d[key]
	if !ok {
		return "", missing(key)
	}
	s, ok := v.(string)
	if !ok {
		return "", invalidType(key, "a string", v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: %s must be a non-empty string", core.ErrValidation, key)
	}
	return s, nil
}

// StringOr returns the string value for key, or def when key is absent.
func (d Document) StringOr(key, def string) (string, error) {
	if !d.Has(key) {
		return def, nil
	}
	return d.String(key)
}

// Int returns the required integer value for key. Floats and booleans are
// rejected even when they hold an integral value.
func (d Document) Int(key string) (int, error) {
	v, ok := d[key]
	if !ok {
		return 0, missing(key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, fmt.Errorf("%w: %w: %s", core.ErrValidation, core.ErrOutOfRange, key)
		}
		return int(n), nil
	case uint64:
		if n > math.MaxInt {
			return 0, fmt.Errorf("%w: %w: %s", core.ErrValidation, core.ErrOutOfRange, key)
		}
		return int(n), nil
	default:
		return 0, invalidType(key, "an integer", v)
	}
}

// IntOr returns the integer value for key, or def when key is absent.
func (d Document) IntOr(key string, def int) (int, error) {
	if !d.Has(key) {
		return def, nil
	}
	return d.Int(key)
}

// Float returns the required numeric value for key. Integers are widened.
func (d Document) Float(key string) (float64, error) {
	v, ok := d[key]
	if !ok {
		return 0, missing(key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, invalidType(key, "a number", v)
	}
}

// Bool returns the required boolean value for key.
func (d Document) Bool(key string) (bool, error) {
	v, ok := d[key]
	if !ok {
		return false, missing(key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, invalidType(key, "a boolean", v)
	}
	return b, nil
}

// BoolOr returns the boolean value for key, or def when key is absent.
func (d Document) BoolOr(key string, def bool) (bool, error) {
	if !d.Has(key) {
		return def, nil
	}
	return d.Bool(key)
}

func missing(key string) error {
	return fmt.Errorf("%w: %w: %s", core.ErrValidation, core.ErrMissingField, key)
}

func invalidType(key, want string, got any) error {
	return fmt.Errorf("%w: %w: %s must be %s, got %T", core.ErrValidation, core.ErrInvalidType, key, want, got)
}
