package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/poiesic/datamill/core"
)

// jsonLoader decodes a JSON array of objects with optional "input" and
// "output" keys.
type jsonLoader struct{}

var _ loader = jsonLoader{}

func (jsonLoader) load(data []byte, source string) ([]core.Sample, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: JSON root must be an array of objects", core.ErrFormat)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrFormat, err)
	}

	samples := make([]core.Sample, 0, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return nil, fmt.Errorf("%w: JSON item at index %d must be an object", core.ErrFormat, i)
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil {
			return nil, fmt.Errorf("%w: JSON item at index %d: %w", core.ErrFormat, i, err)
		}
		input, err := text(fields["input"])
		if err != nil {
			return nil, fmt.Errorf("%w: JSON item at index %d: input: %w", core.ErrFormat, i, err)
		}
		output, err := text(fields["output"])
		if err != nil {
			return nil, fmt.Errorf("%w: JSON item at index %d: output: %w", core.ErrFormat, i, err)
		}
		samples = append(samples, newSample(source, i, input, output))
	}
	return samples, nil
}

// text coerces a raw JSON value to a string. Strings are decoded and an
// absent value is empty. Other values use a literal notation with
// capitalized True, False and None, shortest floats and single-quoted
// strings, e.g. {'k': 1.5}.
func text(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var b strings.Builder
	if err := writeValue(&b, dec); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeValue(b *strings.Builder, dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch v := tok.(type) {
	case json.Delim:
		if v == '[' {
			err = writeList(b, dec)
		} else {
			err = writeObject(b, dec)
		}
		if err != nil {
			return err
		}
		// closing delimiter
		_, err = dec.Token()
		return err
	case string:
		b.WriteString(quote(v))
	case json.Number:
		b.WriteString(number(v))
	case bool:
		if v {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case nil:
		b.WriteString("None")
	}
	return nil
}

func writeList(b *strings.Builder, dec *json.Decoder) error {
	b.WriteByte('[')
	for i := 0; dec.More(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		if err := writeValue(b, dec); err != nil {
			return err
		}
	}
	b.WriteByte(']')
	return nil
}

// writeObject keeps first-seen key order; a repeated key keeps its first
// position and takes the last value.
func writeObject(b *strings.Builder, dec *json.Decoder) error {
	var keys []string
	values := make(map[string]string)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var vb strings.Builder
		if err := writeValue(&vb, dec); err != nil {
			return err
		}
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = vb.String()
	}
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(k))
		b.WriteString(": ")
		b.WriteString(values[k])
	}
	b.WriteByte('}')
	return nil
}

// number renders integers digit for digit and floats in their shortest
// round-trip form, switching to exponent notation below 1e-4 and from 1e16.
func number(n json.Number) string {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if s == "-0" {
			return "0"
		}
		return s
	}
	f, _ := strconv.ParseFloat(s, 64)
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}
	fixed := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(fixed, ".") {
		fixed += ".0"
	}
	return fixed
}

// quote renders a string literal with single quotes, or double quotes when
// only single quotes appear inside. Unprintable runes are escaped.
func quote(s string) string {
	q := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var b strings.Builder
	b.WriteRune(q)
	for _, r := range s {
		switch {
		case r == q || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < 0x10000:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	b.WriteRune(q)
	return b.String()
}
