package dataset

import (
	"unicode/utf8"

	"github.com/poiesic/datamill/core"
)

const hexDigits = "0123456789abcdef"

// AppendRecord appends the canonical encoding of s followed by a newline.
//
// Keys are emitted in sorted order with ", " and ": " separators. Non-ASCII
// text is written as UTF-8; quote, backslash, and the control characters
// \b \f \n \r \t use short escapes and every other control character is
// written as a lowercase \u00XX escape.
func AppendRecord(dst []byte, s core.Sample) []byte {
	dst = append(dst, `{"id": `...)
	dst = appendString(dst, s.ID)
	dst = append(dst, `, "input": `...)
	dst = appendString(dst, s.Input)
	dst = append(dst, `, "output": `...)
	dst = appendString(dst, s.Output)
	dst = append(dst, `, "source": `...)
	dst = appendString(dst, s.Source)
	return append(dst, '}', '\n')
}

func appendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch c {
			case '"':
				dst = append(dst, '\\', '"')
			case '\\':
				dst = append(dst, '\\', '\\')
			case '\b':
				dst = append(dst, '\\', 'b')
			case '\f':
				dst = append(dst, '\\', 'f')
			case '\n':
				dst = append(dst, '\\', 'n')
			case '\r':
				dst = append(dst, '\\', 'r')
			case '\t':
				dst = append(dst, '\\', 't')
			default:
				if c < 0x20 {
					dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
				} else {
					dst = append(dst, c)
				}
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			// Invalid bytes never reach here from the loaders; coerce them
			// the same way encoding/json does.
			dst = append(dst, "\uFFFD"...)
		} else {
			dst = append(dst, s[i:i+size]...)
		}
		i += size
	}
	return append(dst, '"')
}
