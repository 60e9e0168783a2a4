package serial

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DecodeLine decodes data as UTF-8 and trims trailing whitespace, including
// the line terminator. Invalid input yields a KindDecode error that records
// the offset of the first bad byte.
func DecodeLine(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", newError(KindDecode, "decode", "",
			fmt.Errorf("%w at byte %d", ErrInvalidUTF8, firstInvalid(data)))
	}
	return strings.TrimRightFunc(string(data), unicode.IsSpace), nil
}

func firstInvalid(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

// FormatRaw renders data as a quoted byte string with non-printable and
// non-UTF-8 bytes escaped, e.g. "\xff\xfe\n".
func FormatRaw(data []byte) string {
	return fmt.Sprintf("%q", data)
}
