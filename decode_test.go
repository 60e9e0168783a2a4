package serial

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLineTrimsTrailingWhitespace(t *testing.T) {
	tests := map[string]string{
		"OK\n":             "OK",
		"OK\r\n":           "OK",
		"  lead kept \t\n": "  lead kept",
		"héllo \n":         "h\u00e9llo",
		"":                 "",
		"\n":               "",
	}
	for in, want := range tests {
		got, err := DecodeLine([]byte(in))
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}
}

func TestDecodeLineInvalidUTF8(t *testing.T) {
	_, err := DecodeLine([]byte{'o', 'k', 0xFF, 0xFE, '\n'})
	require.Error(t, err)
	assert.Equal(t, KindDecode, KindOf(err))
	assert.True(t, errors.Is(err, ErrInvalidUTF8))
	assert.Contains(t, err.Error(), "at byte 2")
}

func TestDecodeLineAcceptsReplacementCharacter(t *testing.T) {
	got, err := DecodeLine([]byte("\ufffd\n"))
	require.NoError(t, err)
	assert.Equal(t, "\ufffd", got)
}

func TestFormatRaw(t *testing.T) {
	assert.Equal(t, `"\xff\xfe\n"`, FormatRaw([]byte{0xFF, 0xFE, '\n'}))
	assert.Equal(t, `"ok\r\n"`, FormatRaw([]byte("ok\r\n")))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnclassified, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnclassified, KindOf(nil))
	assert.Equal(t, KindRead, KindOf(newError(KindRead, "read", "COM3", errors.New("x"))))
	assert.Equal(t, "decode", KindDecode.String())
}
