package dns

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []byte
	}{
		{"simple", "www.example.com", []byte("\x03www\x07example\x03com\x00")},
		{"trailing dot", "example.com.", []byte("\x07example\x03com\x00")},
		{"root", ".", []byte{0}},
		{"empty", "", []byte{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeName(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeName_Invalid(t *testing.T) {
	long63 := strings.Repeat("a", 63)

	_, err := EncodeName(long63 + ".com")
	require.NoError(t, err)

	_, err = EncodeName(strings.Repeat("a", 64) + ".com")
	require.ErrorIs(t, err, ErrValue)

	_, err = EncodeName("a..b")
	require.ErrorIs(t, err, ErrValue)

	_, err = EncodeName("bücher.de")
	require.ErrorIs(t, err, ErrValue)

	// 4*63 labels plus length bytes plus root = 257 octets.
	_, err = EncodeName(strings.Join([]string{long63, long63, long63, long63}, "."))
	require.ErrorIs(t, err, ErrValue)
}

func TestEncodeName_MaxLength(t *testing.T) {
	// 3*63 + 61 labels plus four length bytes plus root = 255 octets.
	label := strings.Repeat("a", 63)
	name := strings.Join([]string{label, label, label, strings.Repeat("b", 61)}, ".")
	b, err := EncodeName(name)
	require.NoError(t, err)
	assert.Len(t, b, MaxNameLength)

	off := 0
	got, err := DecodeName(b, &off)
	require.NoError(t, err)
	assert.Equal(t, name, got)
	assert.Equal(t, len(b), off)
}

func TestCompressor_SecondOccurrenceIsPointer(t *testing.T) {
	c := NewCompressor()
	msg := make([]byte, HeaderSize)

	first, err := c.Encode("mail.Example.com", len(msg))
	require.NoError(t, err)
	msg = append(msg, first...)

	second, err := c.Encode("mail.example.COM", len(msg))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC0, HeaderSize}, second)
	msg = append(msg, second...)

	third, err := c.Encode("smtp.example.com", len(msg))
	require.NoError(t, err)
	assert.Equal(t, append([]byte("\x04smtp"), 0xC0, HeaderSize+5), third)
	msg = append(msg, third...)

	off := HeaderSize
	for _, want := range []string{"mail.Example.com", "mail.Example.com", "smtp.Example.com"} {
		got, err := DecodeName(msg, &off)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, len(msg), off)
}

func TestCompressor_NilEncodesLiterally(t *testing.T) {
	var c *Compressor
	a, err := c.Encode("example.com", 12)
	require.NoError(t, err)
	b, err := c.Encode("example.com", 12+len(a))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 0, c.Len())
}

func TestCompressor_OffsetsBeyondPointerRangeNotRegistered(t *testing.T) {
	c := NewCompressor()
	_, err := c.Encode("far.example", maxPointerOffset+1)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestDecodeName_PointerSafety(t *testing.T) {
	tests := []struct {
		name string
		msg  []byte
		off  int
	}{
		{"self pointer", []byte{0xC0, 0x00}, 0},
		{"forward pointer", []byte{0xC0, 0x02, 0x01, 'a', 0x00}, 0},
		{"loop between labels", []byte{0x01, 'a', 0xC0, 0x00}, 0},
		{"truncated pointer", []byte{0x01, 'a', 0xC0}, 0},
		{"reserved label bits", []byte{0x40, 'a', 0x00}, 0},
		{"label past end", []byte{0x05, 'a', 'b'}, 0},
		{"no terminator", []byte{0x01, 'a'}, 0},
		{"pointer past end", []byte{0x00, 0xC0, 0x10}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			off := tt.off
			_, err := DecodeName(tt.msg, &off)
			require.ErrorIs(t, err, ErrFormat)
			assert.Equal(t, tt.off, off)
		})
	}
}

func TestDecodeName_OversizedViaPointers(t *testing.T) {
	// Chain 5 labels of 63 octets together with back pointers: 320 octets.
	var msg []byte
	prev := -1
	for range 5 {
		start := len(msg)
		msg = append(msg, 63)
		msg = append(msg, strings.Repeat("x", 63)...)
		if prev < 0 {
			msg = append(msg, 0)
		} else {
			msg = append(msg, 0xC0|byte(prev>>8), byte(prev))
		}
		prev = start
	}
	off := prev
	_, err := DecodeName(msg, &off)
	require.ErrorIs(t, err, ErrFormat)
}

func TestNameHelpers(t *testing.T) {
	assert.Equal(t, "example.com", NormalizeName("Example.COM."))
	assert.True(t, EqualNames("Example.com.", "example.COM"))
	assert.False(t, EqualNames("example.com", "example.org"))
}

func TestCharacterString(t *testing.T) {
	b, err := appendCharacterString(nil, "")
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, b)

	_, err = appendCharacterString(nil, strings.Repeat("x", 256))
	require.ErrorIs(t, err, ErrValue)

	off := 0
	_, err = readCharacterString([]byte{3, 'a'}, &off, 2)
	require.ErrorIs(t, err, ErrFormat)
}
