package dns

import (
	"fmt"
	"strings"
)

// maxPointerOffset is the largest offset a 14-bit compression pointer can hold.
const maxPointerOffset = 0x3FFF

// Compressor holds the name compression table of a single message
// (RFC 1035 Section 4.1.4). It maps every name suffix already written, in
// lowercase, to the offset of its first octet. A Compressor must not be reused
// across messages.
//
// A nil *Compressor is valid and encodes names without compression.
type Compressor struct {
	offsets map[string]int
}

// NewCompressor returns an empty compression table.
func NewCompressor() *Compressor {
	return &Compressor{offsets: map[string]int{}}
}

// Encode returns the wire form of name as it will appear at offset off of the
// message being assembled. Suffixes already present in the table are replaced
// by a pointer; every suffix written literally is registered for later
// names. Names match case-insensitively but keep their original case.
func (c *Compressor) Encode(name string, off int) ([]byte, error) {
	labels, err := splitLabels(name)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(name)+2)
	for i := range labels {
		if c != nil {
			key := strings.ToLower(strings.Join(labels[i:], "."))
			if ptr, ok := c.offsets[key]; ok {
				return append(out, 0xC0|byte(ptr>>8), byte(ptr)), nil
			}
			if pos := off + len(out); pos <= maxPointerOffset {
				c.offsets[key] = pos
			}
		}
		out = append(out, byte(len(labels[i])))
		out = append(out, labels[i]...)
	}
	return append(out, 0), nil
}

// Len reports how many suffixes are registered.
func (c *Compressor) Len() int {
	if c == nil {
		return 0
	}
	return len(c.offsets)
}

// encodeName is a convenience wrapper used by rdata encoders that may or may
// not be allowed to compress.
func encodeName(c *Compressor, compress bool, name string, off int) ([]byte, error) {
	if !compress {
		c = nil
	}
	b, err := c.Encode(name, off)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", name, err)
	}
	return b, nil
}
