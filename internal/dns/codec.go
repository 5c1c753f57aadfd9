package dns

import (
	"fmt"
	"strings"
)

// NormalizeName converts a domain name to lowercase for case-insensitive
// comparison and strips the trailing dot. DNS domain names are
// case-insensitive per RFC 1035 Section 3.1.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, "."))
}

// EqualNames compares two DNS names case-insensitively, ignoring trailing dots.
func EqualNames(a, b string) bool {
	return strings.EqualFold(strings.TrimSuffix(a, "."), strings.TrimSuffix(b, "."))
}

// EncodeName encodes a domain name to uncompressed DNS wire format
// (RFC 1035 Section 3.1).
//
// DNS names are encoded as a sequence of labels, where each label is:
//   - 1 byte: length (0-63)
//   - N bytes: label characters
//
// The name is terminated by a zero-length label (single 0x00 byte).
//
// Example: "www.example.com" encodes as:
//
//	[3]www[7]example[3]com[0]
//
// The empty name and "." encode the root. Use a Compressor to emit
// compression pointers.
func EncodeName(domain string) ([]byte, error) {
	return (*Compressor)(nil).Encode(domain, 0)
}

// splitLabels validates domain and returns its labels, most specific first.
func splitLabels(domain string) ([]string, error) {
	domain = trimDot(domain)
	if domain == "" {
		return nil, nil
	}
	labels := strings.Split(domain, ".")
	wireLen := 1
	for _, label := range labels {
		if label == "" {
			return nil, fmt.Errorf("%w: invalid domain name (empty label): %q", ErrValue, domain)
		}
		if len(label) > MaxLabelLength {
			return nil, fmt.Errorf("%w: DNS label too long (%d > %d): %q", ErrValue, len(label), MaxLabelLength, label)
		}
		for j := range len(label) {
			if label[j] > 0x7F {
				return nil, fmt.Errorf("%w: domain_name must be ASCII", ErrValue)
			}
		}
		wireLen += len(label) + 1
	}
	if wireLen > MaxNameLength {
		return nil, fmt.Errorf("%w: encoded domain name too long (%d > %d)", ErrValue, wireLen, MaxNameLength)
	}
	return labels, nil
}

// DecodeName decodes a possibly-compressed DNS name from wire format.
//
// DNS name compression (RFC 1035 Section 4.1.4) uses pointers to reduce
// message size. A compression pointer is identified by the two high bits
// of a label length byte being set (11xxxxxx pattern = 0xC0).
//
// The pointer value is a 14-bit offset from the start of the message:
//
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	| 1  1|                OFFSET                   |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//
// A pointer must refer to an offset strictly before the pointer itself, and
// no offset may be visited twice; self-referencing, forward and cyclic
// pointers fail with ErrFormat instead of looping.
//
// This function reads from msg starting at *off, advancing *off past the
// encoded name (including any compression pointer bytes). It returns an
// ASCII, dot-separated name without a trailing dot; the root is "".
func DecodeName(msg []byte, off *int) (string, error) {
	pos := *off
	end := -1 // where *off lands once the first pointer has been followed
	wireLen := 0
	visited := map[int]struct{}{}

	// Pre-allocate for typical domain depth (e.g., www.example.com = 3 labels)
	labels := make([]string, 0, 6)
	for {
		if pos < 0 || pos >= len(msg) {
			return "", fmt.Errorf("%w: unexpected EOF while decoding DNS name", ErrFormat)
		}
		labelLen := msg[pos]

		// Zero-length label marks end of name
		if labelLen == 0 {
			pos++
			break
		}

		// Check for compression pointer (high 2 bits = 11)
		if isCompressionPointer(labelLen) {
			ptr, err := readCompressionPointer(msg, pos, visited)
			if err != nil {
				return "", err
			}
			if end < 0 {
				end = pos + 2
			}
			pos = ptr
			continue
		}

		// Check for reserved label type (high 2 bits = 01 or 10)
		if hasReservedBits(labelLen) {
			return "", fmt.Errorf("%w: invalid DNS label length (reserved high bits set)", ErrFormat)
		}

		wireLen += int(labelLen) + 1
		if wireLen+1 > MaxNameLength {
			return "", fmt.Errorf("%w: decoded DNS name exceeds %d octets", ErrFormat, MaxNameLength)
		}
		pos++
		label, err := readLabel(msg, &pos, int(labelLen))
		if err != nil {
			return "", err
		}
		labels = append(labels, label)
	}

	if end < 0 {
		end = pos
	}
	*off = end
	return joinLabels(labels), nil
}

// isCompressionPointer checks if the label length byte indicates a compression pointer.
// Compression pointers have the two high bits set (11xxxxxx = 0xC0 mask).
func isCompressionPointer(b byte) bool {
	return (b & 0xC0) == 0xC0
}

// hasReservedBits checks if the label uses reserved encoding (01xxxxxx or 10xxxxxx).
// These patterns are reserved for future use per RFC 1035.
func hasReservedBits(b byte) bool {
	return (b & 0xC0) != 0
}

// readCompressionPointer decodes the 14-bit pointer stored at pos and checks
// that it points backwards to an offset not visited yet.
func readCompressionPointer(msg []byte, pos int, visited map[int]struct{}) (int, error) {
	if pos+1 >= len(msg) {
		return 0, fmt.Errorf("%w: unexpected EOF while decoding compression pointer", ErrFormat)
	}
	ptr := int(msg[pos]&0x3F)<<8 | int(msg[pos+1])
	if ptr >= pos {
		return 0, fmt.Errorf("%w: DNS compression pointer does not point backwards", ErrFormat)
	}
	if _, ok := visited[ptr]; ok {
		return 0, fmt.Errorf("%w: DNS compression pointer loop detected", ErrFormat)
	}
	visited[ptr] = struct{}{}
	return ptr, nil
}

// readLabel reads a single DNS label of the given length.
func readLabel(msg []byte, off *int, length int) (string, error) {
	if *off+length > len(msg) {
		return "", fmt.Errorf("%w: unexpected EOF while reading DNS label", ErrFormat)
	}
	label := msg[*off : *off+length]
	*off += length

	// Validate ASCII
	for _, b := range label {
		if b > 0x7F {
			return "", fmt.Errorf("%w: decoded DNS name was not ASCII", ErrFormat)
		}
	}
	return string(label), nil
}

// trimDot removes all leading and trailing dots from a string.
func trimDot(s string) string {
	return strings.Trim(s, ".")
}

// joinLabels concatenates DNS labels with dots.
// Uses strings.Builder with size pre-allocation for efficiency.
func joinLabels(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	if len(labels) == 1 {
		return labels[0]
	}
	// Pre-calculate size to minimize Builder allocations
	totalSize := len(labels) - 1 // dots
	for _, label := range labels {
		totalSize += len(label)
	}
	var b strings.Builder
	b.Grow(totalSize)
	b.WriteString(labels[0])
	for i := 1; i < len(labels); i++ {
		b.WriteByte('.')
		b.WriteString(labels[i])
	}
	return b.String()
}

// readCharacterString reads an RFC 1035 <character-string>: a length octet
// followed by that many bytes. It never reads past limit.
func readCharacterString(msg []byte, off *int, limit int) (string, error) {
	if *off >= limit {
		return "", fmt.Errorf("%w: unexpected EOF while reading character-string", ErrFormat)
	}
	n := int(msg[*off])
	if *off+1+n > limit {
		return "", fmt.Errorf("%w: character-string overruns rdata", ErrFormat)
	}
	s := string(msg[*off+1 : *off+1+n])
	*off += 1 + n
	return s, nil
}

// appendCharacterString appends s as an RFC 1035 <character-string>.
func appendCharacterString(b []byte, s string) ([]byte, error) {
	if len(s) > 255 {
		return nil, fmt.Errorf("%w: character-string too long (%d > 255)", ErrValue, len(s))
	}
	b = append(b, byte(len(s)))
	return append(b, s...), nil
}
