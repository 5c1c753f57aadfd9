package dns

import (
	"encoding/binary"
	"fmt"
)

// Question represents a DNS question section entry (RFC 1035 Section 4.1.2).
//
// Each question specifies what the client is asking for:
//   - Name: The domain name being queried, without leading or trailing dots
//   - Type: The record type requested (A, AAAA, MX, etc.)
//   - Class: Usually ClassIN (Internet)
type Question struct {
	Name  string
	Type  RecordType
	Class RecordClass
}

// NewQuestion builds a question from mnemonics or decimal strings. An empty
// type or class means ANY. If the caller swapped type and class ("IN", "MX")
// the arguments are put back in order.
func NewQuestion(name, qtype, qclass string) Question {
	if qtype == "" {
		qtype = "ANY"
	}
	if qclass == "" {
		qclass = "ANY"
	}
	t, c := ParseRecordType(qtype), ParseRecordClass(qclass)
	if t == TypeUnknown && c == ClassUnknown {
		if st, sc := ParseRecordType(qclass), ParseRecordClass(qtype); st != TypeUnknown && sc != ClassUnknown {
			t, c = st, sc
		}
	}
	return Question{Name: trimDot(name), Type: t, Class: c}
}

// Marshal serializes the question to DNS wire format without compression.
func (q Question) Marshal() ([]byte, error) {
	return q.marshal(nil, 0)
}

// marshal encodes the question as it will appear at offset off of a message.
func (q Question) marshal(c *Compressor, off int) ([]byte, error) {
	name, err := c.Encode(q.Name, off)
	if err != nil {
		return nil, err
	}
	b := make([]byte, len(name), len(name)+4)
	copy(b, name)
	b = binary.BigEndian.AppendUint16(b, uint16(q.Type))
	b = binary.BigEndian.AppendUint16(b, uint16(q.Class))
	return b, nil
}

// ParseQuestion parses a question from the message at the given offset.
// It advances *off past the parsed question on success.
func ParseQuestion(msg []byte, off *int) (Question, error) {
	pos := *off
	name, err := DecodeName(msg, &pos)
	if err != nil {
		return Question{}, err
	}
	if pos+4 > len(msg) {
		return Question{}, fmt.Errorf("%w: unexpected EOF while reading DNS question", ErrFormat)
	}
	q := Question{
		Name:  name,
		Type:  RecordType(binary.BigEndian.Uint16(msg[pos : pos+2])),
		Class: RecordClass(binary.BigEndian.Uint16(msg[pos+2 : pos+4])),
	}
	*off = pos + 4
	return q, nil
}

// String renders the question as "name.\tCLASS\tTYPE".
func (q Question) String() string {
	return q.Name + ".\t" + q.Class.String() + "\t" + q.Type.String()
}
