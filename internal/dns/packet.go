package dns

import (
	"fmt"
	"strings"

	"github.com/jroosing/mailprobe/internal/helpers"
)

// maxPreallocRR caps slice preallocation so a forged section count in a
// small message cannot force a large allocation.
const maxPreallocRR = 100

// Packet represents a complete DNS message (RFC 1035 Section 4.1).
//
// DNS messages are composed of five sections:
//   - Header: Transaction ID, flags, section counts
//   - Questions: What is being asked (1+ questions per message)
//   - Answers: Resource records answering the question
//   - Authorities: Name servers authoritative for the domain
//   - Additionals: Extra records for optimization (e.g., A records for NS)
//
// Uses Record interface for type-safe handling of different record types (A, AAAA, CNAME, etc.).
type Packet struct {
	Header      Header
	Questions   []Question
	Answers     []Record
	Authorities []Record
	Additionals []Record

	// AnswerFrom and AnswerSize are filled in by the resolver for received
	// messages and are not part of the wire format.
	AnswerFrom string
	AnswerSize int
}

// NewQuery builds a standard query with one question and recursion desired.
func NewQuery(id uint16, q Question) Packet {
	return Packet{Header: NewQueryHeader(id), Questions: []Question{q}}
}

// Marshal serializes the packet to DNS wire format (big-endian). Section
// counts are taken from the slices, and names are compressed against a
// table that lives only for this call.
func (p Packet) Marshal() ([]byte, error) {
	h := Header{
		ID:      p.Header.ID,
		Flags:   p.Header.Flags,
		QDCount: helpers.ClampIntToUint16(len(p.Questions)),
		ANCount: helpers.ClampIntToUint16(len(p.Answers)),
		NSCount: helpers.ClampIntToUint16(len(p.Authorities)),
		ARCount: helpers.ClampIntToUint16(len(p.Additionals)),
	}

	hb, err := h.Marshal()
	if err != nil {
		return nil, err
	}
	// Estimate capacity: header(12) + question(~50) + records(~100 each)
	estimatedSize := HeaderSize + len(p.Questions)*50 + (len(p.Answers)+len(p.Authorities)+len(p.Additionals))*100
	out := make([]byte, 0, estimatedSize)
	out = append(out, hb...)

	c := NewCompressor()
	for _, q := range p.Questions {
		qb, err := q.marshal(c, len(out))
		if err != nil {
			return nil, err
		}
		out = append(out, qb...)
	}

	// Marshal answers, authorities, and additionals
	for _, section := range [][]Record{p.Answers, p.Authorities, p.Additionals} {
		if out, err = appendRecords(out, c, section); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// appendRecords marshals records at the current end of out.
func appendRecords(out []byte, c *Compressor, records []Record) ([]byte, error) {
	for _, r := range records {
		b, err := marshalRecord(r, c, len(out))
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// ParsePacket parses a complete DNS message. Messages shorter than the
// header, sections that do not match their counts and bytes left over after
// the last counted record all fail with ErrFormat.
func ParsePacket(msg []byte) (Packet, error) {
	p, _, err := parsePacket(msg)
	return p, err
}

// parsePacket also reports where the last additional record starts, which
// is where a TSIG record sits.
func parsePacket(msg []byte) (Packet, int, error) {
	off := 0
	h, err := ParseHeader(msg, &off)
	if err != nil {
		return Packet{}, 0, err
	}

	p := Packet{Header: h}
	p.Questions = make([]Question, 0, min(int(h.QDCount), maxPreallocRR))
	for i := range int(h.QDCount) {
		q, err := ParseQuestion(msg, &off)
		if err != nil {
			return Packet{}, 0, fmt.Errorf("question %d: %w", i, err)
		}
		p.Questions = append(p.Questions, q)
	}

	lastOff := off
	sections := []struct {
		name  string
		count uint16
		dst   *[]Record
	}{
		{"answer", h.ANCount, &p.Answers},
		{"authority", h.NSCount, &p.Authorities},
		{"additional", h.ARCount, &p.Additionals},
	}
	for _, s := range sections {
		*s.dst = make([]Record, 0, min(int(s.count), maxPreallocRR))
		for i := range int(s.count) {
			lastOff = off
			r, err := ParseRecord(msg, &off)
			if err != nil {
				return Packet{}, 0, fmt.Errorf("%s %d: %w", s.name, i, err)
			}
			*s.dst = append(*s.dst, r)
		}
	}

	if off != len(msg) {
		return Packet{}, 0, fmt.Errorf("%w: %d trailing bytes after last section", ErrFormat, len(msg)-off)
	}
	return p, lastOff, nil
}

// String renders the message in dig style: header, then every section with
// one record per line. UPDATE messages use the RFC 2136 section names.
func (p Packet) String() string {
	names := [4]string{"QUESTION", "ANSWER", "AUTHORITY", "ADDITIONAL"}
	if p.Header.Opcode() == OpcodeUpdate {
		names = [4]string{"ZONE", "PREREQUISITE", "UPDATE", "ADDITIONAL"}
	}

	var b strings.Builder
	if p.AnswerFrom != "" {
		fmt.Fprintf(&b, ";; Answer received from %s (%d bytes)\n;;\n", p.AnswerFrom, p.AnswerSize)
	}
	b.WriteString(";; HEADER SECTION\n")
	b.WriteString(p.Header.String())
	b.WriteString("\n")

	fmt.Fprintf(&b, ";; %s SECTION (%d record%s)\n", names[0], len(p.Questions), plural(len(p.Questions)))
	for _, q := range p.Questions {
		b.WriteString(";;\t" + q.String() + "\n")
	}
	for i, section := range [][]Record{p.Answers, p.Authorities, p.Additionals} {
		fmt.Fprintf(&b, "\n;; %s SECTION (%d record%s)\n", names[i+1], len(section), plural(len(section)))
		for _, r := range section {
			b.WriteString(r.String() + "\n")
		}
	}
	return b.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
