package dns

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/jroosing/mailprobe/internal/helpers"
)

// RRHeader contains common metadata for DNS resource records.
// This is distinct from Header which is the DNS message header.
type RRHeader struct {
	Name  string
	Class RecordClass
	TTL   uint32
}

// NewRRHeader creates a new resource record header.
func NewRRHeader(name string, class RecordClass, ttl uint32) RRHeader {
	return RRHeader{Name: trimDot(name), Class: class, TTL: ttl}
}

// Record is the interface for DNS resource records.
// All DNS records implement this interface for type-safe handling.
//
// Records are immutable once constructed: codecs return new values and
// nothing in this package modifies a record after building it.
type Record interface {
	// Type returns the DNS record type.
	Type() RecordType

	// Header returns the record's metadata.
	Header() RRHeader

	// MarshalRData encodes the record-specific data (RDATA) as it will appear
	// at offset off of a message. c may be nil to disable compression.
	MarshalRData(c *Compressor, off int) ([]byte, error)

	// RDataString renders the RDATA in zone-file presentation format.
	RDataString() string

	// String renders the whole record in zone-file presentation format.
	String() string
}

// FormatRecord renders "name.<TAB>ttl<TAB>class<TAB>type<TAB>rdata".
func FormatRecord(r Record) string {
	h := r.Header()
	sep := "\t"
	if len(h.Name) < 16 {
		sep = "\t\t"
	}
	return h.Name + "." + sep + strconv.FormatUint(uint64(h.TTL), 10) + "\t" +
		h.Class.String() + "\t" + r.Type().String() + "\t" + r.RDataString()
}

// rdata is the window of a message occupied by one record's RDATA.
// Names inside it may point anywhere earlier in msg.
type rdata struct {
	msg   []byte
	start int
	end   int
}

func (rd rdata) len() int { return rd.end - rd.start }

func (rd rdata) uint16(off *int) (uint16, error) {
	if *off+2 > rd.end {
		return 0, fmt.Errorf("%w: rdata too short for 16-bit field", ErrFormat)
	}
	v := binary.BigEndian.Uint16(rd.msg[*off:])
	*off += 2
	return v, nil
}

func (rd rdata) uint32(off *int) (uint32, error) {
	if *off+4 > rd.end {
		return 0, fmt.Errorf("%w: rdata too short for 32-bit field", ErrFormat)
	}
	v := binary.BigEndian.Uint32(rd.msg[*off:])
	*off += 4
	return v, nil
}

func (rd rdata) bytes(off *int, n int) ([]byte, error) {
	if n < 0 || *off+n > rd.end {
		return nil, fmt.Errorf("%w: rdata too short for %d-byte field", ErrFormat, n)
	}
	b := make([]byte, n)
	copy(b, rd.msg[*off:*off+n])
	*off += n
	return b, nil
}

func (rd rdata) name(off *int) (string, error) {
	n, err := DecodeName(rd.msg, off)
	if err != nil {
		return "", err
	}
	if *off > rd.end {
		return "", fmt.Errorf("%w: domain name overruns rdata", ErrFormat)
	}
	return n, nil
}

func (rd rdata) characterString(off *int) (string, error) {
	return readCharacterString(rd.msg, off, rd.end)
}

// finish checks that a codec consumed exactly RDLENGTH octets.
func (rd rdata) finish(off int, rt RecordType) error {
	if off != rd.end {
		return fmt.Errorf("%w: %s record RDATA length mismatch (consumed %d of %d)",
			ErrFormat, rt, off-rd.start, rd.len())
	}
	return nil
}

// rdataParser builds a specialized record from its common fields and RDATA.
type rdataParser func(h RRHeader, rt RecordType, rd rdata) (Record, error)

// rdataParsers is the static type registry. Types missing here decode into
// OpaqueRecord.
var rdataParsers = map[RecordType]rdataParser{
	TypeA:     parseIPRData,
	TypeAAAA:  parseIPRData,
	TypeNS:    parseNameRData,
	TypeCNAME: parseNameRData,
	TypePTR:   parseNameRData,
	TypeMX:    parseMXRData,
	TypeSOA:   parseSOARData,
	TypeSRV:   parseSRVRData,
	TypeNAPTR: parseNAPTRRData,
	TypeHINFO: parseHINFORData,
	TypeTXT:   parseTXTRData,
	TypeTSIG:  parseTSIGRData,
}

// IsRegistered reports whether rt has a specialized codec.
func IsRegistered(rt RecordType) bool {
	_, ok := rdataParsers[rt]
	return ok
}

// ParseRecord parses a resource record from wire format.
// It advances *off past the parsed record on success. Malformed RDATA fails
// the whole record; no partial record is returned.
func ParseRecord(msg []byte, off *int) (Record, error) {
	pos := *off
	name, err := DecodeName(msg, &pos)
	if err != nil {
		return nil, err
	}
	if pos+10 > len(msg) {
		return nil, fmt.Errorf("%w: unexpected EOF while reading DNS record", ErrFormat)
	}
	rrType := RecordType(binary.BigEndian.Uint16(msg[pos : pos+2]))
	rrClass := RecordClass(binary.BigEndian.Uint16(msg[pos+2 : pos+4]))
	ttl := binary.BigEndian.Uint32(msg[pos+4 : pos+8])
	rdlen := int(binary.BigEndian.Uint16(msg[pos+8 : pos+10]))
	start := pos + 10
	if start+rdlen > len(msg) {
		return nil, fmt.Errorf("%w: unexpected EOF while reading DNS record rdata", ErrFormat)
	}

	h := RRHeader{Name: name, Class: rrClass, TTL: ttl}
	rd := rdata{msg: msg, start: start, end: start + rdlen}
	parse, ok := rdataParsers[rrType]
	if !ok {
		parse = parseOpaqueRData
	}
	r, err := parse(h, rrType, rd)
	if err != nil {
		return nil, fmt.Errorf("parse %s record %q: %w", rrType, name, err)
	}
	*off = rd.end
	return r, nil
}

// MarshalRecord converts a Record to uncompressed wire-format bytes.
func MarshalRecord(r Record) ([]byte, error) {
	return marshalRecord(r, nil, 0)
}

// marshalRecord encodes r as it will appear at offset off of a message.
func marshalRecord(r Record, c *Compressor, off int) ([]byte, error) {
	h := r.Header()
	nameWire, err := c.Encode(h.Name, off)
	if err != nil {
		return nil, err
	}
	rdataOff := off + len(nameWire) + 10
	rd, err := r.MarshalRData(c, rdataOff)
	if err != nil {
		return nil, err
	}
	if len(rd) > 65535 {
		return nil, fmt.Errorf("%w: rdata too large: %d bytes (max 65535)", ErrValue, len(rd))
	}

	out := make([]byte, 0, len(nameWire)+10+len(rd))
	out = append(out, nameWire...)
	out = binary.BigEndian.AppendUint16(out, uint16(r.Type()))
	out = binary.BigEndian.AppendUint16(out, uint16(h.Class))
	out = binary.BigEndian.AppendUint32(out, h.TTL)
	out = binary.BigEndian.AppendUint16(out, helpers.ClampIntToUint16(len(rd)))
	out = append(out, rd...)
	return out, nil
}

// quote renders s as a presentation-format quoted string.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
