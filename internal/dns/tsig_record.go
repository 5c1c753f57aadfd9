package dns

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // HMAC-MD5 is the RFC 2845 default algorithm
	"crypto/sha1" //nolint:gosec // hmac-sha1 is registered for TSIG
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"hash"
	"strconv"
	"strings"
	"time"

	"github.com/jroosing/mailprobe/internal/helpers"
)

// TSIG algorithm names (RFC 2845, RFC 4635).
const (
	HMACMD5    = "hmac-md5.sig-alg.reg.int"
	HMACSHA1   = "hmac-sha1"
	HMACSHA256 = "hmac-sha256"

	// DefaultTSIGFudge is the permitted clock skew in seconds.
	DefaultTSIGFudge = 300

	// maxTimeSigned is the largest value the 48-bit time field can carry.
	maxTimeSigned = 1<<48 - 1
)

// TSIG error codes (RFC 2845 Section 4.3), carried in the record's Error field.
const (
	TSIGBadSig  uint16 = 16
	TSIGBadKey  uint16 = 17
	TSIGBadTime uint16 = 18
)

var tsigHashes = map[string]func() hash.Hash{
	HMACMD5:    md5.New,
	HMACSHA1:   sha1.New,
	HMACSHA256: sha256.New,
}

// TSIGRecord is a transaction signature (RFC 2845 Section 2.3).
//
//	/                 ALGORITHM NAME                /
//	|          TIME SIGNED (48 bits)                |
//	|     FUDGE     |   MAC SIZE    |     MAC       /
//	|  ORIGINAL ID  |     ERROR     |  OTHER LEN    |
//	/                  OTHER DATA                   /
type TSIGRecord struct {
	H          RRHeader
	Algorithm  string
	TimeSigned uint64
	Fudge      uint16
	MAC        []byte
	OriginalID uint16
	Error      uint16
	OtherData  []byte
}

func (r *TSIGRecord) Type() RecordType { return TypeTSIG }

func (r *TSIGRecord) Header() RRHeader { return r.H }

// MarshalRData writes the algorithm name uncompressed.
func (r *TSIGRecord) MarshalRData(_ *Compressor, _ int) ([]byte, error) {
	if r.TimeSigned > maxTimeSigned {
		return nil, fmt.Errorf("%w: tsig time signed %d exceeds 48 bits", ErrValue, r.TimeSigned)
	}
	if len(r.MAC) > 65535 || len(r.OtherData) > 65535 {
		return nil, fmt.Errorf("%w: tsig mac or other data too large", ErrValue)
	}
	alg, err := EncodeName(r.Algorithm)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(alg)+16+len(r.MAC)+len(r.OtherData))
	out = append(out, alg...)
	out = appendTime48(out, r.TimeSigned)
	out = binary.BigEndian.AppendUint16(out, r.Fudge)
	out = binary.BigEndian.AppendUint16(out, helpers.ClampIntToUint16(len(r.MAC)))
	out = append(out, r.MAC...)
	out = binary.BigEndian.AppendUint16(out, r.OriginalID)
	out = binary.BigEndian.AppendUint16(out, r.Error)
	out = binary.BigEndian.AppendUint16(out, helpers.ClampIntToUint16(len(r.OtherData)))
	return append(out, r.OtherData...), nil
}

func (r *TSIGRecord) RDataString() string {
	if r.Algorithm == "" {
		return "; no data"
	}
	var b strings.Builder
	b.WriteString(r.Algorithm + ". " + strconv.FormatUint(r.TimeSigned, 10) + " " +
		strconv.Itoa(int(r.Fudge)) + " " + strconv.Itoa(len(r.MAC)))
	if len(r.MAC) > 0 {
		b.WriteString(" " + base64.StdEncoding.EncodeToString(r.MAC))
	}
	b.WriteString(" " + strconv.Itoa(int(r.OriginalID)) + " " + tsigErrorString(r.Error) +
		" " + strconv.Itoa(len(r.OtherData)))
	if len(r.OtherData) > 0 {
		b.WriteString(" " + base64.StdEncoding.EncodeToString(r.OtherData))
	}
	return b.String()
}

func (r *TSIGRecord) String() string { return FormatRecord(r) }

func tsigErrorString(code uint16) string {
	switch code {
	case TSIGBadSig:
		return "BADSIG"
	case TSIGBadKey:
		return "BADKEY"
	case TSIGBadTime:
		return "BADTIME"
	}
	return RCode(code).String()
}

func appendTime48(b []byte, t uint64) []byte {
	b = binary.BigEndian.AppendUint16(b, uint16(t>>32))
	return binary.BigEndian.AppendUint32(b, uint32(t))
}

func parseTSIGRData(h RRHeader, rt RecordType, rd rdata) (Record, error) {
	off := rd.start
	alg, err := rd.name(&off)
	if err != nil {
		return nil, err
	}
	hi, err := rd.uint16(&off)
	if err != nil {
		return nil, err
	}
	lo, err := rd.uint32(&off)
	if err != nil {
		return nil, err
	}
	fudge, err := rd.uint16(&off)
	if err != nil {
		return nil, err
	}
	macLen, err := rd.uint16(&off)
	if err != nil {
		return nil, err
	}
	mac, err := rd.bytes(&off, int(macLen))
	if err != nil {
		return nil, err
	}
	var tail [3]uint16
	for i := range tail {
		if tail[i], err = rd.uint16(&off); err != nil {
			return nil, err
		}
	}
	other, err := rd.bytes(&off, int(tail[2]))
	if err != nil {
		return nil, err
	}
	if err := rd.finish(off, rt); err != nil {
		return nil, err
	}
	return &TSIGRecord{
		H:          h,
		Algorithm:  alg,
		TimeSigned: uint64(hi)<<32 | uint64(lo),
		Fudge:      fudge,
		MAC:        mac,
		OriginalID: tail[0],
		Error:      tail[1],
		OtherData:  other,
	}, nil
}

// TSIGKey is a shared secret used to sign and verify messages.
type TSIGKey struct {
	Name      string
	Algorithm string
	Secret    []byte
}

// ParseTSIGKey builds a key from its name and base64 secret. Whitespace in
// the secret is ignored and an empty algorithm selects HMAC-MD5.
func ParseTSIGKey(name, algorithm, secret string) (TSIGKey, error) {
	if algorithm == "" {
		algorithm = HMACMD5
	}
	algorithm = NormalizeName(algorithm)
	if _, ok := tsigHashes[algorithm]; !ok {
		return TSIGKey{}, fmt.Errorf("%w: unsupported tsig algorithm %q", ErrValue, algorithm)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(secret), ""))
	if err != nil {
		return TSIGKey{}, fmt.Errorf("%w: tsig secret is not base64: %w", ErrValue, err)
	}
	if trimDot(name) == "" {
		return TSIGKey{}, fmt.Errorf("%w: tsig key name is empty", ErrValue)
	}
	return TSIGKey{Name: trimDot(name), Algorithm: algorithm, Secret: raw}, nil
}

// tsigMAC computes the MAC over msg (the message without its TSIG record),
// the request MAC of a response and the TSIG variables, in RFC 2845 order.
func tsigMAC(key TSIGKey, msg, requestMAC []byte, t *TSIGRecord) ([]byte, error) {
	newHash, ok := tsigHashes[NormalizeName(t.Algorithm)]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported tsig algorithm %q", ErrValue, t.Algorithm)
	}
	if t.TimeSigned > maxTimeSigned {
		return nil, fmt.Errorf("%w: tsig time signed %d exceeds 48 bits", ErrValue, t.TimeSigned)
	}
	name, err := EncodeName(strings.ToLower(t.H.Name))
	if err != nil {
		return nil, err
	}
	alg, err := EncodeName(strings.ToLower(t.Algorithm))
	if err != nil {
		return nil, err
	}

	mac := hmac.New(newHash, key.Secret)
	var buf []byte
	if len(requestMAC) > 0 {
		buf = binary.BigEndian.AppendUint16(buf, helpers.ClampIntToUint16(len(requestMAC)))
		buf = append(buf, requestMAC...)
	}
	buf = append(buf, msg...)
	buf = append(buf, name...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(t.H.Class))
	buf = binary.BigEndian.AppendUint32(buf, t.H.TTL)
	buf = append(buf, alg...)
	buf = appendTime48(buf, t.TimeSigned)
	buf = binary.BigEndian.AppendUint16(buf, t.Fudge)
	buf = binary.BigEndian.AppendUint16(buf, t.Error)
	buf = binary.BigEndian.AppendUint16(buf, helpers.ClampIntToUint16(len(t.OtherData)))
	buf = append(buf, t.OtherData...)
	mac.Write(buf)
	return mac.Sum(nil), nil
}

// SignTSIG returns a copy of p with a TSIG record appended to the additional
// section. requestMAC is the MAC of the request being answered, nil when
// signing a request.
func SignTSIG(p Packet, key TSIGKey, requestMAC []byte, now time.Time) (Packet, error) {
	out := p
	out.Additionals = append([]Record(nil), p.Additionals...)
	msg, err := out.Marshal()
	if err != nil {
		return Packet{}, err
	}
	t := &TSIGRecord{
		H:          RRHeader{Name: key.Name, Class: ClassANY},
		Algorithm:  key.Algorithm,
		TimeSigned: uint64(max(now.Unix(), 0)),
		Fudge:      DefaultTSIGFudge,
		OriginalID: p.Header.ID,
	}
	if t.MAC, err = tsigMAC(key, msg, requestMAC, t); err != nil {
		return Packet{}, err
	}
	out.Additionals = append(out.Additionals, t)
	return out, nil
}

// VerifyTSIG checks the TSIG record that ends msg. It returns the record so
// callers can chain its MAC into later messages.
func VerifyTSIG(msg []byte, key TSIGKey, requestMAC []byte, now time.Time) (*TSIGRecord, error) {
	p, tsigOff, err := parsePacket(msg)
	if err != nil {
		return nil, err
	}
	if len(p.Additionals) == 0 {
		return nil, fmt.Errorf("%w: message is not signed", ErrTSIG)
	}
	t, ok := p.Additionals[len(p.Additionals)-1].(*TSIGRecord)
	if !ok {
		return nil, fmt.Errorf("%w: last additional record is not TSIG", ErrTSIG)
	}
	if !EqualNames(t.H.Name, key.Name) || !EqualNames(t.Algorithm, key.Algorithm) {
		return t, fmt.Errorf("%w: unknown key %q (%s)", ErrTSIG, t.H.Name, t.Algorithm)
	}

	// Undo what signing added: the TSIG record, its ARCOUNT and any ID change.
	unsigned := make([]byte, tsigOff)
	copy(unsigned, msg[:tsigOff])
	binary.BigEndian.PutUint16(unsigned[0:2], t.OriginalID)
	binary.BigEndian.PutUint16(unsigned[10:12], p.Header.ARCount-1)

	want, err := tsigMAC(key, unsigned, requestMAC, t)
	if err != nil {
		return t, err
	}
	if !hmac.Equal(want, t.MAC) {
		return t, fmt.Errorf("%w: bad signature", ErrTSIG)
	}
	signed := int64(min(t.TimeSigned, uint64(1<<62)))
	if delta := now.Unix() - signed; delta > int64(t.Fudge) || -delta > int64(t.Fudge) {
		return t, fmt.Errorf("%w: signed %ds from local time (fudge %d)", ErrTSIG, delta, t.Fudge)
	}
	return t, nil
}
