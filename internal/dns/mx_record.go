package dns

import (
	"encoding/binary"
	"strconv"
)

// MXRecord is a mail exchanger (RFC 1035 Section 3.3.9).
//
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                  PREFERENCE                   |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	/                   EXCHANGE                    /
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
type MXRecord struct {
	H          RRHeader
	Preference uint16
	Exchange   string
}

// NewMXRecord creates a new MX record.
func NewMXRecord(h RRHeader, preference uint16, exchange string) *MXRecord {
	return &MXRecord{H: h, Preference: preference, Exchange: trimDot(exchange)}
}

func (r *MXRecord) Type() RecordType { return TypeMX }

func (r *MXRecord) Header() RRHeader { return r.H }

// MarshalRData encodes preference followed by the (compressed) exchange.
func (r *MXRecord) MarshalRData(c *Compressor, off int) ([]byte, error) {
	name, err := encodeName(c, true, r.Exchange, off+2)
	if err != nil {
		return nil, err
	}
	out := binary.BigEndian.AppendUint16(make([]byte, 0, 2+len(name)), r.Preference)
	return append(out, name...), nil
}

func (r *MXRecord) RDataString() string {
	return strconv.Itoa(int(r.Preference)) + " " + r.Exchange + "."
}

func (r *MXRecord) String() string { return FormatRecord(r) }

func parseMXRData(h RRHeader, rt RecordType, rd rdata) (Record, error) {
	off := rd.start
	pref, err := rd.uint16(&off)
	if err != nil {
		return nil, err
	}
	exchange, err := rd.name(&off)
	if err != nil {
		return nil, err
	}
	if err := rd.finish(off, rt); err != nil {
		return nil, err
	}
	return &MXRecord{H: h, Preference: pref, Exchange: exchange}, nil
}
