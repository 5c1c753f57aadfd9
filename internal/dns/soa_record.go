package dns

import (
	"encoding/binary"
	"fmt"
)

// SOARecord marks the start of a zone of authority (RFC 1035 Section 3.3.13).
//
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	/                     MNAME                     /  Primary nameserver
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	/                     RNAME                     /  Responsible person's mailbox
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                    SERIAL                     |  4 bytes
//	|                    REFRESH                    |  4 bytes
//	|                     RETRY                     |  4 bytes
//	|                    EXPIRE                     |  4 bytes
//	|                   MINIMUM                     |  4 bytes
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
type SOARecord struct {
	H       RRHeader
	MName   string
	RName   string
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

func (r *SOARecord) Type() RecordType { return TypeSOA }

func (r *SOARecord) Header() RRHeader { return r.H }

// MarshalRData encodes both names (compressed) followed by the five counters.
func (r *SOARecord) MarshalRData(c *Compressor, off int) ([]byte, error) {
	mname, err := encodeName(c, true, r.MName, off)
	if err != nil {
		return nil, err
	}
	rname, err := encodeName(c, true, r.RName, off+len(mname))
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(mname)+len(rname)+20)
	out = append(out, mname...)
	out = append(out, rname...)
	for _, v := range []uint32{r.Serial, r.Refresh, r.Retry, r.Expire, r.Minimum} {
		out = binary.BigEndian.AppendUint32(out, v)
	}
	return out, nil
}

func (r *SOARecord) RDataString() string {
	return fmt.Sprintf("%s. %s. %d %d %d %d %d",
		r.MName, r.RName, r.Serial, r.Refresh, r.Retry, r.Expire, r.Minimum)
}

// PrettyRDataString renders the counters one per line with comments, the way
// zone files usually lay out SOA records.
func (r *SOARecord) PrettyRDataString() string {
	return fmt.Sprintf("%s. %s. (\n"+
		"\t\t\t\t\t%d\t; Serial\n"+
		"\t\t\t\t\t%d\t; Refresh\n"+
		"\t\t\t\t\t%d\t; Retry\n"+
		"\t\t\t\t\t%d\t; Expire\n"+
		"\t\t\t\t\t%d )\t; Minimum TTL",
		r.MName, r.RName, r.Serial, r.Refresh, r.Retry, r.Expire, r.Minimum)
}

func (r *SOARecord) String() string { return FormatRecord(r) }

func parseSOARData(h RRHeader, rt RecordType, rd rdata) (Record, error) {
	off := rd.start
	mname, err := rd.name(&off)
	if err != nil {
		return nil, err
	}
	rname, err := rd.name(&off)
	if err != nil {
		return nil, err
	}
	var vals [5]uint32
	for i := range vals {
		if vals[i], err = rd.uint32(&off); err != nil {
			return nil, err
		}
	}
	if err := rd.finish(off, rt); err != nil {
		return nil, err
	}
	return &SOARecord{
		H:       h,
		MName:   mname,
		RName:   rname,
		Serial:  vals[0],
		Refresh: vals[1],
		Retry:   vals[2],
		Expire:  vals[3],
		Minimum: vals[4],
	}, nil
}
