package dns

import (
	"encoding/binary"
	"fmt"
)

// SRVRecord locates a service (RFC 2782). The target is never compressed on
// output.
type SRVRecord struct {
	H        RRHeader
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   string
}

func (r *SRVRecord) Type() RecordType { return TypeSRV }

func (r *SRVRecord) Header() RRHeader { return r.H }

func (r *SRVRecord) MarshalRData(c *Compressor, off int) ([]byte, error) {
	target, err := encodeName(c, false, r.Target, off+6)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 6+len(target))
	out = binary.BigEndian.AppendUint16(out, r.Priority)
	out = binary.BigEndian.AppendUint16(out, r.Weight)
	out = binary.BigEndian.AppendUint16(out, r.Port)
	return append(out, target...), nil
}

func (r *SRVRecord) RDataString() string {
	return fmt.Sprintf("%d %d %d %s.", r.Priority, r.Weight, r.Port, r.Target)
}

func (r *SRVRecord) String() string { return FormatRecord(r) }

func parseSRVRData(h RRHeader, rt RecordType, rd rdata) (Record, error) {
	off := rd.start
	var vals [3]uint16
	var err error
	for i := range vals {
		if vals[i], err = rd.uint16(&off); err != nil {
			return nil, err
		}
	}
	target, err := rd.name(&off)
	if err != nil {
		return nil, err
	}
	if err := rd.finish(off, rt); err != nil {
		return nil, err
	}
	return &SRVRecord{H: h, Priority: vals[0], Weight: vals[1], Port: vals[2], Target: target}, nil
}
