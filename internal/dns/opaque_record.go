package dns

import "strconv"

// OpaqueRecord represents a DNS record with an unknown or unsupported type.
// Only the raw RDATA is kept.
type OpaqueRecord struct {
	H    RRHeader
	T    RecordType
	Data []byte
}

// NewOpaqueRecord creates a new opaque record for unknown/unsupported types.
func NewOpaqueRecord(h RRHeader, rt RecordType, data []byte) *OpaqueRecord {
	return &OpaqueRecord{H: h, T: rt, Data: data}
}

// Type returns the record type.
func (r *OpaqueRecord) Type() RecordType { return r.T }

// Header returns the record header.
func (r *OpaqueRecord) Header() RRHeader { return r.H }

// MarshalRData returns the raw data unchanged.
func (r *OpaqueRecord) MarshalRData(_ *Compressor, _ int) ([]byte, error) {
	return r.Data, nil
}

// RDataString marks the data as unrecognized and reports its length.
func (r *OpaqueRecord) RDataString() string {
	if len(r.Data) > 0 {
		return "; rdlength = " + strconv.Itoa(len(r.Data))
	}
	return "; no data"
}

func (r *OpaqueRecord) String() string { return FormatRecord(r) }

// parseOpaqueRData copies raw RDATA for types without a registered codec.
func parseOpaqueRData(h RRHeader, rt RecordType, rd rdata) (Record, error) {
	off := rd.start
	b, err := rd.bytes(&off, rd.len())
	if err != nil {
		return nil, err
	}
	return &OpaqueRecord{H: h, T: rt, Data: b}, nil
}
