package dns

// NameRecord represents DNS records that contain a single domain name (CNAME, NS, PTR).
type NameRecord struct {
	H      RRHeader
	T      RecordType
	Target string
}

// NewNameRecord creates a new name-based record (CNAME, NS, or PTR).
func NewNameRecord(h RRHeader, rt RecordType, target string) *NameRecord {
	return &NameRecord{H: h, T: rt, Target: trimDot(target)}
}

// NewCNAMERecord creates a new CNAME record.
func NewCNAMERecord(h RRHeader, target string) *NameRecord {
	return NewNameRecord(h, TypeCNAME, target)
}

// NewNSRecord creates a new NS record.
func NewNSRecord(h RRHeader, target string) *NameRecord {
	return NewNameRecord(h, TypeNS, target)
}

// NewPTRRecord creates a new PTR record.
func NewPTRRecord(h RRHeader, target string) *NameRecord {
	return NewNameRecord(h, TypePTR, target)
}

// Type returns the record type (CNAME, NS, or PTR).
func (r *NameRecord) Type() RecordType { return r.T }

// Header returns the record header.
func (r *NameRecord) Header() RRHeader { return r.H }

// MarshalRData marshals the target name, compressed (RFC 3597 §4 allows it
// for these well-known types).
func (r *NameRecord) MarshalRData(c *Compressor, off int) ([]byte, error) {
	return encodeName(c, true, r.Target, off)
}

// RDataString renders the target as an absolute name.
func (r *NameRecord) RDataString() string { return r.Target + "." }

func (r *NameRecord) String() string { return FormatRecord(r) }

// parseNameRData parses CNAME, NS, or PTR record RDATA from wire format.
func parseNameRData(h RRHeader, rt RecordType, rd rdata) (Record, error) {
	off := rd.start
	n, err := rd.name(&off)
	if err != nil {
		return nil, err
	}
	if err := rd.finish(off, rt); err != nil {
		return nil, err
	}
	return &NameRecord{H: h, T: rt, Target: n}, nil
}
