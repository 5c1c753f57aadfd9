package dns

import "strings"

// TXTRecord holds one or more character-strings (RFC 1035 Section 3.3.14).
// Zero-length strings are legal and preserved.
type TXTRecord struct {
	H    RRHeader
	Text []string
}

func (r *TXTRecord) Type() RecordType { return TypeTXT }

func (r *TXTRecord) Header() RRHeader { return r.H }

func (r *TXTRecord) MarshalRData(_ *Compressor, _ int) ([]byte, error) {
	var out []byte
	var err error
	for _, s := range r.Text {
		if out, err = appendCharacterString(out, s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *TXTRecord) RDataString() string {
	if len(r.Text) == 0 {
		return "; no data"
	}
	parts := make([]string, len(r.Text))
	for i, s := range r.Text {
		parts[i] = quote(s)
	}
	return strings.Join(parts, " ")
}

func (r *TXTRecord) String() string { return FormatRecord(r) }

// parseTXTRData consumes length-prefixed strings until RDLENGTH is exhausted.
func parseTXTRData(h RRHeader, rt RecordType, rd rdata) (Record, error) {
	off := rd.start
	var text []string
	for off < rd.end {
		s, err := rd.characterString(&off)
		if err != nil {
			return nil, err
		}
		text = append(text, s)
	}
	if err := rd.finish(off, rt); err != nil {
		return nil, err
	}
	return &TXTRecord{H: h, Text: text}, nil
}

// HINFORecord describes host hardware and operating system
// (RFC 1035 Section 3.3.2).
type HINFORecord struct {
	H   RRHeader
	CPU string
	OS  string
}

func (r *HINFORecord) Type() RecordType { return TypeHINFO }

func (r *HINFORecord) Header() RRHeader { return r.H }

func (r *HINFORecord) MarshalRData(_ *Compressor, _ int) ([]byte, error) {
	out, err := appendCharacterString(nil, r.CPU)
	if err != nil {
		return nil, err
	}
	return appendCharacterString(out, r.OS)
}

func (r *HINFORecord) RDataString() string { return quote(r.CPU) + " " + quote(r.OS) }

func (r *HINFORecord) String() string { return FormatRecord(r) }

func parseHINFORData(h RRHeader, rt RecordType, rd rdata) (Record, error) {
	off := rd.start
	cpu, err := rd.characterString(&off)
	if err != nil {
		return nil, err
	}
	os, err := rd.characterString(&off)
	if err != nil {
		return nil, err
	}
	if err := rd.finish(off, rt); err != nil {
		return nil, err
	}
	return &HINFORecord{H: h, CPU: cpu, OS: os}, nil
}
