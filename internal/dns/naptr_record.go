package dns

import (
	"encoding/binary"
	"fmt"
)

// NAPTRRecord is a naming authority pointer (RFC 2915): two 16-bit integers,
// three character-strings and a replacement domain name.
type NAPTRRecord struct {
	H           RRHeader
	Order       uint16
	Preference  uint16
	Flags       string
	Services    string
	Regexp      string
	Replacement string
}

func (r *NAPTRRecord) Type() RecordType { return TypeNAPTR }

func (r *NAPTRRecord) Header() RRHeader { return r.H }

func (r *NAPTRRecord) MarshalRData(c *Compressor, off int) ([]byte, error) {
	out := make([]byte, 0, 8+len(r.Flags)+len(r.Services)+len(r.Regexp)+len(r.Replacement))
	out = binary.BigEndian.AppendUint16(out, r.Order)
	out = binary.BigEndian.AppendUint16(out, r.Preference)
	var err error
	for _, s := range []string{r.Flags, r.Services, r.Regexp} {
		if out, err = appendCharacterString(out, s); err != nil {
			return nil, err
		}
	}
	repl, err := encodeName(c, false, r.Replacement, off+len(out))
	if err != nil {
		return nil, err
	}
	return append(out, repl...), nil
}

func (r *NAPTRRecord) RDataString() string {
	return fmt.Sprintf("%d %d %s %s %s %s.", r.Order, r.Preference,
		quote(r.Flags), quote(r.Services), quote(r.Regexp), r.Replacement)
}

func (r *NAPTRRecord) String() string { return FormatRecord(r) }

func parseNAPTRRData(h RRHeader, rt RecordType, rd rdata) (Record, error) {
	off := rd.start
	order, err := rd.uint16(&off)
	if err != nil {
		return nil, err
	}
	pref, err := rd.uint16(&off)
	if err != nil {
		return nil, err
	}
	var strs [3]string
	for i := range strs {
		if strs[i], err = rd.characterString(&off); err != nil {
			return nil, err
		}
	}
	repl, err := rd.name(&off)
	if err != nil {
		return nil, err
	}
	if err := rd.finish(off, rt); err != nil {
		return nil, err
	}
	return &NAPTRRecord{
		H:           h,
		Order:       order,
		Preference:  pref,
		Flags:       strs[0],
		Services:    strs[1],
		Regexp:      strs[2],
		Replacement: repl,
	}, nil
}
