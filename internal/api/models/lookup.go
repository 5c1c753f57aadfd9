package models

// RecordResponse is one resource record in presentation form.
type RecordResponse struct {
	Name  string `json:"name"`
	TTL   uint32 `json:"ttl"`
	Class string `json:"class"`
	Type  string `json:"type"`
	Data  string `json:"data"`
}

// LookupResponse is the answer to a single query.
type LookupResponse struct {
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Class       string           `json:"class"`
	Server      string           `json:"server"`
	RCode       string           `json:"rcode"`
	Truncated   bool             `json:"truncated,omitempty"`
	Answers     []RecordResponse `json:"answers"`
	Authorities []RecordResponse `json:"authorities,omitempty"`
	Additionals []RecordResponse `json:"additionals,omitempty"`
}

// MXHost is one mail exchanger.
type MXHost struct {
	Host       string `json:"host"`
	Preference uint16 `json:"preference"`
}

// MXResponse lists the mail exchangers of a domain, lowest preference
// first.
type MXResponse struct {
	Domain string   `json:"domain"`
	Source string   `json:"source"`
	Hosts  []MXHost `json:"hosts"`
}
