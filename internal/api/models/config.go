package models

import "github.com/jroosing/mailprobe/internal/config"

// APIConfigResponse is a redacted version of APIConfig (no api_key exposed).
type APIConfigResponse struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

// ResolverConfigResponse is the resolver configuration with durations as
// strings and the TSIG secret left out.
type ResolverConfigResponse struct {
	Nameservers []string `json:"nameservers"`
	Port        int      `json:"port"`
	Domain      string   `json:"domain"`
	SearchList  []string `json:"search_list"`
	Retrans     string   `json:"retrans"`
	Retry       int      `json:"retry"`
	UseVC       bool     `json:"usevc"`
	IgnoreTC    bool     `json:"igntc"`
	Recurse     bool     `json:"recurse"`
	DefNames    bool     `json:"defnames"`
	DNSSearch   bool     `json:"dnsrch"`
	TCPTimeout  string   `json:"tcp_timeout"`
	TSIGKeyName string   `json:"tsig_key_name,omitempty"`
}

// ConfigResponse is the API response for GET /config.
type ConfigResponse struct {
	Resolver ResolverConfigResponse `json:"resolver"`
	Logging  config.LoggingConfig   `json:"logging"`
	API      APIConfigResponse      `json:"api"`
	Database config.DatabaseConfig  `json:"database"`
	MX       config.MXConfig        `json:"mx"`
}
