package config

import (
	"strconv"
	"strings"
	"time"
)

// Resolver defaults, matching the classic BIND stub resolver.
const (
	DefaultPort       = 53
	DefaultRetrans    = 5 * time.Second
	DefaultRetry      = 4
	DefaultTCPTimeout = 120 * time.Second
)

// ResolverConfig holds everything a resolver needs to build and send
// queries. It is assembled once by Load and treated as read-only afterwards.
type ResolverConfig struct {
	Nameservers []string      `json:"nameservers" toml:"nameservers"`
	Port        int           `json:"port" toml:"port"`
	Domain      string        `json:"domain" toml:"domain"`
	SearchList  []string      `json:"search_list" toml:"search"`
	Retrans     time.Duration `json:"retrans" toml:"retrans"`
	Retry       int           `json:"retry" toml:"retry"`
	UseVC       bool          `json:"usevc" toml:"usevc"`
	IgnoreTC    bool          `json:"igntc" toml:"igntc"`
	Recurse     bool          `json:"recurse" toml:"recurse"`
	DefNames    bool          `json:"defnames" toml:"defnames"`
	DNSSearch   bool          `json:"dnsrch" toml:"dnsrch"`
	TCPTimeout  time.Duration `json:"tcp_timeout" toml:"tcp_timeout"`
	Debug       bool          `json:"debug" toml:"debug"`
	TSIG        TSIGConfig    `json:"-" toml:"tsig"`
}

// TSIGConfig names a shared secret used to sign outgoing queries. An empty
// KeyName disables signing.
type TSIGConfig struct {
	KeyName   string `json:"key_name" toml:"key_name"`
	Algorithm string `json:"algorithm" toml:"algorithm"`
	Secret    string `json:"secret" toml:"secret"`
}

// DefaultResolverConfig returns the built-in defaults.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		Port:       DefaultPort,
		Retrans:    DefaultRetrans,
		Retry:      DefaultRetry,
		Recurse:    true,
		DefNames:   true,
		DNSSearch:  true,
		TCPTimeout: DefaultTCPTimeout,
	}
}

// String dumps the resolver state in the ";;" style used by the query tools.
func (c ResolverConfig) String() string {
	tcp := "indefinite"
	if c.TCPTimeout > 0 {
		tcp = c.TCPTimeout.String()
	}
	var b strings.Builder
	b.WriteString(";; Resolver state:\n")
	b.WriteString(";;  domain       = " + c.Domain + "\n")
	b.WriteString(";;  searchlist   = " + strings.Join(c.SearchList, " ") + "\n")
	b.WriteString(";;  nameservers  = " + strings.Join(c.Nameservers, " ") + "\n")
	b.WriteString(";;  port         = " + strconv.Itoa(c.Port) + "\n")
	b.WriteString(";;  tcp_timeout  = " + tcp + "\n")
	b.WriteString(";;  retrans  = " + c.Retrans.String() + "  retry    = " + strconv.Itoa(c.Retry) + "\n")
	b.WriteString(";;  usevc    = " + flag(c.UseVC) + "  igntc    = " + flag(c.IgnoreTC) + "\n")
	b.WriteString(";;  defnames = " + flag(c.DefNames) + "  dnsrch   = " + flag(c.DNSSearch) + "\n")
	b.WriteString(";;  recurse  = " + flag(c.Recurse) + "  debug    = " + flag(c.Debug) + "\n")
	return b.String()
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level            string            `json:"level" toml:"level"`
	Structured       bool              `json:"structured" toml:"structured"`
	StructuredFormat string            `json:"structured_format" toml:"structured_format"`
	IncludePID       bool              `json:"include_pid" toml:"include_pid"`
	ExtraFields      map[string]string `json:"extra_fields,omitempty" toml:"extra_fields"`
}

// APIConfig contains HTTP API settings.
//
// Note: APIKey is intentionally treated as a secret and should not be returned by API endpoints.
type APIConfig struct {
	Enabled bool   `json:"enabled" toml:"enabled"`
	Host    string `json:"host" toml:"host"`
	Port    int    `json:"port" toml:"port"`
	APIKey  string `json:"api_key,omitempty" toml:"api_key"`
}

// DatabaseConfig locates the SQLite archive of zone transfers.
type DatabaseConfig struct {
	Path string `json:"path" toml:"path"`
}

// MXConfig controls the mail exchanger lookup.
type MXConfig struct {
	// UsePlatform asks the operating system resolver first and only falls
	// back to the built-in resolver when that fails.
	UsePlatform bool `json:"use_platform" toml:"use_platform"`
}

// Config is the root configuration structure.
type Config struct {
	Resolver ResolverConfig `json:"resolver" toml:"resolver"`
	Logging  LoggingConfig  `json:"logging" toml:"logging"`
	API      APIConfig      `json:"api" toml:"api"`
	Database DatabaseConfig `json:"database" toml:"database"`
	MX       MXConfig       `json:"mx" toml:"mx"`
}
