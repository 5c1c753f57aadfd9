package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestResolveConfigPath(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		envValue string
		want     string
	}{
		{"flag takes precedence", "/path/from/flag", "/path/from/env", "/path/from/flag"},
		{"env when no flag", "", "/path/from/env", "/path/from/env"},
		{"empty when neither", "", "", ""},
		{"whitespace flag", "  ", "/path/from/env", "/path/from/env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(ConfigEnvVar, tt.envValue)
			if got := ResolveConfigPath(tt.flag); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadDefault(t *testing.T) {
	cfg, err := Load(LoadOptions{NoSystem: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := cfg.Resolver
	if r.Port != 53 {
		t.Errorf("expected port 53, got %d", r.Port)
	}
	if r.Retrans != 5*time.Second || r.Retry != 4 {
		t.Errorf("unexpected retry policy: retrans=%v retry=%d", r.Retrans, r.Retry)
	}
	if !r.Recurse || !r.DefNames || !r.DNSSearch {
		t.Error("expected recurse, defnames and dnsrch enabled")
	}
	if r.UseVC || r.IgnoreTC {
		t.Error("expected usevc and igntc disabled")
	}
	if r.TCPTimeout != 120*time.Second {
		t.Errorf("expected tcp timeout 120s, got %v", r.TCPTimeout)
	}
	if len(r.Nameservers) != 0 {
		t.Errorf("expected no nameservers, got %v", r.Nameservers)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected log level INFO, got %s", cfg.Logging.Level)
	}
	if !cfg.MX.UsePlatform {
		t.Error("expected platform MX lookup enabled")
	}
}

func TestParseResolvConf(t *testing.T) {
	content := `
# generated
domain corp.example
search a.example b.example ; trailing comment
nameserver 192.0.2.1
nameserver 192.0.2.2
options timeout:2 attempts:3 rotate ndots:1
sortlist 130.155.160.0
`
	c := DefaultResolverConfig()
	if err := ParseResolvConf(strings.NewReader(content), &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Domain != "corp.example" {
		t.Errorf("expected domain corp.example, got %q", c.Domain)
	}
	if !slices.Equal(c.SearchList, []string{"a.example", "b.example"}) {
		t.Errorf("unexpected search list: %v", c.SearchList)
	}
	if !slices.Equal(c.Nameservers, []string{"192.0.2.1", "192.0.2.2"}) {
		t.Errorf("unexpected nameservers: %v", c.Nameservers)
	}
	if c.Retrans != 2*time.Second || c.Retry != 3 {
		t.Errorf("options not applied: retrans=%v retry=%d", c.Retrans, c.Retry)
	}
}

func TestLoad_MergeOrder(t *testing.T) {
	dir := t.TempDir()
	system := writeFile(t, dir, "resolv.conf", "nameserver 192.0.2.1\nsearch sys.example\n")
	dot := writeFile(t, dir, "dot.resolv.conf", "nameserver 192.0.2.2\n")
	file := writeFile(t, dir, "mailprobe.toml", `
[resolver]
retry = 2
retrans = "3s"
igntc = true

[resolver.tsig]
key_name = "xfr.example"
secret = "c2VjcmV0"

[logging]
level = "warn"

[api]
port = 9090

[database]
path = "/tmp/archive.db"
`)

	cfg, err := Load(LoadOptions{
		ConfigFile: file,
		ResolvConf: system,
		DotFiles:   []string{dot, filepath.Join(dir, "missing")},
		LookupEnv: envMap(map[string]string{
			"RES_OPTIONS": "usevc retry:7 bogus:1",
			"LOCALDOMAIN": "env.example",
		}),
		Overrides: map[string]string{"port": "5353"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := cfg.Resolver

	if !slices.Equal(r.Nameservers, []string{"192.0.2.1", "192.0.2.2"}) {
		t.Errorf("dotfile nameservers should accumulate: %v", r.Nameservers)
	}
	if r.Domain != "env.example" {
		t.Errorf("LOCALDOMAIN should win over files, got %q", r.Domain)
	}
	if !slices.Equal(r.SearchList, []string{"sys.example"}) {
		t.Errorf("unexpected search list: %v", r.SearchList)
	}
	if !r.UseVC {
		t.Error("RES_OPTIONS usevc without value should enable it")
	}
	if r.Retry != 2 {
		t.Errorf("TOML retry should beat RES_OPTIONS, got %d", r.Retry)
	}
	if r.Retrans != 3*time.Second || !r.IgnoreTC {
		t.Errorf("TOML resolver table not applied: %+v", r)
	}
	if r.Port != 5353 {
		t.Errorf("override port not applied, got %d", r.Port)
	}
	if r.TSIG.KeyName != "xfr.example" {
		t.Errorf("tsig key not read, got %q", r.TSIG.KeyName)
	}
	if cfg.Logging.Level != "WARN" {
		t.Errorf("expected log level WARN, got %s", cfg.Logging.Level)
	}
	if cfg.API.Port != 9090 || cfg.Database.Path != "/tmp/archive.db" {
		t.Errorf("unexpected api/database settings: %+v %+v", cfg.API, cfg.Database)
	}
}

func TestLoad_EnvReplacesLists(t *testing.T) {
	dir := t.TempDir()
	system := writeFile(t, dir, "resolv.conf", "nameserver 192.0.2.1\ndomain file.example\n")
	cfg, err := Load(LoadOptions{
		ResolvConf: system,
		DotFiles:   []string{},
		LookupEnv: envMap(map[string]string{
			"RES_NAMESERVERS": "198.51.100.1 198.51.100.2",
			"RES_SEARCHLIST":  "x.example y.example",
		}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(cfg.Resolver.Nameservers, []string{"198.51.100.1", "198.51.100.2"}) {
		t.Errorf("unexpected nameservers: %v", cfg.Resolver.Nameservers)
	}
	if !slices.Equal(cfg.Resolver.SearchList, []string{"x.example", "y.example"}) {
		t.Errorf("unexpected search list: %v", cfg.Resolver.SearchList)
	}
	if cfg.Resolver.Domain != "file.example" {
		t.Errorf("unexpected domain: %q", cfg.Resolver.Domain)
	}
}

func TestLoad_DomainSearchReconcile(t *testing.T) {
	cfg, err := Load(LoadOptions{NoSystem: true, Overrides: map[string]string{"domain": "only.example"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(cfg.Resolver.SearchList, []string{"only.example"}) {
		t.Errorf("search list should default to domain: %v", cfg.Resolver.SearchList)
	}

	cfg, err = Load(LoadOptions{NoSystem: true, Overrides: map[string]string{"search": "first.example,second.example"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Resolver.Domain != "first.example" {
		t.Errorf("domain should default to first search entry: %q", cfg.Resolver.Domain)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		opts LoadOptions
	}{
		{"missing file", LoadOptions{NoSystem: true, ConfigFile: filepath.Join(dir, "nope.toml")}},
		{"invalid toml", LoadOptions{NoSystem: true, ConfigFile: writeFile(t, dir, "bad.toml", "[resolver\nport = ")}},
		{"unknown key", LoadOptions{NoSystem: true, ConfigFile: writeFile(t, dir, "unknown.toml", "[resolver]\nstayopen = true\n")}},
		{"bad port", LoadOptions{NoSystem: true, Overrides: map[string]string{"port": "0"}}},
		{"bad override value", LoadOptions{NoSystem: true, Overrides: map[string]string{"retry": "many"}}},
		{"unknown override", LoadOptions{NoSystem: true, Overrides: map[string]string{"ndots": "2"}}},
		{"half tsig", LoadOptions{NoSystem: true, ConfigFile: writeFile(t, dir, "tsig.toml", "[resolver.tsig]\nkey_name = \"k\"\n")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestApplyOption_BadValueKeepsSetting(t *testing.T) {
	c := DefaultResolverConfig()
	if err := ApplyOption(&c, "port", "fifty-three"); err == nil {
		t.Fatal("expected error")
	}
	if c.Port != DefaultPort {
		t.Errorf("port changed to %d on bad input", c.Port)
	}
	if err := ApplyOption(&c, "tcp_timeout", "90s"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.TCPTimeout != 90*time.Second {
		t.Errorf("expected 90s, got %v", c.TCPTimeout)
	}
	if err := ApplyOption(&c, "recurse", "no"); err != nil || c.Recurse {
		t.Errorf("recurse:no not applied (err=%v)", err)
	}
}

func TestValidate_Normalizes(t *testing.T) {
	cfg := Default()
	cfg.Resolver.Retry = 100
	cfg.Resolver.Retrans = 0
	cfg.Resolver.Debug = true
	cfg.Resolver.SearchList = []string{"a.example."}
	cfg.API.Host = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Resolver.Retry != maxRetry {
		t.Errorf("retry not clamped: %d", cfg.Resolver.Retry)
	}
	if cfg.Resolver.Retrans != DefaultRetrans {
		t.Errorf("retrans not defaulted: %v", cfg.Resolver.Retrans)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("debug flag should force DEBUG logging, got %s", cfg.Logging.Level)
	}
	if cfg.Resolver.SearchList[0] != "a.example" {
		t.Errorf("search entry not trimmed: %q", cfg.Resolver.SearchList[0])
	}
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("api host not defaulted: %q", cfg.API.Host)
	}
}

func TestResolverConfigString(t *testing.T) {
	c := DefaultResolverConfig()
	c.Nameservers = []string{"192.0.2.1"}
	c.TCPTimeout = 0
	s := c.String()
	for _, want := range []string{"nameservers  = 192.0.2.1", "tcp_timeout  = indefinite", "retry    = 4", "dnsrch   = 1"} {
		if !strings.Contains(s, want) {
			t.Errorf("state dump missing %q:\n%s", want, s)
		}
	}
}
