package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jroosing/mailprobe/internal/helpers"
)

// ErrUnknownOption is returned by ApplyOption for names it does not know.
var ErrUnknownOption = errors.New("unknown resolver option")

// ReadResolvConfFile applies a resolv.conf style file to c. A missing or
// unreadable file is skipped.
func ReadResolvConfFile(path string, c *ResolverConfig) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := ParseResolvConf(f, c); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// ParseResolvConf applies the domain, search, nameserver and options
// directives read from r. Nameservers and search entries accumulate across
// calls; domain replaces. Comments start at '#' or ';'. Unknown directives
// and options are ignored, since system files carry options for other
// resolvers.
func ParseResolvConf(r io.Reader, c *ResolverConfig) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexAny(line, "#;"); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "domain":
			c.Domain = fields[1]
		case "search":
			c.SearchList = append(c.SearchList, fields[1:]...)
		case "nameserver":
			c.Nameservers = append(c.Nameservers, fields[1:]...)
		case "options":
			applyOptionList(c, fields[1:])
		}
	}
	return sc.Err()
}

// ApplyEnv reads RES_NAMESERVERS and RES_SEARCHLIST (space separated,
// replacing), LOCALDOMAIN and RES_OPTIONS (space separated name:value).
func ApplyEnv(c *ResolverConfig, lookup func(string) (string, bool)) {
	if v, ok := lookup("RES_NAMESERVERS"); ok && strings.TrimSpace(v) != "" {
		c.Nameservers = strings.Fields(v)
	}
	if v, ok := lookup("RES_SEARCHLIST"); ok && strings.TrimSpace(v) != "" {
		c.SearchList = strings.Fields(v)
	}
	if v, ok := lookup("LOCALDOMAIN"); ok && strings.TrimSpace(v) != "" {
		c.Domain = strings.TrimSpace(v)
	}
	if v, ok := lookup("RES_OPTIONS"); ok {
		applyOptionList(c, strings.Fields(v))
	}
}

// applyOptionList applies name[:value] items and skips ones that fail.
func applyOptionList(c *ResolverConfig, items []string) {
	for _, item := range items {
		name, value, _ := strings.Cut(item, ":")
		_ = ApplyOption(c, name, value)
	}
}

// ApplyOption sets one resolver setting by name. Boolean options treat an
// empty value as true. Durations accept whole seconds or Go duration text.
// The names timeout, attempts and use-vc are accepted as aliases.
func ApplyOption(c *ResolverConfig, name, value string) error {
	value = strings.TrimSpace(value)
	var err error
	setInt := func(dst *int) {
		var n int
		if n, err = strconv.Atoi(value); err == nil {
			*dst = n
		}
	}
	setDuration := func(dst *time.Duration) {
		var d time.Duration
		if d, err = parseSeconds(value); err == nil {
			*dst = d
		}
	}
	setBool := func(dst *bool) {
		var b bool
		if b, err = parseBool(value); err == nil {
			*dst = b
		}
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "nameservers":
		c.Nameservers = splitList(value)
	case "searchlist", "search":
		c.SearchList = splitList(value)
	case "domain":
		c.Domain = value
	case "port":
		setInt(&c.Port)
	case "retrans", "timeout":
		setDuration(&c.Retrans)
	case "retry", "attempts":
		setInt(&c.Retry)
	case "tcp_timeout":
		setDuration(&c.TCPTimeout)
	case "usevc", "use-vc":
		setBool(&c.UseVC)
	case "igntc":
		setBool(&c.IgnoreTC)
	case "recurse":
		setBool(&c.Recurse)
	case "defnames":
		setBool(&c.DefNames)
	case "dnsrch":
		setBool(&c.DNSSearch)
	case "debug":
		setBool(&c.Debug)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
	if err != nil {
		return fmt.Errorf("resolver option %s=%q: %w", name, value, err)
	}
	return nil
}

func splitList(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
}

func parseSeconds(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 {
			return 0, errors.New("negative duration")
		}
		return helpers.Seconds(n), nil
	}
	return time.ParseDuration(v)
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "", "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}
