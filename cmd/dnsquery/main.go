package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/jroosing/mailprobe/internal/config"
	"github.com/jroosing/mailprobe/internal/dns"
	"github.com/jroosing/mailprobe/internal/logging"
	"github.com/jroosing/mailprobe/internal/mxlookup"
	"github.com/jroosing/mailprobe/internal/resolver"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to TOML configuration file (or set MAILPROBE_CONFIG)")
		servers    = flag.String("server", "", "Comma-separated nameservers (addresses or host names)")
		port       = flag.Int("port", 0, "Nameserver port")
		qtype      = flag.String("type", "A", "Query type (mnemonic, TYPEnnn or number)")
		qclass     = flag.String("class", "IN", "Query class")
		search     = flag.Bool("search", false, "Apply the search list")
		axfr       = flag.Bool("axfr", false, "Transfer the zone NAME")
		axfrOld    = flag.Bool("axfr-old", false, "Transfer the zone NAME in a single exchange")
		mx         = flag.Bool("mx", false, "List the mail exchangers of NAME")
		platform   = flag.Bool("platform", false, "With -mx, ask the system resolver first")
		useVC      = flag.Bool("tcp", false, "Always use TCP")
		ignoreTC   = flag.Bool("ignore-tc", false, "Accept truncated UDP answers")
		noRecurse  = flag.Bool("norecurse", false, "Clear the recursion desired flag")
		retrans    = flag.String("retrans", "", "UDP retransmission interval (seconds or duration)")
		retry      = flag.Int("retry", 0, "UDP retry rounds")
		tsigSpec   = flag.String("tsig", "", "Sign queries with name:algorithm:secret")
		noSystem   = flag.Bool("no-system", false, "Ignore resolv.conf, dotfiles and the environment")
		state      = flag.Bool("state", false, "Print the resolver state first")
		debug      = flag.Bool("debug", false, "Enable debug logging")
		quiet      = flag.Bool("quiet", false, "Suppress output (exit status indicates success)")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: dnsquery [flags] NAME\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	name := flag.Arg(0)

	overrides := map[string]string{}
	if *port != 0 {
		overrides["port"] = strconv.Itoa(*port)
	}
	if *retrans != "" {
		overrides["retrans"] = *retrans
	}
	if *retry != 0 {
		overrides["retry"] = strconv.Itoa(*retry)
	}
	if *useVC {
		overrides["usevc"] = "true"
	}
	if *ignoreTC {
		overrides["igntc"] = "true"
	}
	if *noRecurse {
		overrides["recurse"] = "false"
	}
	if *debug {
		overrides["debug"] = "true"
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: config.ResolveConfigPath(*configPath),
		NoSystem:   *noSystem,
		Overrides:  overrides,
	})
	if err != nil {
		fatal(*quiet, "failed to load config: %v", err)
	}
	if *tsigSpec != "" {
		keyName, rest, _ := strings.Cut(*tsigSpec, ":")
		alg, secret, ok := strings.Cut(rest, ":")
		if !ok {
			fatal(*quiet, "-tsig must be name:algorithm:secret")
		}
		cfg.Resolver.TSIG = config.TSIGConfig{KeyName: keyName, Algorithm: alg, Secret: secret}
	}

	level := cfg.Logging.Level
	if cfg.Resolver.Debug {
		level = "DEBUG"
	}
	logger := logging.Configure(logging.Config{
		Level:            level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: cfg.Logging.StructuredFormat,
		Output:           os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r, err := resolver.FromConfig(cfg.Resolver, resolver.WithLogger(logger))
	if err != nil {
		fatal(*quiet, "%v", err)
	}
	defer r.Close()

	if *servers != "" {
		list, err := r.SetNameservers(ctx, strings.Split(*servers, ",")...)
		if err != nil {
			logger.Warn("some nameservers could not be resolved", "err", err)
		}
		logger.Debug("nameservers", "list", list)
	}

	out := io.Writer(os.Stdout)
	if *quiet {
		out = io.Discard
	}
	if *state {
		fmt.Fprint(out, r.String())
	}

	class := dns.ParseRecordClass(*qclass)
	if class == dns.ClassUnknown {
		fatal(*quiet, "unknown class %q", *qclass)
	}

	switch {
	case *mx:
		err = printMX(ctx, out, r, name, *platform, logger)
	case *axfr:
		err = printAXFR(ctx, out, r, name, class)
	case *axfrOld:
		var resp dns.Packet
		if resp, err = r.AXFROld(ctx, name, class); err == nil {
			printZone(out, resp.Answers)
		}
	default:
		t := dns.ParseRecordType(*qtype)
		if t == dns.TypeUnknown {
			fatal(*quiet, "unknown type %q", *qtype)
		}
		var resp dns.Packet
		if *search {
			resp, err = r.Search(ctx, name, t, class)
		} else {
			resp, err = r.Query(ctx, name, t, class)
		}
		if err == nil || (errors.Is(err, resolver.ErrNoAnswer) && len(resp.Questions) > 0) {
			fmt.Fprint(out, resp.String())
			fmt.Fprintf(out, ";; Received %d bytes from %s\n", resp.AnswerSize, resp.AnswerFrom)
		}
	}
	if err != nil {
		fatal(*quiet, "%v", err)
	}
}

func printAXFR(ctx context.Context, out io.Writer, r *resolver.Resolver, zone string, class dns.RecordClass) error {
	z, err := r.StartZoneTransfer(ctx, zone, class)
	if err != nil {
		return err
	}
	defer z.Close()

	fmt.Fprintf(out, ";; zone transfer of %s from %s\n", zone, z.Server())
	for {
		rr, err := z.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		printZone(out, []dns.Record{rr})
	}
}

func printZone(out io.Writer, records []dns.Record) {
	for _, rr := range records {
		if soa, ok := rr.(*dns.SOARecord); ok {
			h := soa.Header()
			fmt.Fprintf(out, "%s.\t%d\t%s\tSOA\t%s\n", h.Name, h.TTL, h.Class, soa.PrettyRDataString())
			continue
		}
		fmt.Fprintln(out, rr.String())
	}
}

func printMX(ctx context.Context, out io.Writer, r *resolver.Resolver, domain string, platform bool, logger *slog.Logger) error {
	opts := []mxlookup.Option{mxlookup.WithLogger(logger)}
	if platform {
		opts = append(opts, mxlookup.WithPlatform(nil))
	}
	res, err := mxlookup.New(r, opts...).Lookup(ctx, domain)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, ";; mail exchangers for %s (%s)\n", res.Domain, res.Source)
	for _, h := range res.Hosts {
		fmt.Fprintf(out, "%d\t%s\n", h.Preference, h.Host)
	}
	return nil
}

func fatal(quiet bool, format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stderr, "dnsquery: "+format+"\n", args...)
	}
	os.Exit(1)
}
