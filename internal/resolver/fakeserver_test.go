package resolver

import (
	"net"
	"net/netip"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jroosing/mailprobe/internal/config"
	"github.com/jroosing/mailprobe/internal/dns"
	"github.com/jroosing/mailprobe/internal/logging"
)

// closeConn in a TCP handler reply list makes the server drop the
// connection at that point.
var closeConn []byte

// handler answers one query. Each returned message is sent as its own
// datagram (UDP) or frame (TCP).
type handler func(raw []byte, q dns.Packet) [][]byte

// fakeServer is a loopback nameserver listening on UDP and TCP at the same
// address.
type fakeServer struct {
	ip   string
	port int
	udp  net.PacketConn
	tcp  net.Listener

	mu         sync.Mutex
	udpHandler handler
	tcpHandler handler
	questions  []dns.Question
	flags      []uint16

	udpQueries atomic.Int32
	tcpQueries atomic.Int32
	accepted   atomic.Int32
}

// startServer listens on ip. A zero port picks a free one.
func startServer(t *testing.T, ip string, port int) *fakeServer {
	t.Helper()
	for range 20 {
		s, err := listen(ip, port)
		if err == nil {
			t.Cleanup(s.close)
			go s.serveUDP()
			go s.serveTCP()
			return s
		}
		if port != 0 {
			t.Skipf("cannot listen on %s:%d: %v", ip, port, err)
		}
	}
	t.Fatalf("no free port on %s", ip)
	return nil
}

func listen(ip string, port int) (*fakeServer, error) {
	pc, err := net.ListenPacket("udp4", net.JoinHostPort(ip, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	port = pc.LocalAddr().(*net.UDPAddr).Port
	ln, err := net.Listen("tcp4", net.JoinHostPort(ip, strconv.Itoa(port)))
	if err != nil {
		_ = pc.Close()
		return nil, err
	}
	return &fakeServer{ip: ip, port: port, udp: pc, tcp: ln}, nil
}

func (s *fakeServer) close() {
	_ = s.udp.Close()
	_ = s.tcp.Close()
}

func (s *fakeServer) onUDP(h handler) {
	s.mu.Lock()
	s.udpHandler = h
	s.mu.Unlock()
}

func (s *fakeServer) onTCP(h handler) {
	s.mu.Lock()
	s.tcpHandler = h
	s.mu.Unlock()
}

func (s *fakeServer) seen() []dns.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dns.Question(nil), s.questions...)
}

func (s *fakeServer) seenFlags() []uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint16(nil), s.flags...)
}

func (s *fakeServer) handle(raw []byte, udp bool) [][]byte {
	q, err := dns.ParsePacket(raw)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	s.questions = append(s.questions, q.Questions...)
	s.flags = append(s.flags, q.Header.Flags)
	h := s.tcpHandler
	if udp {
		h = s.udpHandler
	}
	s.mu.Unlock()
	if h == nil {
		return nil
	}
	return h(raw, q)
}

func (s *fakeServer) serveUDP() {
	buf := make([]byte, 65535)
	for {
		n, addr, err := s.udp.ReadFrom(buf)
		if err != nil {
			return
		}
		s.udpQueries.Add(1)
		for _, msg := range s.handle(append([]byte(nil), buf[:n]...), true) {
			_, _ = s.udp.WriteTo(msg, addr)
		}
	}
}

func (s *fakeServer) serveTCP() {
	for {
		c, err := s.tcp.Accept()
		if err != nil {
			return
		}
		s.accepted.Add(1)
		go s.serveConn(c)
	}
}

func (s *fakeServer) serveConn(c net.Conn) {
	defer c.Close()
	for {
		raw, err := readMsg(c)
		if err != nil {
			return
		}
		s.tcpQueries.Add(1)
		for _, msg := range s.handle(raw, false) {
			if msg == nil {
				return
			}
			if _, err := c.Write(msg); err != nil {
				return
			}
		}
	}
}

type framedBuffer struct{ b []byte }

func (f *framedBuffer) Write(p []byte) (int, error) {
	f.b = append(f.b, p...)
	return len(p), nil
}

func mustMarshal(t *testing.T, p dns.Packet) []byte {
	t.Helper()
	b, err := p.Marshal()
	require.NoError(t, err)
	return b
}

func aRecord(name, addr string) dns.Record {
	return dns.NewIPRecord(dns.NewRRHeader(name, dns.ClassIN, 300), netip.MustParseAddr(addr))
}

func soaRecord(zone string, serial uint32) dns.Record {
	return &dns.SOARecord{
		H:     dns.NewRRHeader(zone, dns.ClassIN, 3600),
		MName: "ns1." + zone, RName: "hostmaster." + zone,
		Serial: serial, Refresh: 7200, Retry: 900, Expire: 1209600, Minimum: 300,
	}
}

// answerA replies with one A record for every query.
func answerA(addr string) handler {
	return func(_ []byte, q dns.Packet) [][]byte {
		resp := dns.BuildResponse(q, aRecord(q.Questions[0].Name, addr))
		b, _ := resp.Marshal()
		return [][]byte{b}
	}
}

// framed wraps a UDP-style handler for TCP use.
func framed(h handler) handler {
	return func(raw []byte, q dns.Packet) [][]byte {
		var out [][]byte
		for _, m := range h(raw, q) {
			var buf framedBuffer
			if err := writeMsg(&buf, m); err != nil {
				return nil
			}
			out = append(out, buf.b)
		}
		return out
	}
}

func testConfig(port int, servers ...string) config.ResolverConfig {
	cfg := config.DefaultResolverConfig()
	cfg.Nameservers = servers
	cfg.Port = port
	cfg.Retry = 1
	cfg.Retrans = 200 * time.Millisecond
	cfg.TCPTimeout = 2 * time.Second
	return cfg
}

func newTestResolver(cfg config.ResolverConfig, opts ...Option) *Resolver {
	r := New(cfg, append([]Option{WithLogger(logging.Discard())}, opts...)...)
	r.minWait = 20 * time.Millisecond
	return r
}
