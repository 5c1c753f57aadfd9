package dns_test

import (
	"bytes"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/dns/dnsmessage"

	"github.com/jroosing/mailprobe/internal/dns"
)

func mxResponse(t *testing.T) dns.Packet {
	t.Helper()
	q := dns.NewQuery(0xBEEF, dns.Question{Name: "example.com", Type: dns.TypeMX, Class: dns.ClassIN})
	h := dns.NewRRHeader("example.com", dns.ClassIN, 300)
	resp := dns.BuildResponse(q,
		dns.NewMXRecord(h, 10, "mail.example.com"),
		dns.NewMXRecord(h, 20, "backup.example.com"),
	)
	resp.Authorities = []dns.Record{dns.NewNSRecord(h, "ns1.example.com")}
	resp.Additionals = []dns.Record{
		dns.NewIPRecord(dns.NewRRHeader("mail.example.com", dns.ClassIN, 300), netip.MustParseAddr("192.0.2.25")),
	}
	return resp
}

func TestPacket_MarshalAndParse(t *testing.T) {
	resp := mxResponse(t)
	b, err := resp.Marshal()
	require.NoError(t, err)

	got, err := dns.ParsePacket(b)
	require.NoError(t, err)

	assert.Equal(t, resp.Questions, got.Questions)
	assert.Equal(t, resp.Answers, got.Answers)
	assert.Equal(t, resp.Authorities, got.Authorities)
	assert.Equal(t, resp.Additionals, got.Additionals)
	assert.Equal(t, uint16(2), got.Header.ANCount)
	assert.Equal(t, uint16(1), got.Header.NSCount)
	assert.Equal(t, uint16(1), got.Header.ARCount)
	assert.True(t, got.Header.IsResponse())
}

func TestPacket_CompressesRepeatedNames(t *testing.T) {
	resp := mxResponse(t)
	b, err := resp.Marshal()
	require.NoError(t, err)

	// "example.com" is written literally once; every later use is a pointer.
	assert.Equal(t, 1, bytes.Count(b, []byte("\x07example\x03com\x00")))
	assert.Equal(t, 1, bytes.Count(b, []byte("\x04mail")))
}

func TestPacket_CrossCheckWithDNSMessage(t *testing.T) {
	resp := mxResponse(t)
	b, err := resp.Marshal()
	require.NoError(t, err)

	var p dnsmessage.Parser
	h, err := p.Start(b)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), h.ID)
	assert.True(t, h.Response)
	assert.True(t, h.RecursionDesired)

	q, err := p.Question()
	require.NoError(t, err)
	assert.Equal(t, "example.com.", q.Name.String())
	assert.Equal(t, dnsmessage.TypeMX, q.Type)
	require.NoError(t, p.SkipAllQuestions())

	answers, err := p.AllAnswers()
	require.NoError(t, err)
	require.Len(t, answers, 2)
	mx, ok := answers[0].Body.(*dnsmessage.MXResource)
	require.True(t, ok)
	assert.Equal(t, uint16(10), mx.Pref)
	assert.Equal(t, "mail.example.com.", mx.MX.String())

	auths, err := p.AllAuthorities()
	require.NoError(t, err)
	require.Len(t, auths, 1)
	ns, ok := auths[0].Body.(*dnsmessage.NSResource)
	require.True(t, ok)
	assert.Equal(t, "ns1.example.com.", ns.NS.String())

	adds, err := p.AllAdditionals()
	require.NoError(t, err)
	require.Len(t, adds, 1)
	a, ok := adds[0].Body.(*dnsmessage.AResource)
	require.True(t, ok)
	assert.Equal(t, [4]byte{192, 0, 2, 25}, a.A)
}

func TestParsePacket_FromDNSMessageBuilder(t *testing.T) {
	name := dnsmessage.MustNewName("Example.ORG.")
	b := dnsmessage.NewBuilder(nil, dnsmessage.Header{ID: 7, Response: true, Authoritative: true})
	b.EnableCompression()
	require.NoError(t, b.StartQuestions())
	require.NoError(t, b.Question(dnsmessage.Question{Name: name, Type: dnsmessage.TypeSOA, Class: dnsmessage.ClassINET}))
	require.NoError(t, b.StartAnswers())
	require.NoError(t, b.SOAResource(
		dnsmessage.ResourceHeader{Name: name, Class: dnsmessage.ClassINET, TTL: 60},
		dnsmessage.SOAResource{
			NS:      dnsmessage.MustNewName("ns.example.org."),
			MBox:    dnsmessage.MustNewName("admin.example.org."),
			Serial:  2024010101,
			Refresh: 7200, Retry: 600, Expire: 86400, MinTTL: 300,
		}))
	require.NoError(t, b.TXTResource(
		dnsmessage.ResourceHeader{Name: name, Class: dnsmessage.ClassINET, TTL: 60},
		dnsmessage.TXTResource{TXT: []string{"one", "two"}}))
	msg, err := b.Finish()
	require.NoError(t, err)

	got, err := dns.ParsePacket(msg)
	require.NoError(t, err)
	assert.True(t, got.Header.Authoritative())
	require.Len(t, got.Answers, 2)

	soa, ok := got.Answers[0].(*dns.SOARecord)
	require.True(t, ok)
	assert.Equal(t, "Example.ORG", soa.Header().Name)
	assert.Equal(t, "ns.example.org", soa.MName)
	assert.Equal(t, "admin.example.org", soa.RName)
	assert.Equal(t, uint32(2024010101), soa.Serial)
	assert.Equal(t, uint32(300), soa.Minimum)

	txt, ok := got.Answers[1].(*dns.TXTRecord)
	require.True(t, ok)
	assert.Equal(t, []string{"one", "two"}, txt.Text)
}

func TestParsePacket_Rejects(t *testing.T) {
	resp := mxResponse(t)
	good, err := resp.Marshal()
	require.NoError(t, err)

	t.Run("short header", func(t *testing.T) {
		_, err := dns.ParsePacket(good[:11])
		require.ErrorIs(t, err, dns.ErrFormat)
	})
	t.Run("trailing bytes", func(t *testing.T) {
		_, err := dns.ParsePacket(append(append([]byte(nil), good...), 0))
		require.ErrorIs(t, err, dns.ErrFormat)
	})
	t.Run("count larger than content", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		bad[7]++ // ANCount
		_, err := dns.ParsePacket(bad)
		require.ErrorIs(t, err, dns.ErrFormat)
	})
	t.Run("count smaller than content", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		bad[11]-- // ARCount
		_, err := dns.ParsePacket(bad)
		require.ErrorIs(t, err, dns.ErrFormat)
	})
}

func TestPacketString(t *testing.T) {
	resp := mxResponse(t)
	resp.AnswerFrom = "192.0.2.53"
	resp.AnswerSize = 120
	s := resp.String()
	assert.Contains(t, s, ";; Answer received from 192.0.2.53 (120 bytes)")
	assert.Contains(t, s, ";; QUESTION SECTION (1 record)")
	assert.Contains(t, s, ";; ANSWER SECTION (2 records)")
	assert.Contains(t, s, "example.com.\t\t300\tIN\tMX\t10 mail.example.com.")
	assert.Contains(t, s, ";; ADDITIONAL SECTION (1 record)")
}

func TestNewQuestion(t *testing.T) {
	q := dns.NewQuestion("example.com.", "MX", "IN")
	assert.Equal(t, dns.Question{Name: "example.com", Type: dns.TypeMX, Class: dns.ClassIN}, q)

	swapped := dns.NewQuestion("example.com", "IN", "MX")
	assert.Equal(t, q, swapped)

	anyQ := dns.NewQuestion("example.com", "", "")
	assert.Equal(t, dns.TypeANY, anyQ.Type)
	assert.Equal(t, dns.ClassANY, anyQ.Class)

	unknown := dns.NewQuestion("example.com", "BOGUS", "IN")
	assert.Equal(t, dns.TypeUnknown, unknown.Type)

	assert.Equal(t, "example.com.\tIN\tMX", q.String())
}

func TestQuestion_MarshalParse(t *testing.T) {
	q := dns.Question{Name: "www.Example.com", Type: dns.TypeAAAA, Class: dns.ClassIN}
	b, err := q.Marshal()
	require.NoError(t, err)
	assert.Equal(t, append([]byte("\x03www\x07Example\x03com\x00"), 0, 28, 0, 1), b)

	off := 0
	got, err := dns.ParseQuestion(b, &off)
	require.NoError(t, err)
	assert.Equal(t, q, got)

	off = 0
	_, err = dns.ParseQuestion(b[:len(b)-1], &off)
	require.ErrorIs(t, err, dns.ErrFormat)
	assert.Equal(t, 0, off, "offset is untouched on failure")
}
