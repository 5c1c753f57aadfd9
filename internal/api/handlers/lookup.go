package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jroosing/mailprobe/internal/api/models"
	"github.com/jroosing/mailprobe/internal/dns"
	"github.com/jroosing/mailprobe/internal/mxlookup"
)

// Lookup godoc
// @Summary Query a name
// @Description Sends one query to the configured nameservers. With search=true the search list is applied.
// @Tags lookup
// @Produce json
// @Param name path string true "Domain name or dotted-quad address"
// @Param type query string false "Record type (default A)"
// @Param class query string false "Record class (default IN)"
// @Param search query bool false "Apply the search list"
// @Success 200 {object} models.LookupResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Failure 504 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /lookup/{name} [get]
func (h *Handler) Lookup(c *gin.Context) {
	name := c.Param("name")

	qtype := dns.TypeA
	if s := c.Query("type"); s != "" {
		qtype = dns.ParseRecordType(s)
		if qtype == dns.TypeUnknown || qtype == dns.TypeAXFR {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("unsupported query type %q", s)})
			return
		}
	}
	qclass := dns.ClassIN
	if s := c.Query("class"); s != "" {
		qclass = dns.ParseRecordClass(s)
		if qclass == dns.ClassUnknown {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("unsupported class %q", s)})
			return
		}
	}
	search, err := strconv.ParseBool(c.DefaultQuery("search", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "search must be a boolean"})
		return
	}

	r, err := h.openResolver()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	defer r.Close()

	ctx := c.Request.Context()
	var resp dns.Packet
	if search {
		resp, err = r.Search(ctx, name, qtype, qclass)
	} else {
		resp, err = r.Query(ctx, name, qtype, qclass)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, models.LookupResponse{
		Name:        name,
		Type:        qtype.String(),
		Class:       qclass.String(),
		Server:      resp.AnswerFrom,
		RCode:       resp.Header.RCode().String(),
		Truncated:   resp.Header.Truncated(),
		Answers:     recordResponses(resp.Answers),
		Authorities: recordResponses(resp.Authorities),
		Additionals: recordResponses(resp.Additionals),
	})
}

// MX godoc
// @Summary Mail exchangers of a domain
// @Description Looks up MX records, asking the platform resolver first when enabled
// @Tags lookup
// @Produce json
// @Param domain path string true "Domain"
// @Success 200 {object} models.MXResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /mx/{domain} [get]
func (h *Handler) MX(c *gin.Context) {
	r, err := h.openResolver()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	defer r.Close()

	opts := []mxlookup.Option{mxlookup.WithLogger(h.logger)}
	h.mu.RLock()
	if h.platformMX != nil {
		opts = append(opts, mxlookup.WithPlatform(h.platformMX))
	}
	h.mu.RUnlock()

	res, err := mxlookup.New(r, opts...).Lookup(c.Request.Context(), c.Param("domain"))
	if err != nil {
		h.fail(c, err)
		return
	}

	hosts := make([]models.MXHost, 0, len(res.Hosts))
	for _, mx := range res.Hosts {
		hosts = append(hosts, models.MXHost{Host: mx.Host, Preference: mx.Preference})
	}
	c.JSON(http.StatusOK, models.MXResponse{Domain: res.Domain, Source: string(res.Source), Hosts: hosts})
}
