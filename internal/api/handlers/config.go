package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jroosing/mailprobe/internal/api/models"
)

// GetConfig godoc
// @Summary Get current configuration
// @Description Returns the current configuration (API key and TSIG secret redacted)
// @Tags config
// @Produce json
// @Success 200 {object} models.ConfigResponse
// @Failure 500 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /config [get]
func (h *Handler) GetConfig(c *gin.Context) {
	if h.cfg == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "config unavailable"})
		return
	}

	rc := h.cfg.Resolver
	resp := models.ConfigResponse{
		Resolver: models.ResolverConfigResponse{
			Nameservers: rc.Nameservers,
			Port:        rc.Port,
			Domain:      rc.Domain,
			SearchList:  rc.SearchList,
			Retrans:     rc.Retrans.String(),
			Retry:       rc.Retry,
			UseVC:       rc.UseVC,
			IgnoreTC:    rc.IgnoreTC,
			Recurse:     rc.Recurse,
			DefNames:    rc.DefNames,
			DNSSearch:   rc.DNSSearch,
			TCPTimeout:  rc.TCPTimeout.String(),
			TSIGKeyName: rc.TSIG.KeyName,
		},
		Logging: h.cfg.Logging,
		API: models.APIConfigResponse{
			Enabled: h.cfg.API.Enabled,
			Host:    h.cfg.API.Host,
			Port:    h.cfg.API.Port,
		},
		Database: h.cfg.Database,
		MX:       h.cfg.MX,
	}

	c.JSON(http.StatusOK, resp)
}
