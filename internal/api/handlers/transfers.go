package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jroosing/mailprobe/internal/api/models"
	"github.com/jroosing/mailprobe/internal/database"
	"github.com/jroosing/mailprobe/internal/dns"
	"github.com/jroosing/mailprobe/internal/resolver"
)

const defaultTransferLimit = 50

// StartTransfer godoc
// @Summary Transfer a zone
// @Description Runs an AXFR against the configured nameservers and archives the outcome. Failed transfers that reached a server are archived with the records received.
// @Tags transfers
// @Accept json
// @Produce json
// @Param zone path string true "Zone name"
// @Param request body models.TransferRequest false "Transfer options"
// @Success 201 {object} models.TransferDetailResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.TransferDetailResponse
// @Security ApiKeyAuth
// @Router /zones/{zone}/transfer [post]
func (h *Handler) StartTransfer(c *gin.Context) {
	zone := c.Param("zone")

	var req models.TransferRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
			return
		}
	}
	class := dns.ClassIN
	if req.Class != "" {
		class = dns.ParseRecordClass(req.Class)
		if class == dns.ClassUnknown {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("unsupported class %q", req.Class)})
			return
		}
	}

	r, err := h.openResolver()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	defer r.Close()

	ctx := c.Request.Context()
	started := time.Now()
	records, axfrErr := r.AXFR(ctx, zone, class)
	if axfrErr != nil && !errors.Is(axfrErr, resolver.ErrZoneTransfer) {
		// Nothing reached a server.
		h.fail(c, axfrErr)
		return
	}

	t := database.NewTransfer(zone, class, r.AnswerFrom(), started, records, axfrErr)
	if h.db != nil {
		id, err := h.db.SaveTransfer(ctx, t)
		if err != nil {
			h.logger.Error("failed to archive transfer", "zone", t.Zone, "err", err)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to archive transfer"})
			return
		}
		t.ID = id
	}

	status := http.StatusCreated
	if axfrErr != nil {
		h.logger.Warn("zone transfer failed", "zone", t.Zone, "server", t.Server, "records", t.RecordCount, "err", axfrErr)
		status = http.StatusBadGateway
	} else {
		h.logger.Info("zone transferred", "zone", t.Zone, "server", t.Server, "records", t.RecordCount, "serial", t.Serial)
	}
	c.JSON(status, transferDetail(t))
}

// ListTransfers godoc
// @Summary List archived transfers
// @Description Newest first, without records
// @Tags transfers
// @Produce json
// @Param zone query string false "Only this zone"
// @Param limit query int false "Maximum entries (default 50, 0 for all)"
// @Success 200 {object} models.TransferListResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /transfers [get]
func (h *Handler) ListTransfers(c *gin.Context) {
	if !h.requireDB(c) {
		return
	}
	limit := defaultTransferLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	transfers, err := h.db.ListTransfers(c.Request.Context(), c.Query("zone"), limit)
	if err != nil {
		h.logger.Error("failed to list transfers", "err", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list transfers"})
		return
	}

	summaries := make([]models.TransferSummary, 0, len(transfers))
	for _, t := range transfers {
		summaries = append(summaries, transferSummary(t))
	}
	c.JSON(http.StatusOK, models.TransferListResponse{Transfers: summaries, Count: len(summaries)})
}

// GetTransfer godoc
// @Summary Get an archived transfer
// @Tags transfers
// @Produce json
// @Param id path int true "Transfer id"
// @Success 200 {object} models.TransferDetailResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /transfers/{id} [get]
func (h *Handler) GetTransfer(c *gin.Context) {
	id, ok := h.transferID(c)
	if !ok {
		return
	}
	t, err := h.db.GetTransfer(c.Request.Context(), id)
	if err != nil {
		h.dbFail(c, err)
		return
	}
	c.JSON(http.StatusOK, transferDetail(t))
}

// DeleteTransfer godoc
// @Summary Delete an archived transfer
// @Tags transfers
// @Param id path int true "Transfer id"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /transfers/{id} [delete]
func (h *Handler) DeleteTransfer(c *gin.Context) {
	id, ok := h.transferID(c)
	if !ok {
		return
	}
	if err := h.db.DeleteTransfer(c.Request.Context(), id); err != nil {
		h.dbFail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) requireDB(c *gin.Context) bool {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "transfer archive disabled"})
		return false
	}
	return true
}

func (h *Handler) transferID(c *gin.Context) (int64, bool) {
	if !h.requireDB(c) {
		return 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid transfer id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) dbFail(c *gin.Context, err error) {
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "transfer not found"})
		return
	}
	h.logger.Error("transfer archive error", "err", err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "transfer archive error"})
}

func transferSummary(t database.Transfer) models.TransferSummary {
	return models.TransferSummary{
		ID:          t.ID,
		Zone:        t.Zone,
		Class:       t.Class,
		Server:      t.Server,
		StartedAt:   t.StartedAt,
		FinishedAt:  t.FinishedAt,
		Serial:      t.Serial,
		RecordCount: t.RecordCount,
		Complete:    t.Complete,
		Error:       t.Error,
	}
}

func transferDetail(t database.Transfer) models.TransferDetailResponse {
	records := make([]models.RecordResponse, 0, len(t.Records))
	for _, r := range t.Records {
		records = append(records, models.RecordResponse{Name: r.Name, TTL: r.TTL, Class: r.Class, Type: r.Type, Data: r.RData})
	}
	return models.TransferDetailResponse{TransferSummary: transferSummary(t), Records: records}
}
