package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/services"
)

type GoldenRecordHandler struct {
	log    *logger.Logger
	status services.StatusService
}

func NewGoldenRecordHandler(baseLog *logger.Logger, status services.StatusService) *GoldenRecordHandler {
	return &GoldenRecordHandler{
		log:    baseLog.With("handler", "GoldenRecordHandler"),
		status: status,
	}
}

func (h *GoldenRecordHandler) Latest(c *gin.Context) {
	record, err := h.status.LatestGoldenRecord(c.Request.Context(), c.Param("application_id"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return
	}
	if record == nil {
		RespondError(c, http.StatusNotFound, "not_found", nil)
		return
	}
	RespondOK(c, record)
}

func (h *GoldenRecordHandler) Versions(c *gin.Context) {
	records, err := h.status.GoldenRecordVersions(c.Request.Context(), c.Param("application_id"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, records)
}
