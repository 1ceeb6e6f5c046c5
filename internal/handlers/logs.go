package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/services"
)

type LogHandler struct {
	log    *logger.Logger
	status services.StatusService
}

func NewLogHandler(baseLog *logger.Logger, status services.StatusService) *LogHandler {
	return &LogHandler{
		log:    baseLog.With("handler", "LogHandler"),
		status: status,
	}
}

// ByApplication returns the audit trail, optionally filtered by ?stage=.
func (h *LogHandler) ByApplication(c *gin.Context) {
	logs, err := h.status.Logs(c.Request.Context(), c.Param("application_id"), c.Query("stage"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "logs_failed", err)
		return
	}
	RespondOK(c, logs)
}
