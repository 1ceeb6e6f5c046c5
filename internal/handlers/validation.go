package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/services"
)

type ValidationHandler struct {
	log    *logger.Logger
	status services.StatusService
}

func NewValidationHandler(baseLog *logger.Logger, status services.StatusService) *ValidationHandler {
	return &ValidationHandler{
		log:    baseLog.With("handler", "ValidationHandler"),
		status: status,
	}
}

func (h *ValidationHandler) Results(c *gin.Context) {
	results, err := h.status.ValidationResults(c.Request.Context(), c.Param("application_id"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "results_failed", err)
		return
	}
	RespondOK(c, results)
}
