package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/services"
)

type ApplicationHandler struct {
	log    *logger.Logger
	apps   services.ApplicationService
	status services.StatusService
}

func NewApplicationHandler(baseLog *logger.Logger, apps services.ApplicationService, status services.StatusService) *ApplicationHandler {
	return &ApplicationHandler{
		log:    baseLog.With("handler", "ApplicationHandler"),
		apps:   apps,
		status: status,
	}
}

// Intake accepts the application form plus its initial document batch.
func (h *ApplicationHandler) Intake(c *gin.Context) {
	var req services.IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	app, err := h.apps.Intake(c.Request.Context(), req)
	if err != nil {
		RespondError(c, http.StatusUnprocessableEntity, "intake_failed", err)
		return
	}
	RespondCreated(c, app)
}

func (h *ApplicationHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	apps, err := h.apps.List(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, apps)
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.apps.Get(c.Request.Context(), c.Param("application_id"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return
	}
	if app == nil {
		RespondError(c, http.StatusNotFound, "not_found", nil)
		return
	}
	RespondOK(c, app)
}

func (h *ApplicationHandler) Status(c *gin.Context) {
	st, err := h.status.ApplicationStatus(c.Request.Context(), c.Param("application_id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "status_failed", err)
		return
	}
	RespondOK(c, st)
}
