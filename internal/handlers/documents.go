package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/services"
)

type DocumentHandler struct {
	log    *logger.Logger
	docs   services.DocumentService
	status services.StatusService
}

func NewDocumentHandler(baseLog *logger.Logger, docs services.DocumentService, status services.StatusService) *DocumentHandler {
	return &DocumentHandler{
		log:    baseLog.With("handler", "DocumentHandler"),
		docs:   docs,
		status: status,
	}
}

// Register attaches a late-arriving document to an existing application.
func (h *DocumentHandler) Register(c *gin.Context) {
	var req services.IntakeDocument
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	doc, err := h.docs.Register(c.Request.Context(), c.Param("application_id"), req)
	if err != nil {
		RespondError(c, http.StatusUnprocessableEntity, "register_failed", err)
		return
	}
	RespondCreated(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.docs.ListByApplication(c.Request.Context(), c.Param("application_id"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("document_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_document_id", err)
		return
	}
	doc, err := h.docs.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return
	}
	if doc == nil {
		RespondError(c, http.StatusNotFound, "not_found", nil)
		return
	}
	RespondOK(c, doc)
}

func (h *DocumentHandler) Logs(c *gin.Context) {
	id, err := uuid.Parse(c.Param("document_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_document_id", err)
		return
	}
	logs, err := h.status.DocumentLogs(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "logs_failed", err)
		return
	}
	RespondOK(c, logs)
}
