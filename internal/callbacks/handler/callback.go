package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"tunestudio/internal/callbacks/service"
	httputil "tunestudio/pkg/http"
	"tunestudio/pkg/logger"
	"tunestudio/pkg/model"
)

const CreatePath = "/api/v1/callbacks"

type CallbackHandler struct {
	service service.CallbackService
	log     *logger.Logger
}

func NewCallbackHandler(service service.CallbackService, log *logger.Logger) *CallbackHandler {
	return &CallbackHandler{
		service: service,
		log:     log,
	}
}

func (h *CallbackHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var cb model.CallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		h.badRequest(w, "Create", "Invalid request body")
		return
	}

	if err := h.service.Create(r.Context(), &cb); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, cb); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *CallbackHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}
	status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))

	results, totalCount, err := h.service.GetAll(r.Context(), status, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, results, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *CallbackHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		h.badRequest(w, "GetByID", "ID parameter is required")
		return
	}

	cb, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, cb); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CallbackHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		h.badRequest(w, "UpdateStatus", "ID parameter is required")
		return
	}

	var update model.CallbackStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.badRequest(w, "UpdateStatus", "Invalid request body")
		return
	}
	update.Status = strings.ToLower(strings.TrimSpace(update.Status))

	cb, err := h.service.UpdateStatus(r.Context(), id, &update)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, cb); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CallbackHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		h.badRequest(w, "Delete", "ID parameter is required")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CallbackHandler) badRequest(w http.ResponseWriter, handler, msg string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: msg,
	}); err != nil {
		h.log.Error("failed to write bad request response", "handler", handler, "operation", "WriteJSON", "error", err)
	}
}

func (h *CallbackHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *CallbackHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST(CreatePath, h.Create)
	router.GET("/api/v1/callbacks", h.GetAll)
	router.GET("/api/v1/callbacks/id/:id", h.GetByID)
	router.PATCH("/api/v1/callbacks/id/:id/status", h.UpdateStatus)
	router.DELETE("/api/v1/callbacks/id/:id", h.Delete)
}
