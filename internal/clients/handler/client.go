package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"tunestudio/internal/clients/service"
	httputil "tunestudio/pkg/http"
	"tunestudio/pkg/logger"
	"tunestudio/pkg/model"
)

type ClientHandler struct {
	service service.ClientService
	log     *logger.Logger
}

func NewClientHandler(service service.ClientService, log *logger.Logger) *ClientHandler {
	return &ClientHandler{
		service: service,
		log:     log,
	}
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var c model.Client
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		h.badRequest(w, "Create", "Invalid request body")
		return
	}

	if err := h.service.Create(r.Context(), &c); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, c); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ClientHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		h.badRequest(w, "GetByID", "ID parameter is required")
		return
	}

	c, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, c); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ClientHandler) GetByPhone(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	raw := strings.TrimSpace(ps.ByName("phone"))
	if raw == "" {
		h.badRequest(w, "GetByPhone", "Phone parameter is required")
		return
	}

	c, err := h.service.GetByPhone(r.Context(), raw)
	if err != nil {
		h.writeError(w, "GetByPhone", err)
		return
	}

	if err := httputil.WriteSuccess(w, c); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByPhone", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ClientHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	clients, totalCount, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, clients, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		h.badRequest(w, "Update", "ID parameter is required")
		return
	}

	var updates model.ClientUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.badRequest(w, "Update", "Invalid request body")
		return
	}

	updated, err := h.service.Update(r.Context(), id, &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

func (h *ClientHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		h.badRequest(w, "Search", "'q' query parameter is required")
		return
	}

	results, err := h.service.Search(r.Context(), q)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WriteSuccess(w, results); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ClientHandler) badRequest(w http.ResponseWriter, handler, msg string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: msg,
	}); err != nil {
		h.log.Error("failed to write bad request response", "handler", handler, "operation", "WriteJSON", "error", err)
	}
}

func (h *ClientHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ClientHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/clients", h.Create)
	router.GET("/api/v1/clients", h.GetAll)
	router.GET("/api/v1/clients/search", h.Search)
	router.GET("/api/v1/clients/id/:id", h.GetByID)
	router.GET("/api/v1/clients/phone/:phone", h.GetByPhone)
	router.PATCH("/api/v1/clients/id/:id", h.Update)
	router.DELETE("/api/v1/clients/id/:id", h.Delete)
}
