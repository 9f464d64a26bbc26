package collection

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mrspaquetes/paqueteria-api/internal/platform/httpx"
)

// Handler manages collection route endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the collection routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/rutas-recolecciones", func(r chi.Router) {
		r.Get("/", h.listRoutes)
		r.Post("/", h.createRoute)
		r.Get("/{id}", h.showRoute)
		r.Post("/{id}/asignar", h.assign)
		r.Post("/{id}/finalizar", h.finalizeRoute)
		r.Put("/{id}/ordenes/{aid}", h.updatePriority)
	})
	r.Post("/orden-recoleccion", h.createCollectionOrder)
}

func (h *Handler) listRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.service.ListRoutes(r.Context())
	if err != nil {
		h.logger.Error("list routes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, routes)
}

func (h *Handler) showRoute(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	route, err := h.service.GetRoute(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, route)
}

func (h *Handler) createRoute(w http.ResponseWriter, r *http.Request) {
	var req CreateRouteRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	route, err := h.service.CreateRoute(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, route)
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var req AssignRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	route, err := h.service.Assign(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, route)
}

func (h *Handler) finalizeRoute(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	route, err := h.service.FinalizeRoute(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, route)
}

func (h *Handler) updatePriority(w http.ResponseWriter, r *http.Request) {
	routeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	orderID, err := strconv.ParseInt(chi.URLParam(r, "aid"), 10, 64)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var req UpdatePriorityRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	route, err := h.service.UpdatePriority(r.Context(), routeID, orderID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, route)
}

func (h *Handler) createCollectionOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateCollectionOrderRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	order, err := h.service.CreateCollectionOrder(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		fields := httpx.FieldErrors{}
		for _, fieldErr := range err.(validator.ValidationErrors) {
			fields.Add(fieldErr.Field(), "El campo es requerido o inválido")
		}
		httpx.RespondError(w, fields)
		return false
	}
	return true
}
