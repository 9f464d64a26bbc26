package incidents

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mrspaquetes/paqueteria-api/internal/platform/httpx"
	"github.com/mrspaquetes/paqueteria-api/internal/shared"
)

// Handler manages incident endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers incident routes under /incidencias.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/incidencias", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.show)
		r.Put("/{id}", h.update)
	})
}

type listResponse struct {
	Data       []Incidencia      `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	packageID, _ := strconv.ParseInt(q.Get("id_paquete"), 10, 64)
	filters := ListFilters{
		Estado:    q.Get("estado"),
		IDPaquete: packageID,
		Page:      page,
		Limit:     limit,
	}

	incidents, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list incidents", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{
		Data:       incidents,
		Pagination: shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	incident, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, incident)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateIncidentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		fields := httpx.FieldErrors{}
		for _, fieldErr := range err.(validator.ValidationErrors) {
			fields.Add(fieldErr.Field(), "El campo es requerido o inválido")
		}
		httpx.RespondError(w, fields)
		return
	}
	incident, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, incident)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var req UpdateIncidentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	incident, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, incident)
}
