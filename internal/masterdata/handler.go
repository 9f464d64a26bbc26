package masterdata

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mrspaquetes/paqueteria-api/internal/platform/httpx"
	"github.com/mrspaquetes/paqueteria-api/internal/shared"
)

// Handler manages master data endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers master data routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/clientes", func(r chi.Router) {
		r.Get("/", h.listClients)
		r.Post("/", h.createClient)
		r.Get("/{id}", h.showClient)
		r.Put("/{id}", h.updateClient)
		r.Delete("/{id}", h.deleteClient)
		r.Get("/{id}/direcciones", h.listClientAddresses)
	})

	r.Route("/empleados", func(r chi.Router) {
		r.Get("/", h.listEmployees)
		r.Post("/", h.createEmployee)
		r.Get("/{id}", h.showEmployee)
		r.Put("/{id}", h.updateEmployee)
		r.Delete("/{id}", h.deleteEmployee)
	})

	r.Route("/direcciones", func(r chi.Router) {
		r.Post("/", h.createAddress)
		r.Get("/{id}", h.showAddress)
		r.Put("/{id}", h.updateAddress)
		r.Delete("/{id}", h.deleteAddress)
	})

	r.Route("/vehiculos", func(r chi.Router) {
		r.Get("/", h.listVehicles)
		r.Post("/", h.createVehicle)
	})

	r.Route("/dropdown", func(r chi.Router) {
		r.Get("/get_departamentos", h.dropdownDepartments)
		r.Get("/get_municipios", h.dropdownMunicipalities)
		r.Get("/get_vehiculos", h.dropdownVehicles)
		r.Get("/get_tipo_paquete", h.dropdownCatalog(CatalogTipoPaquete))
		r.Get("/get_empaques", h.dropdownCatalog(CatalogEmpaques))
		r.Get("/get_tipo_incidencia", h.dropdownCatalog(CatalogTipoIncidencia))
		r.Get("/get_tipo_pago", h.dropdownCatalog(CatalogTipoPago))
		r.Get("/get_tipo_documento", h.dropdownCatalog(CatalogTipoDocumento))
		r.Get("/get_estado_paquete", h.dropdownCatalog(CatalogEstadoPaquete))
	})
}

type listResponse[T any] struct {
	Data       []T               `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

func listFilters(r *http.Request) ListFilters {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return ListFilters{Page: page, Limit: limit, Search: r.URL.Query().Get("search")}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// ============================================================================
// CLIENT HANDLERS
// ============================================================================

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	filters := listFilters(r)
	clients, total, err := h.service.ListClients(r.Context(), filters)
	if err != nil {
		h.logger.Error("list clients", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse[Client]{
		Data:       clients,
		Pagination: shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) showClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	client, err := h.service.GetClient(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	client, err := h.service.CreateClient(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var req UpdateClientRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	client, err := h.service.UpdateClient(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	if err := h.service.DeleteClient(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Cliente eliminado"})
}

func (h *Handler) listClientAddresses(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	addresses, err := h.service.ListAddressesByClient(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, addresses)
}

// ============================================================================
// EMPLOYEE HANDLERS
// ============================================================================

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	filters := listFilters(r)
	employees, total, err := h.service.ListEmployees(r.Context(), filters)
	if err != nil {
		h.logger.Error("list employees", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse[Employee]{
		Data:       employees,
		Pagination: shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) showEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	employee, err := h.service.GetEmployee(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, employee)
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	employee, err := h.service.CreateEmployee(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, employee)
}

func (h *Handler) updateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var req UpdateEmployeeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	employee, err := h.service.UpdateEmployee(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, employee)
}

func (h *Handler) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	if err := h.service.DeleteEmployee(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Empleado eliminado"})
}

// ============================================================================
// ADDRESS HANDLERS
// ============================================================================

func (h *Handler) showAddress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	address, err := h.service.GetAddress(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, address)
}

func (h *Handler) createAddress(w http.ResponseWriter, r *http.Request) {
	var req CreateAddressRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	address, err := h.service.CreateAddress(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, address)
}

func (h *Handler) updateAddress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	var req UpdateAddressRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	address, err := h.service.UpdateAddress(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, address)
}

func (h *Handler) deleteAddress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "Identificador inválido")
		return
	}
	if err := h.service.DeleteAddress(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Dirección eliminada"})
}

// ============================================================================
// VEHICLE & DROPDOWN HANDLERS
// ============================================================================

func (h *Handler) listVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.service.ListVehicles(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, vehicles)
}

func (h *Handler) createVehicle(w http.ResponseWriter, r *http.Request) {
	var req CreateVehicleRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	vehicle, err := h.service.CreateVehicle(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, vehicle)
}

func (h *Handler) dropdownDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.service.ListDepartments(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, departments)
}

func (h *Handler) dropdownMunicipalities(w http.ResponseWriter, r *http.Request) {
	departmentID, err := strconv.ParseInt(r.URL.Query().Get("id_departamento"), 10, 64)
	if err != nil || departmentID <= 0 {
		httpx.Message(w, http.StatusBadRequest, "id_departamento es requerido")
		return
	}
	municipalities, err := h.service.ListMunicipalities(r.Context(), departmentID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, municipalities)
}

func (h *Handler) dropdownVehicles(w http.ResponseWriter, r *http.Request) {
	h.listVehicles(w, r)
}

func (h *Handler) dropdownCatalog(catalog string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.service.ListCatalog(r.Context(), catalog)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, items)
	}
}

// decodeAndValidate decodes the body and applies struct tag validation,
// writing the error response when the payload is invalid.
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
