package masterdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrspaquetes/paqueteria-api/internal/platform/httpx"
	"github.com/mrspaquetes/paqueteria-api/internal/shared"
)

// Repo abstracts persistence so the service can be exercised with stubs.
type Repo interface {
	ListClients(ctx context.Context, f ListFilters) ([]Client, int, error)
	GetClient(ctx context.Context, id int64) (*Client, error)
	InsertClient(ctx context.Context, c Client) (int64, error)
	UpdateClient(ctx context.Context, id int64, updates map[string]any) error
	DeactivateClient(ctx context.Context, id int64) error

	ListEmployees(ctx context.Context, f ListFilters) ([]Employee, int, error)
	GetEmployee(ctx context.Context, id int64) (*Employee, error)
	InsertEmployee(ctx context.Context, e Employee) (int64, error)
	UpdateEmployee(ctx context.Context, id int64, updates map[string]any) error
	DeactivateEmployee(ctx context.Context, id int64) error

	ListAddressesByClient(ctx context.Context, clientID int64) ([]AddressWithNames, error)
	GetAddress(ctx context.Context, id int64) (*Address, error)
	InsertAddress(ctx context.Context, a Address) (int64, error)
	UpdateAddress(ctx context.Context, id int64, updates map[string]any) error
	DeactivateAddress(ctx context.Context, id int64) error
	MunicipalityBelongsTo(ctx context.Context, municipalityID, departmentID int64) (bool, error)

	ListVehicles(ctx context.Context) ([]Vehicle, error)
	GetVehicle(ctx context.Context, id int64) (*Vehicle, error)
	InsertVehicle(ctx context.Context, v Vehicle) (int64, error)

	ListDepartments(ctx context.Context) ([]Department, error)
	ListMunicipalities(ctx context.Context, departmentID int64) ([]Municipality, error)
	ListCatalog(ctx context.Context, catalog string) ([]CatalogItem, error)
}

// Service provides business logic for master data operations.
type Service struct {
	repo Repo
}

// NewService constructs a master data service.
func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// ============================================================================
// CLIENTS
// ============================================================================

// ListClients returns clients matching the filters. The search term is
// normalized (lowercased, accents stripped) before hitting the database.
func (s *Service) ListClients(ctx context.Context, f ListFilters) ([]Client, int, error) {
	f.Search = shared.NormalizeSearch(f.Search)
	return s.repo.ListClients(ctx, f)
}

func (s *Service) GetClient(ctx context.Context, id int64) (*Client, error) {
	return s.repo.GetClient(ctx, id)
}

// CreateClient validates and registers a client. Client phones must be
// mobiles (prefix 6 or 7).
func (s *Service) CreateClient(ctx context.Context, req CreateClientRequest) (*Client, error) {
	fields := httpx.FieldErrors{}

	dui, err := shared.FormatDUI(req.DUI)
	if err != nil {
		fields.Add("dui", err.Error())
	}
	phone, err := shared.FormatPhone(req.Telefono)
	if err != nil {
		fields.Add("telefono", err.Error())
	} else if !shared.ValidMobile(phone) {
		fields.Add("telefono", "El teléfono debe iniciar con 6 o 7")
	}
	if len(fields) > 0 {
		return nil, fields
	}

	client := Client{
		Nombre:   strings.TrimSpace(req.Nombre),
		Apellido: strings.TrimSpace(req.Apellido),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		DUI:      dui,
		Telefono: phone,
	}
	id, err := s.repo.InsertClient(ctx, client)
	if err != nil {
		return nil, err
	}
	return s.repo.GetClient(ctx, id)
}

func (s *Service) UpdateClient(ctx context.Context, id int64, req UpdateClientRequest) (*Client, error) {
	fields := httpx.FieldErrors{}
	updates := map[string]any{}

	if req.Nombre != nil {
		updates["nombre"] = strings.TrimSpace(*req.Nombre)
	}
	if req.Apellido != nil {
		updates["apellido"] = strings.TrimSpace(*req.Apellido)
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.DUI != nil {
		dui, err := shared.FormatDUI(*req.DUI)
		if err != nil {
			fields.Add("dui", err.Error())
		} else {
			updates["dui"] = dui
		}
	}
	if req.Telefono != nil {
		phone, err := shared.FormatPhone(*req.Telefono)
		if err != nil {
			fields.Add("telefono", err.Error())
		} else if !shared.ValidMobile(phone) {
			fields.Add("telefono", "El teléfono debe iniciar con 6 o 7")
		} else {
			updates["telefono"] = phone
		}
	}
	if len(fields) > 0 {
		return nil, fields
	}

	if err := s.repo.UpdateClient(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.GetClient(ctx, id)
}

func (s *Service) DeleteClient(ctx context.Context, id int64) error {
	return s.repo.DeactivateClient(ctx, id)
}

// ============================================================================
// EMPLOYEES
// ============================================================================

func (s *Service) ListEmployees(ctx context.Context, f ListFilters) ([]Employee, int, error) {
	f.Search = shared.NormalizeSearch(f.Search)
	return s.repo.ListEmployees(ctx, f)
}

func (s *Service) GetEmployee(ctx context.Context, id int64) (*Employee, error) {
	return s.repo.GetEmployee(ctx, id)
}

// CreateEmployee validates and registers an employee. Employee phones may be
// landlines or mobiles (prefix 2, 6 or 7).
func (s *Service) CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*Employee, error) {
	fields := httpx.FieldErrors{}

	dui, err := shared.FormatDUI(req.DUI)
	if err != nil {
		fields.Add("dui", err.Error())
	}
	phone, err := shared.FormatPhone(req.Telefono)
	if err != nil {
		fields.Add("telefono", err.Error())
	} else if !shared.ValidContactPhone(phone) {
		fields.Add("telefono", "El teléfono debe iniciar con 2, 6 o 7")
	}
	if len(fields) > 0 {
		return nil, fields
	}

	employee := Employee{
		Nombre:            strings.TrimSpace(req.Nombre),
		Apellido:          strings.TrimSpace(req.Apellido),
		Email:             strings.ToLower(strings.TrimSpace(req.Email)),
		DUI:               dui,
		Telefono:          phone,
		Cargo:             strings.TrimSpace(req.Cargo),
		FechaContratacion: req.FechaContratacion,
	}
	id, err := s.repo.InsertEmployee(ctx, employee)
	if err != nil {
		return nil, err
	}
	return s.repo.GetEmployee(ctx, id)
}

func (s *Service) UpdateEmployee(ctx context.Context, id int64, req UpdateEmployeeRequest) (*Employee, error) {
	fields := httpx.FieldErrors{}
	updates := map[string]any{}

	if req.Nombre != nil {
		updates["nombre"] = strings.TrimSpace(*req.Nombre)
	}
	if req.Apellido != nil {
		updates["apellido"] = strings.TrimSpace(*req.Apellido)
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Cargo != nil {
		updates["cargo"] = strings.TrimSpace(*req.Cargo)
	}
	if req.DUI != nil {
		dui, err := shared.FormatDUI(*req.DUI)
		if err != nil {
			fields.Add("dui", err.Error())
		} else {
			updates["dui"] = dui
		}
	}
	if req.Telefono != nil {
		phone, err := shared.FormatPhone(*req.Telefono)
		if err != nil {
			fields.Add("telefono", err.Error())
		} else if !shared.ValidContactPhone(phone) {
			fields.Add("telefono", "El teléfono debe iniciar con 2, 6 o 7")
		} else {
			updates["telefono"] = phone
		}
	}
	if len(fields) > 0 {
		return nil, fields
	}

	if err := s.repo.UpdateEmployee(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.GetEmployee(ctx, id)
}

func (s *Service) DeleteEmployee(ctx context.Context, id int64) error {
	return s.repo.DeactivateEmployee(ctx, id)
}

// ============================================================================
// ADDRESSES
// ============================================================================

func (s *Service) ListAddressesByClient(ctx context.Context, clientID int64) ([]AddressWithNames, error) {
	return s.repo.ListAddressesByClient(ctx, clientID)
}

func (s *Service) GetAddress(ctx context.Context, id int64) (*Address, error) {
	return s.repo.GetAddress(ctx, id)
}

// CreateAddress validates the required contact fields and geographic
// consistency before saving.
func (s *Service) CreateAddress(ctx context.Context, req CreateAddressRequest) (*Address, error) {
	fields := httpx.FieldErrors{}

	if strings.TrimSpace(req.NombreContacto) == "" {
		fields.Add("nombre_contacto", "El nombre de contacto es requerido")
	}
	if strings.TrimSpace(req.Direccion) == "" {
		fields.Add("direccion", "La dirección es requerida")
	}
	phone, err := shared.FormatPhone(req.Telefono)
	if err != nil {
		fields.Add("telefono", err.Error())
	} else if !shared.ValidContactPhone(phone) {
		fields.Add("telefono", "El teléfono debe iniciar con 2, 6 o 7")
	}

	if _, err := s.repo.GetClient(ctx, req.IDCliente); err != nil {
		fields.Add("id_cliente", "El cliente no existe")
	}
	ok, err := s.repo.MunicipalityBelongsTo(ctx, req.IDMunicipio, req.IDDepartamento)
	if err != nil {
		return nil, err
	}
	if !ok {
		fields.Add("id_municipio", "El municipio no pertenece al departamento")
	}
	if len(fields) > 0 {
		return nil, fields
	}

	address := Address{
		IDCliente:      req.IDCliente,
		NombreContacto: strings.TrimSpace(req.NombreContacto),
		Telefono:       phone,
		IDDepartamento: req.IDDepartamento,
		IDMunicipio:    req.IDMunicipio,
		Direccion:      strings.TrimSpace(req.Direccion),
		Referencia:     strings.TrimSpace(req.Referencia),
	}
	id, err := s.repo.InsertAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	return s.repo.GetAddress(ctx, id)
}

func (s *Service) UpdateAddress(ctx context.Context, id int64, req UpdateAddressRequest) (*Address, error) {
	existing, err := s.repo.GetAddress(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := httpx.FieldErrors{}
	updates := map[string]any{}

	if req.NombreContacto != nil {
		if strings.TrimSpace(*req.NombreContacto) == "" {
			fields.Add("nombre_contacto", "El nombre de contacto es requerido")
		} else {
			updates["nombre_contacto"] = strings.TrimSpace(*req.NombreContacto)
		}
	}
	if req.Direccion != nil {
		if strings.TrimSpace(*req.Direccion) == "" {
			fields.Add("direccion", "La dirección es requerida")
		} else {
			updates["direccion"] = strings.TrimSpace(*req.Direccion)
		}
	}
	if req.Referencia != nil {
		updates["referencia"] = strings.TrimSpace(*req.Referencia)
	}
	if req.Telefono != nil {
		phone, err := shared.FormatPhone(*req.Telefono)
		if err != nil {
			fields.Add("telefono", err.Error())
		} else if !shared.ValidContactPhone(phone) {
			fields.Add("telefono", "El teléfono debe iniciar con 2, 6 o 7")
		} else {
			updates["telefono"] = phone
		}
	}

	departmentID := existing.IDDepartamento
	municipalityID := existing.IDMunicipio
	if req.IDDepartamento != nil {
		departmentID = *req.IDDepartamento
		updates["id_departamento"] = departmentID
	}
	if req.IDMunicipio != nil {
		municipalityID = *req.IDMunicipio
		updates["id_municipio"] = municipalityID
	}
	if req.IDDepartamento != nil || req.IDMunicipio != nil {
		ok, err := s.repo.MunicipalityBelongsTo(ctx, municipalityID, departmentID)
		if err != nil {
			return nil, err
		}
		if !ok {
			fields.Add("id_municipio", "El municipio no pertenece al departamento")
		}
	}
	if len(fields) > 0 {
		return nil, fields
	}

	if err := s.repo.UpdateAddress(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.GetAddress(ctx, id)
}

func (s *Service) DeleteAddress(ctx context.Context, id int64) error {
	return s.repo.DeactivateAddress(ctx, id)
}

// ============================================================================
// VEHICLES & REFERENCE DATA
// ============================================================================

func (s *Service) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	return s.repo.ListVehicles(ctx)
}

func (s *Service) GetVehicle(ctx context.Context, id int64) (*Vehicle, error) {
	return s.repo.GetVehicle(ctx, id)
}

func (s *Service) CreateVehicle(ctx context.Context, req CreateVehicleRequest) (*Vehicle, error) {
	vehicle := Vehicle{
		Placa:       strings.ToUpper(strings.TrimSpace(req.Placa)),
		Marca:       strings.TrimSpace(req.Marca),
		Modelo:      strings.TrimSpace(req.Modelo),
		CapacidadKg: req.CapacidadKg,
		IDConductor: req.IDConductor,
	}
	if vehicle.IDConductor != nil {
		if _, err := s.repo.GetEmployee(ctx, *vehicle.IDConductor); err != nil {
			return nil, fmt.Errorf("conductor: %w", err)
		}
	}
	id, err := s.repo.InsertVehicle(ctx, vehicle)
	if err != nil {
		return nil, err
	}
	return s.repo.GetVehicle(ctx, id)
}

func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	return s.repo.ListDepartments(ctx)
}

func (s *Service) ListMunicipalities(ctx context.Context, departmentID int64) ([]Municipality, error) {
	return s.repo.ListMunicipalities(ctx, departmentID)
}

func (s *Service) ListCatalog(ctx context.Context, catalog string) ([]CatalogItem, error) {
	return s.repo.ListCatalog(ctx, catalog)
}
