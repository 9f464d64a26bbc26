package masterdata

import "time"

// ============================================================================
// CLIENTS
// ============================================================================

// Client is a registered sender able to place orders.
type Client struct {
	ID            int64     `json:"id"`
	Nombre        string    `json:"nombre"`
	Apellido      string    `json:"apellido"`
	Email         string    `json:"email"`
	DUI           string    `json:"dui"`
	Telefono      string    `json:"telefono"`
	FechaRegistro time.Time `json:"fecha_registro"`
	Activo        bool      `json:"activo"`
}

// CreateClientRequest carries the payload for POST /clientes.
type CreateClientRequest struct {
	Nombre   string `json:"nombre" validate:"required,max=100"`
	Apellido string `json:"apellido" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	DUI      string `json:"dui" validate:"required"`
	Telefono string `json:"telefono" validate:"required"`
}

// UpdateClientRequest carries the payload for PUT /clientes/{id}.
type UpdateClientRequest struct {
	Nombre   *string `json:"nombre,omitempty" validate:"omitempty,max=100"`
	Apellido *string `json:"apellido,omitempty" validate:"omitempty,max=100"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	DUI      *string `json:"dui,omitempty"`
	Telefono *string `json:"telefono,omitempty"`
}

// ============================================================================
// EMPLOYEES
// ============================================================================

// Employee is a staff member (counter operator, driver, supervisor).
type Employee struct {
	ID                int64     `json:"id"`
	Nombre            string    `json:"nombre"`
	Apellido          string    `json:"apellido"`
	Email             string    `json:"email"`
	DUI               string    `json:"dui"`
	Telefono          string    `json:"telefono"`
	Cargo             string    `json:"cargo"`
	FechaContratacion time.Time `json:"fecha_contratacion"`
	Activo            bool      `json:"activo"`
}

// CreateEmployeeRequest carries the payload for POST /empleados.
type CreateEmployeeRequest struct {
	Nombre            string    `json:"nombre" validate:"required,max=100"`
	Apellido          string    `json:"apellido" validate:"required,max=100"`
	Email             string    `json:"email" validate:"required,email"`
	DUI               string    `json:"dui" validate:"required"`
	Telefono          string    `json:"telefono" validate:"required"`
	Cargo             string    `json:"cargo" validate:"required,max=100"`
	FechaContratacion time.Time `json:"fecha_contratacion" validate:"required"`
}

// UpdateEmployeeRequest carries the payload for PUT /empleados/{id}.
type UpdateEmployeeRequest struct {
	Nombre   *string `json:"nombre,omitempty" validate:"omitempty,max=100"`
	Apellido *string `json:"apellido,omitempty" validate:"omitempty,max=100"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	DUI      *string `json:"dui,omitempty"`
	Telefono *string `json:"telefono,omitempty"`
	Cargo    *string `json:"cargo,omitempty" validate:"omitempty,max=100"`
}

// ============================================================================
// ADDRESSES
// ============================================================================

// Address is a saved delivery or pickup location belonging to a client.
type Address struct {
	ID             int64  `json:"id"`
	IDCliente      int64  `json:"id_cliente"`
	NombreContacto string `json:"nombre_contacto"`
	Telefono       string `json:"telefono"`
	IDDepartamento int64  `json:"id_departamento"`
	IDMunicipio    int64  `json:"id_municipio"`
	Direccion      string `json:"direccion"`
	Referencia     string `json:"referencia,omitempty"`
	Activo         bool   `json:"activo"`
}

// AddressWithNames includes joined department/municipality labels.
type AddressWithNames struct {
	Address
	Departamento string `json:"departamento"`
	Municipio    string `json:"municipio"`
}

// CreateAddressRequest carries the payload for POST /direcciones.
type CreateAddressRequest struct {
	IDCliente      int64  `json:"id_cliente" validate:"required,gt=0"`
	NombreContacto string `json:"nombre_contacto" validate:"required,max=150"`
	Telefono       string `json:"telefono" validate:"required"`
	IDDepartamento int64  `json:"id_departamento" validate:"required,gt=0"`
	IDMunicipio    int64  `json:"id_municipio" validate:"required,gt=0"`
	Direccion      string `json:"direccion" validate:"required"`
	Referencia     string `json:"referencia,omitempty"`
}

// UpdateAddressRequest carries the payload for PUT /direcciones/{id}.
type UpdateAddressRequest struct {
	NombreContacto *string `json:"nombre_contacto,omitempty" validate:"omitempty,max=150"`
	Telefono       *string `json:"telefono,omitempty"`
	IDDepartamento *int64  `json:"id_departamento,omitempty" validate:"omitempty,gt=0"`
	IDMunicipio    *int64  `json:"id_municipio,omitempty" validate:"omitempty,gt=0"`
	Direccion      *string `json:"direccion,omitempty"`
	Referencia     *string `json:"referencia,omitempty"`
}

// ============================================================================
// VEHICLES
// ============================================================================

// Vehicle is a collection/delivery vehicle assignable to routes.
type Vehicle struct {
	ID          int64   `json:"id"`
	Placa       string  `json:"placa"`
	Marca       string  `json:"marca"`
	Modelo      string  `json:"modelo"`
	CapacidadKg float64 `json:"capacidad_kg"`
	IDConductor *int64  `json:"id_conductor,omitempty"`
	Activo      bool    `json:"activo"`
}

// CreateVehicleRequest carries the payload for POST /vehiculos.
type CreateVehicleRequest struct {
	Placa       string  `json:"placa" validate:"required,max=10"`
	Marca       string  `json:"marca" validate:"required,max=50"`
	Modelo      string  `json:"modelo" validate:"required,max=50"`
	CapacidadKg float64 `json:"capacidad_kg" validate:"required,gt=0"`
	IDConductor *int64  `json:"id_conductor,omitempty" validate:"omitempty,gt=0"`
}

// ============================================================================
// REFERENCE DATA
// ============================================================================

// Department is a first-level administrative division.
type Department struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

// Municipality is a second-level division within a department.
type Municipality struct {
	ID             int64  `json:"id"`
	IDDepartamento int64  `json:"id_departamento"`
	Nombre         string `json:"nombre"`
}

// CatalogItem is a generic id/label pair for dropdown catalogs (package
// types, packagings, incident types, payment types, document types, package
// states).
type CatalogItem struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

// Catalog names accepted by the dropdown endpoints. Each maps to a fixed
// table; the whitelist keeps table names out of request input.
const (
	CatalogTipoPaquete    = "tipo_paquete"
	CatalogEmpaques       = "empaques"
	CatalogTipoIncidencia = "tipo_incidencia"
	CatalogTipoPago       = "tipo_pago"
	CatalogTipoDocumento  = "tipo_documento"
	CatalogEstadoPaquete  = "estado_paquete"
)

// ListFilters carries listing parameters shared by the master data entities.
type ListFilters struct {
	Page   int
	Limit  int
	Search string
}
