package tariffs

import "time"

// Tamaño values accepted for packages and tariff rows.
const (
	TamanoPequeno = "Pequeño"
	TamanoMediano = "Mediano"
	TamanoGrande  = "Grande"
)

// ValidTamano reports whether the size label is one of the three catalog
// values.
func ValidTamano(t string) bool {
	switch t {
	case TamanoPequeno, TamanoMediano, TamanoGrande:
		return true
	}
	return false
}

// Zona labels returned by lookups.
const (
	ZonaUrbana = "urbana"
	ZonaRural  = "rural"
)

// Delivery-zone seat: San Miguel centro.
const (
	urbanDepartmentID   = 12
	urbanMunicipalityID = 215
)

// ZoneFor classifies a destination. Only the urban seat municipality is
// urbana; everything else is rural.
func ZoneFor(departmentID, municipalityID int64) string {
	if departmentID == urbanDepartmentID && municipalityID == urbanMunicipalityID {
		return ZonaUrbana
	}
	return ZonaRural
}

// Entry is a priced destination row. A nil IDMunicipio makes the row a
// department-level fallback used when no municipality-exact row exists.
type Entry struct {
	ID             int64     `json:"id"`
	IDDepartamento int64     `json:"id_departamento"`
	IDMunicipio    *int64    `json:"id_municipio,omitempty"`
	Tamano         string    `json:"tamano"`
	Zona           string    `json:"zona"`
	Precio         float64   `json:"precio"`
	Activo         bool      `json:"activo"`
	ActualizadoEn  time.Time `json:"actualizado_en"`
}

// Quote is the result of a price lookup.
type Quote struct {
	Precio float64 `json:"precio"`
	Zona   string  `json:"zona"`
}

// CreateEntryRequest carries the payload for POST /tarifa-destinos.
type CreateEntryRequest struct {
	IDDepartamento int64   `json:"id_departamento" validate:"required,gt=0"`
	IDMunicipio    *int64  `json:"id_municipio,omitempty" validate:"omitempty,gt=0"`
	Tamano         string  `json:"tamano" validate:"required"`
	Precio         float64 `json:"precio" validate:"required,gt=0"`
}

// UpdateEntryRequest carries the payload for PUT /tarifa-destinos/{id}.
type UpdateEntryRequest struct {
	Precio *float64 `json:"precio,omitempty" validate:"omitempty,gt=0"`
	Activo *bool    `json:"activo,omitempty"`
}
