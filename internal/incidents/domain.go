package incidents

import (
	"encoding/json"
	"time"
)

// EstadoIncidencia is the incident state. Older clients send the numeric
// codes 1/2/3, so UnmarshalJSON accepts both; responses always carry the
// canonical strings.
type EstadoIncidencia string

const (
	EstadoAbierta   EstadoIncidencia = "Abierta"
	EstadoEnProceso EstadoIncidencia = "En Proceso"
	EstadoCerrada   EstadoIncidencia = "Cerrada"
)

var legacyCodes = map[int]EstadoIncidencia{
	1: EstadoAbierta,
	2: EstadoEnProceso,
	3: EstadoCerrada,
}

// IsValid reports whether the state is one of the three canonical values.
func (e EstadoIncidencia) IsValid() bool {
	switch e {
	case EstadoAbierta, EstadoEnProceso, EstadoCerrada:
		return true
	}
	return false
}

// UnmarshalJSON accepts "Abierta" and the legacy code 1 alike. Unknown
// values pass through and fail IsValid during service validation.
func (e *EstadoIncidencia) UnmarshalJSON(data []byte) error {
	var code int
	if err := json.Unmarshal(data, &code); err == nil {
		if mapped, ok := legacyCodes[code]; ok {
			*e = mapped
			return nil
		}
		*e = EstadoIncidencia(string(data))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*e = EstadoIncidencia(s)
	return nil
}

// Incidencia records a problem with a package.
type Incidencia struct {
	ID                 int64            `json:"id"`
	IDPaquete          int64            `json:"id_paquete"`
	IDTipoIncidencia   int64            `json:"id_tipo_incidencia"`
	Estado             EstadoIncidencia `json:"estado"`
	IDEmpleadoAsignado *int64           `json:"id_empleado_asignado,omitempty"`
	Descripcion        string           `json:"descripcion"`
	Solucion           string           `json:"solucion,omitempty"`
	FechaIncidencia    time.Time        `json:"fecha_incidencia"`
	FechaRegistro      time.Time        `json:"fecha_registro"`
}

// CreateIncidentRequest carries the payload for POST /incidencias.
type CreateIncidentRequest struct {
	IDPaquete          int64     `json:"id_paquete" validate:"required,gt=0"`
	IDTipoIncidencia   int64     `json:"id_tipo_incidencia" validate:"required,gt=0"`
	IDEmpleadoAsignado *int64    `json:"id_empleado_asignado,omitempty" validate:"omitempty,gt=0"`
	Descripcion        string    `json:"descripcion" validate:"required"`
	FechaIncidencia    time.Time `json:"fecha_incidencia" validate:"required"`
}

// UpdateIncidentRequest carries the payload for PUT /incidencias/{id}.
type UpdateIncidentRequest struct {
	Estado             *EstadoIncidencia `json:"estado,omitempty"`
	IDEmpleadoAsignado *int64            `json:"id_empleado_asignado,omitempty" validate:"omitempty,gt=0"`
	Descripcion        *string           `json:"descripcion,omitempty"`
	Solucion           *string           `json:"solucion,omitempty"`
}

// ListFilters carries the query parameters of GET /incidencias.
type ListFilters struct {
	Estado    string
	IDPaquete int64
	Page      int
	Limit     int
}
