package collection

import "time"

// Route states. A finalized route no longer accepts assignments.
const (
	RutaActiva     = "Activa"
	RutaFinalizada = "Finalizada"
)

// OrdenRecoleccion links a preorder to the collection workflow. IDRuta and
// Prioridad stay nil until the order is attached to a route.
type OrdenRecoleccion struct {
	ID            int64     `json:"id"`
	IDPreorden    int64     `json:"id_preorden"`
	IDRuta        *int64    `json:"id_ruta,omitempty"`
	Prioridad     *int      `json:"prioridad,omitempty"`
	FechaCreacion time.Time `json:"fecha_creacion"`
}

// RutaRecoleccion is a vehicle's collection run with its ordered stops.
type RutaRecoleccion struct {
	ID              int64              `json:"id"`
	IDVehiculo      int64              `json:"id_vehiculo"`
	FechaAsignacion time.Time          `json:"fecha_asignacion"`
	Estado          string             `json:"estado"`
	Ordenes         []OrdenRecoleccion `json:"ordenes"`
}

// CreateRouteRequest carries the payload for POST /rutas-recolecciones.
type CreateRouteRequest struct {
	IDVehiculo      int64     `json:"id_vehiculo" validate:"required,gt=0"`
	FechaAsignacion time.Time `json:"fecha_asignacion" validate:"required"`
}

// AssignRequest carries the payload for POST /rutas-recolecciones/{id}/asignar.
type AssignRequest struct {
	IDsPreordenes []int64 `json:"ids_preordenes" validate:"required,min=1,dive,gt=0"`
}

// CreateCollectionOrderRequest carries the payload for POST /orden-recoleccion.
type CreateCollectionOrderRequest struct {
	IDPreorden int64 `json:"id_preorden" validate:"required,gt=0"`
}

// UpdatePriorityRequest carries the payload for the manual priority edit.
type UpdatePriorityRequest struct {
	Prioridad int `json:"prioridad" validate:"required,gt=0"`
}
