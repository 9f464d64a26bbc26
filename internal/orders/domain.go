package orders

import "time"

// Estado is the order lifecycle state. En_proceso is the only non-terminal
// state; the underscore is part of the wire value.
type Estado string

const (
	EstadoEnProceso  Estado = "En_proceso"
	EstadoCompletada Estado = "Completada"
	EstadoCancelada  Estado = "Cancelada"
)

// IsValid reports whether the state is one of the three lifecycle values.
func (e Estado) IsValid() bool {
	switch e {
	case EstadoEnProceso, EstadoCompletada, EstadoCancelada:
		return true
	}
	return false
}

// CanCancel reports whether an order in this state may be cancelled.
func (e Estado) CanCancel() bool { return e == EstadoEnProceso }

// CanFinalize reports whether an order in this state may be completed.
func (e Estado) CanFinalize() bool { return e == EstadoEnProceso }

// IsTerminal reports whether no further transitions are allowed.
func (e Estado) IsTerminal() bool { return e == EstadoCompletada || e == EstadoCancelada }

// EstadoPago is the payment state; the transition is one-way.
type EstadoPago string

const (
	PagoPendiente EstadoPago = "pendiente"
	PagoPagado    EstadoPago = "pagado"
)

// Order types.
const (
	TipoOrden    = "orden"
	TipoPreorden = "preorden"
)

// Delivery types.
const (
	EntregaNormal  = "normal"
	EntregaExpress = "express"
)

// PackageDetail is one priced package line inside an order.
type PackageDetail struct {
	ID                   int64   `json:"id"`
	IDOrden              int64   `json:"id_orden"`
	IDTipoPaquete        int64   `json:"id_tipo_paquete"`
	IDEmpaque            int64   `json:"id_empaque"`
	Peso                 float64 `json:"peso"`
	Tamano               string  `json:"tamano"`
	DescripcionContenido string  `json:"descripcion_contenido"`
	Precio               float64 `json:"precio"`
}

// Order is a shipment request, either immediate (orden) or scheduled for
// pickup (preorden).
type Order struct {
	ID                     int64           `json:"id"`
	NumeroOrden            string          `json:"numero_orden"`
	IDCliente              int64           `json:"id_cliente"`
	IDDireccion            int64           `json:"id_direccion"`
	IDDireccionRecoleccion *int64          `json:"id_direccion_recoleccion,omitempty"`
	TipoOrden              string          `json:"tipo_orden"`
	TipoEntrega            string          `json:"tipo_entrega"`
	IDTipoPago             int64           `json:"id_tipo_pago"`
	IDTipoDocumento        int64           `json:"id_tipo_documento"`
	CostoAdicional         float64         `json:"costo_adicional"`
	TotalPagar             float64         `json:"total_pagar"`
	Estado                 Estado          `json:"estado"`
	EstadoPago             EstadoPago      `json:"estado_pago"`
	FechaEnvio             time.Time       `json:"fecha_envio"`
	FechaEntregaEstimada   time.Time       `json:"fecha_entrega_estimada"`
	FechaRegistro          time.Time       `json:"fecha_registro"`
	Detalles               []PackageDetail `json:"detalles,omitempty"`
}

// OrderSummary is the list row with the client name joined in.
type OrderSummary struct {
	Order
	ClienteNombre string `json:"cliente_nombre"`
}

// DetailRequest is one package line in the create payload. Peso arrives as a
// string because the capture form sends it that way; Precio is the manual
// price used only when no tariff covers the destination.
type DetailRequest struct {
	IDTipoPaquete        int64    `json:"id_tipo_paquete" validate:"required,gt=0"`
	IDEmpaque            int64    `json:"id_empaque" validate:"required,gt=0"`
	Peso                 string   `json:"peso" validate:"required"`
	Tamano               string   `json:"tamano" validate:"required"`
	DescripcionContenido string   `json:"descripcion_contenido" validate:"required"`
	Precio               *float64 `json:"precio,omitempty" validate:"omitempty,gt=0"`
}

// CreateOrderRequest carries the payload for POST /ordenes.
type CreateOrderRequest struct {
	IDCliente              int64           `json:"id_cliente" validate:"required,gt=0"`
	IDDireccion            int64           `json:"id_direccion" validate:"required,gt=0"`
	IDDireccionRecoleccion *int64          `json:"id_direccion_recoleccion,omitempty" validate:"omitempty,gt=0"`
	TipoOrden              string          `json:"tipo_orden" validate:"required"`
	TipoEntrega            string          `json:"tipo_entrega" validate:"required"`
	IDTipoPago             int64           `json:"id_tipo_pago" validate:"required,gt=0"`
	IDTipoDocumento        int64           `json:"id_tipo_documento" validate:"required,gt=0"`
	CostoAdicional         float64         `json:"costo_adicional" validate:"gte=0"`
	FechaEnvio             time.Time       `json:"fecha_envio" validate:"required"`
	FechaEntregaEstimada   time.Time       `json:"fecha_entrega_estimada" validate:"required"`
	Detalles               []DetailRequest `json:"detalles" validate:"required,min=1,dive"`
}

// ListFilters carries the query parameters of GET /ordenes.
type ListFilters struct {
	Estado     string
	EstadoPago string
	TipoOrden  string
	IDCliente  int64
	Search     string
	Page       int
	Limit      int
}
