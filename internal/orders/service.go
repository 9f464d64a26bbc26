package orders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mrspaquetes/paqueteria-api/internal/masterdata"
	"github.com/mrspaquetes/paqueteria-api/internal/observability"
	"github.com/mrspaquetes/paqueteria-api/internal/platform/httpx"
	"github.com/mrspaquetes/paqueteria-api/internal/shared"
	"github.com/mrspaquetes/paqueteria-api/internal/tariffs"
)

// PriceLookup resolves destination prices during order capture.
type PriceLookup interface {
	Lookup(ctx context.Context, tamano string, departmentID, municipalityID int64) (tariffs.Quote, bool, error)
}

// Directory resolves clients and addresses from master data.
type Directory interface {
	GetClient(ctx context.Context, id int64) (*masterdata.Client, error)
	GetAddress(ctx context.Context, id int64) (*masterdata.Address, error)
}

// Notifier enqueues order status notifications. A nil Notifier disables
// them.
type Notifier interface {
	NotifyOrderStatus(ctx context.Context, orderID int64, numero, email, nombre, estado string, total float64) error
}

// Service implements order capture and the lifecycle transitions.
type Service struct {
	logger    *slog.Logger
	repo      Repository
	tariffs   PriceLookup
	directory Directory
	notifier  Notifier
	metrics   *observability.Metrics
	now       func() time.Time
}

// NewService constructs an order service. notifier and metrics may be nil.
func NewService(logger *slog.Logger, repo Repository, tariffs PriceLookup, directory Directory, notifier Notifier, metrics *observability.Metrics) *Service {
	return &Service{
		logger:    logger,
		repo:      repo,
		tariffs:   tariffs,
		directory: directory,
		notifier:  notifier,
		metrics:   metrics,
		now:       time.Now,
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilters) ([]OrderSummary, int, error) {
	f.Search = shared.NormalizeSearch(f.Search)
	return s.repo.List(ctx, f)
}

// Create validates the full payload, prices every package line and persists
// the order with its details in one transaction.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	fields := httpx.FieldErrors{}

	if req.TipoOrden != TipoOrden && req.TipoOrden != TipoPreorden {
		fields.Add("tipo_orden", "El tipo de orden no es válido")
	}
	if req.TipoEntrega != EntregaNormal && req.TipoEntrega != EntregaExpress {
		fields.Add("tipo_entrega", "El tipo de entrega no es válido")
	}
	if req.TipoOrden == TipoPreorden && req.IDDireccionRecoleccion == nil {
		fields.Add("id_direccion_recoleccion", "La preorden requiere una dirección de recolección")
	}
	if req.CostoAdicional < 0 {
		fields.Add("costo_adicional", "El costo adicional no puede ser negativo")
	}
	if req.FechaEnvio.After(s.now()) {
		fields.Add("fecha_envio", "La fecha de envío no puede ser futura")
	}
	if req.FechaEntregaEstimada.Before(req.FechaEnvio) {
		fields.Add("fecha_entrega_estimada", "La fecha de entrega estimada no puede ser anterior a la fecha de envío")
	}

	client, err := s.directory.GetClient(ctx, req.IDCliente)
	if err != nil {
		fields.Add("id_cliente", "El cliente no existe")
	} else if !client.Activo {
		fields.Add("id_cliente", "El cliente está inactivo")
	}

	var address *masterdata.Address
	if address, err = s.directory.GetAddress(ctx, req.IDDireccion); err != nil {
		fields.Add("id_direccion", "La dirección no existe")
	} else if address.IDCliente != req.IDCliente {
		fields.Add("id_direccion", "La dirección no pertenece al cliente")
	}

	if req.IDDireccionRecoleccion != nil {
		pickup, err := s.directory.GetAddress(ctx, *req.IDDireccionRecoleccion)
		if err != nil {
			fields.Add("id_direccion_recoleccion", "La dirección de recolección no existe")
		} else if pickup.IDCliente != req.IDCliente {
			fields.Add("id_direccion_recoleccion", "La dirección de recolección no pertenece al cliente")
		}
	}

	details := make([]PackageDetail, 0, len(req.Detalles))
	var sum float64
	for i, d := range req.Detalles {
		key := func(name string) string { return fmt.Sprintf("detalles.%d.%s", i, name) }

		peso, err := shared.ParseWeight(d.Peso)
		if err != nil {
			fields.Add(key("peso"), err.Error())
		}
		if !tariffs.ValidTamano(d.Tamano) {
			fields.Add(key("tamano"), "El tamaño no es válido")
		}
		descripcion := strings.TrimSpace(d.DescripcionContenido)
		if descripcion == "" {
			fields.Add(key("descripcion_contenido"), "La descripción del contenido es requerida")
		}

		precio := 0.0
		if address != nil && tariffs.ValidTamano(d.Tamano) {
			quote, found, err := s.tariffs.Lookup(ctx, d.Tamano, address.IDDepartamento, address.IDMunicipio)
			if err != nil {
				return nil, err
			}
			switch {
			case found:
				precio = quote.Precio
			case d.Precio != nil:
				precio = *d.Precio
			default:
				fields.Add(key("precio"), "No existe tarifa para el destino, indique el precio")
			}
		}

		details = append(details, PackageDetail{
			IDTipoPaquete:        d.IDTipoPaquete,
			IDEmpaque:            d.IDEmpaque,
			Peso:                 peso,
			Tamano:               d.Tamano,
			DescripcionContenido: descripcion,
			Precio:               precio,
		})
		sum += precio
	}
	if len(fields) > 0 {
		return nil, fields
	}

	order := Order{
		IDCliente:              req.IDCliente,
		IDDireccion:            req.IDDireccion,
		IDDireccionRecoleccion: req.IDDireccionRecoleccion,
		TipoOrden:              req.TipoOrden,
		TipoEntrega:            req.TipoEntrega,
		IDTipoPago:             req.IDTipoPago,
		IDTipoDocumento:        req.IDTipoDocumento,
		CostoAdicional:         req.CostoAdicional,
		TotalPagar:             shared.Round2(shared.Round2(sum) + req.CostoAdicional),
		Estado:                 EstadoEnProceso,
		EstadoPago:             PagoPendiente,
		FechaEnvio:             req.FechaEnvio,
		FechaEntregaEstimada:   req.FechaEntregaEstimada,
	}

	var orderID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		numero, err := tx.GenerateNumber(ctx, s.now())
		if err != nil {
			return err
		}
		order.NumeroOrden = numero
		orderID, err = tx.Insert(ctx, order)
		if err != nil {
			return err
		}
		for _, d := range details {
			d.IDOrden = orderID
			if _, err := tx.InsertDetail(ctx, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderCreated()
	created, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, created)
	return created, nil
}

// ============================================================================
// LIFECYCLE TRANSITIONS
// ============================================================================

// Cancel moves an order to Cancelada. Only En_proceso orders qualify;
// deletion maps here, records are never removed.
func (s *Service) Cancel(ctx context.Context, id int64) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Estado.CanCancel() {
		return nil, fmt.Errorf("la orden no puede ser cancelada en estado %s: %w", order.Estado, httpx.ErrInvalidState)
	}
	if err := s.repo.UpdateEstado(ctx, id, EstadoCancelada); err != nil {
		return nil, err
	}
	order.Estado = EstadoCancelada
	s.notify(ctx, order)
	return order, nil
}

// ProcessPayment marks the order as paid. The transition is one-way.
func (s *Service) ProcessPayment(ctx context.Context, id int64) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.EstadoPago == PagoPagado {
		return nil, fmt.Errorf("el pago ya fue procesado: %w", httpx.ErrInvalidState)
	}
	if order.Estado == EstadoCancelada {
		return nil, fmt.Errorf("la orden está cancelada: %w", httpx.ErrInvalidState)
	}
	if err := s.repo.UpdateEstadoPago(ctx, id, PagoPagado); err != nil {
		return nil, err
	}
	order.EstadoPago = PagoPagado
	return order, nil
}

// Finalize completes the order. Requires estado En_proceso and a settled
// payment.
func (s *Service) Finalize(ctx context.Context, id int64) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Estado.CanFinalize() {
		return nil, fmt.Errorf("la orden no puede ser finalizada en estado %s: %w", order.Estado, httpx.ErrInvalidState)
	}
	if order.EstadoPago != PagoPagado {
		return nil, fmt.Errorf("la orden debe estar pagada para finalizar: %w", httpx.ErrInvalidState)
	}
	if err := s.repo.UpdateEstado(ctx, id, EstadoCompletada); err != nil {
		return nil, err
	}
	order.Estado = EstadoCompletada
	s.notify(ctx, order)
	return order, nil
}

// notify enqueues a status email. Failures are logged, never surfaced: the
// transition already committed.
func (s *Service) notify(ctx context.Context, order *Order) {
	if s.notifier == nil {
		return
	}
	client, err := s.directory.GetClient(ctx, order.IDCliente)
	if err != nil {
		s.logger.Warn("notify: load client", slog.Int64("order", order.ID), slog.Any("error", err))
		return
	}
	nombre := client.Nombre + " " + client.Apellido
	if err := s.notifier.NotifyOrderStatus(ctx, order.ID, order.NumeroOrden, client.Email, nombre, string(order.Estado), order.TotalPagar); err != nil {
		s.logger.Warn("notify: enqueue", slog.Int64("order", order.ID), slog.Any("error", err))
	}
}
