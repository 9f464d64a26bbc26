package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrspaquetes/paqueteria-api/internal/masterdata"
	"github.com/mrspaquetes/paqueteria-api/internal/orders"
	"github.com/mrspaquetes/paqueteria-api/internal/platform/httpx"
)

// OrderLookup resolves orders so preorders can be validated before
// assignment.
type OrderLookup interface {
	Get(ctx context.Context, id int64) (*orders.Order, error)
}

// VehicleLookup resolves vehicles from master data.
type VehicleLookup interface {
	GetVehicle(ctx context.Context, id int64) (*masterdata.Vehicle, error)
}

// Service manages collection routes and their preorder assignments.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	orders   OrderLookup
	vehicles VehicleLookup
}

// NewService constructs a collection service.
func NewService(logger *slog.Logger, repo Repository, orderLookup OrderLookup, vehicles VehicleLookup) *Service {
	return &Service{logger: logger, repo: repo, orders: orderLookup, vehicles: vehicles}
}

func (s *Service) ListRoutes(ctx context.Context) ([]RutaRecoleccion, error) {
	return s.repo.ListRoutes(ctx)
}

func (s *Service) GetRoute(ctx context.Context, id int64) (*RutaRecoleccion, error) {
	return s.repo.GetRoute(ctx, id)
}

// CreateRoute opens a collection run for a vehicle.
func (s *Service) CreateRoute(ctx context.Context, req CreateRouteRequest) (*RutaRecoleccion, error) {
	if _, err := s.vehicles.GetVehicle(ctx, req.IDVehiculo); err != nil {
		fields := httpx.FieldErrors{}
		fields.Add("id_vehiculo", "El vehículo no existe")
		return nil, fields
	}
	id, err := s.repo.InsertRoute(ctx, RutaRecoleccion{
		IDVehiculo:      req.IDVehiculo,
		FechaAsignacion: req.FechaAsignacion,
		Estado:          RutaActiva,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetRoute(ctx, id)
}

// CreateCollectionOrder registers a preorder for collection without
// attaching it to a route yet.
func (s *Service) CreateCollectionOrder(ctx context.Context, req CreateCollectionOrderRequest) (*OrdenRecoleccion, error) {
	if err := s.validatePreorder(ctx, req.IDPreorden, "id_preorden"); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByPreorder(ctx, req.IDPreorden); err == nil {
		fields := httpx.FieldErrors{}
		fields.Add("id_preorden", "La preorden ya tiene una orden de recolección")
		return nil, fields
	} else if !errors.Is(err, httpx.ErrNotFound) {
		return nil, err
	}

	id, err := s.repo.InsertCollectionOrder(ctx, OrdenRecoleccion{IDPreorden: req.IDPreorden})
	if err != nil {
		return nil, err
	}
	return s.repo.GetCollectionOrder(ctx, id)
}

// Assign attaches preorders to a route in one transaction. Each preorder
// gets a collection order (reusing an unattached one when present) and a
// priority continuing after the route's current maximum. Any invalid
// preorder aborts the whole batch.
func (s *Service) Assign(ctx context.Context, routeID int64, req AssignRequest) (*RutaRecoleccion, error) {
	route, err := s.repo.GetRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if route.Estado != RutaActiva {
		return nil, fmt.Errorf("la ruta está finalizada: %w", httpx.ErrInvalidState)
	}

	fields := httpx.FieldErrors{}
	for i, preorderID := range req.IDsPreordenes {
		if err := s.validatePreorder(ctx, preorderID, fmt.Sprintf("ids_preordenes.%d", i)); err != nil {
			var fe httpx.FieldErrors
			if errors.As(err, &fe) {
				for k, msgs := range fe {
					fields[k] = append(fields[k], msgs...)
				}
				continue
			}
			return nil, err
		}
	}
	if len(fields) > 0 {
		return nil, fields
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		prioridad, err := tx.MaxPriority(ctx, routeID)
		if err != nil {
			return err
		}
		for _, preorderID := range req.IDsPreordenes {
			prioridad++
			existing, err := tx.FindByPreorder(ctx, preorderID)
			switch {
			case err == nil:
				if existing.IDRuta != nil {
					return fmt.Errorf("la preorden %d ya está asignada a una ruta: %w", preorderID, httpx.ErrDuplicate)
				}
				if err := tx.AttachToRoute(ctx, existing.ID, routeID, prioridad); err != nil {
					return err
				}
			case errors.Is(err, httpx.ErrNotFound):
				rid := routeID
				p := prioridad
				if _, err := tx.InsertCollectionOrder(ctx, OrdenRecoleccion{
					IDPreorden: preorderID,
					IDRuta:     &rid,
					Prioridad:  &p,
				}); err != nil {
					return err
				}
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetRoute(ctx, routeID)
}

// UpdatePriority edits one stop's priority. Duplicated priorities are
// allowed; the listing orders by (prioridad, id).
func (s *Service) UpdatePriority(ctx context.Context, routeID, collectionOrderID int64, req UpdatePriorityRequest) (*RutaRecoleccion, error) {
	route, err := s.repo.GetRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if route.Estado != RutaActiva {
		return nil, fmt.Errorf("la ruta está finalizada: %w", httpx.ErrInvalidState)
	}
	if err := s.repo.UpdatePriority(ctx, routeID, collectionOrderID, req.Prioridad); err != nil {
		return nil, err
	}
	return s.repo.GetRoute(ctx, routeID)
}

// FinalizeRoute closes the run.
func (s *Service) FinalizeRoute(ctx context.Context, id int64) (*RutaRecoleccion, error) {
	route, err := s.repo.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}
	if route.Estado != RutaActiva {
		return nil, fmt.Errorf("la ruta ya está finalizada: %w", httpx.ErrInvalidState)
	}
	if err := s.repo.UpdateRouteEstado(ctx, id, RutaFinalizada); err != nil {
		return nil, err
	}
	route.Estado = RutaFinalizada
	return route, nil
}

// validatePreorder checks the order exists, is a preorder and is still in
// process. Violations come back as FieldErrors under the given key.
func (s *Service) validatePreorder(ctx context.Context, preorderID int64, key string) error {
	order, err := s.orders.Get(ctx, preorderID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			fields := httpx.FieldErrors{}
			fields.Add(key, "La preorden no existe")
			return fields
		}
		return err
	}
	fields := httpx.FieldErrors{}
	if order.TipoOrden != orders.TipoPreorden {
		fields.Add(key, "La orden no es una preorden")
	}
	if order.Estado != orders.EstadoEnProceso {
		fields.Add(key, "La preorden no está en proceso")
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}
