package incidents

import (
	"context"
	"strings"

	"github.com/mrspaquetes/paqueteria-api/internal/platform/httpx"
)

// Repo abstracts persistence so the service can be exercised with stubs.
type Repo interface {
	List(ctx context.Context, f ListFilters) ([]Incidencia, int, error)
	Get(ctx context.Context, id int64) (*Incidencia, error)
	Insert(ctx context.Context, in Incidencia) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
}

// Service provides business logic for incident tracking.
type Service struct {
	repo Repo
}

// NewService constructs an incident service.
func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, f ListFilters) ([]Incidencia, int, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id int64) (*Incidencia, error) {
	return s.repo.Get(ctx, id)
}

// Create opens an incident in Abierta.
func (s *Service) Create(ctx context.Context, req CreateIncidentRequest) (*Incidencia, error) {
	fields := httpx.FieldErrors{}
	if strings.TrimSpace(req.Descripcion) == "" {
		fields.Add("descripcion", "La descripción es requerida")
	}
	if len(fields) > 0 {
		return nil, fields
	}

	id, err := s.repo.Insert(ctx, Incidencia{
		IDPaquete:          req.IDPaquete,
		IDTipoIncidencia:   req.IDTipoIncidencia,
		Estado:             EstadoAbierta,
		IDEmpleadoAsignado: req.IDEmpleadoAsignado,
		Descripcion:        strings.TrimSpace(req.Descripcion),
		FechaIncidencia:    req.FechaIncidencia,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Update edits an incident. Moving to Cerrada requires a non-empty
// solución, either already recorded or sent in the same request.
func (s *Service) Update(ctx context.Context, id int64, req UpdateIncidentRequest) (*Incidencia, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := httpx.FieldErrors{}
	updates := map[string]any{}

	solucion := existing.Solucion
	if req.Solucion != nil {
		solucion = strings.TrimSpace(*req.Solucion)
		updates["solucion"] = solucion
	}
	if req.Descripcion != nil {
		if strings.TrimSpace(*req.Descripcion) == "" {
			fields.Add("descripcion", "La descripción es requerida")
		} else {
			updates["descripcion"] = strings.TrimSpace(*req.Descripcion)
		}
	}
	if req.IDEmpleadoAsignado != nil {
		updates["id_empleado_asignado"] = *req.IDEmpleadoAsignado
	}
	if req.Estado != nil {
		if !req.Estado.IsValid() {
			fields.Add("estado", "El estado no es válido")
		} else {
			if *req.Estado == EstadoCerrada && solucion == "" {
				fields.Add("solucion", "La solución es requerida para cerrar la incidencia")
			}
			updates["estado"] = *req.Estado
		}
	}
	if len(fields) > 0 {
		return nil, fields
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}
