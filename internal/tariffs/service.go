package tariffs

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/mrspaquetes/paqueteria-api/internal/observability"
	"github.com/mrspaquetes/paqueteria-api/internal/platform/httpx"
)

// Repo abstracts persistence so the service can be exercised with stubs.
type Repo interface {
	ListActive(ctx context.Context) ([]Entry, error)
	List(ctx context.Context) ([]Entry, error)
	Get(ctx context.Context, id int64) (*Entry, error)
	Insert(ctx context.Context, e Entry) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Deactivate(ctx context.Context, id int64) error
}

// Store is the table cache. A nil Store disables caching.
type Store interface {
	Get(ctx context.Context) ([]Entry, bool, error)
	Set(ctx context.Context, entries []Entry) error
	Invalidate(ctx context.Context) error
}

// Service resolves destination prices and manages the tariff table.
type Service struct {
	logger  *slog.Logger
	repo    Repo
	cache   Store
	metrics *observability.Metrics
	group   singleflight.Group
}

// NewService constructs a tariff service. cache and metrics may be nil.
func NewService(logger *slog.Logger, repo Repo, cache Store, metrics *observability.Metrics) *Service {
	return &Service{logger: logger, repo: repo, cache: cache, metrics: metrics}
}

// Lookup resolves the price for a destination and size. The boolean result
// is false when no row matches even after dropping to the department level;
// that is not an error, the caller decides whether a manual price applies.
func (s *Service) Lookup(ctx context.Context, tamano string, departmentID, municipalityID int64) (Quote, bool, error) {
	zona := ZoneFor(departmentID, municipalityID)
	if !ValidTamano(tamano) {
		fields := httpx.FieldErrors{}
		fields.Add("tamano", "El tamaño no es válido")
		return Quote{Zona: zona}, false, fields
	}

	entries, err := s.table(ctx)
	if err != nil {
		return Quote{Zona: zona}, false, err
	}

	// Municipality-exact row wins over the department-level row.
	var fallback *Entry
	for i := range entries {
		e := &entries[i]
		if e.IDDepartamento != departmentID || e.Tamano != tamano {
			continue
		}
		if e.IDMunicipio != nil {
			if *e.IDMunicipio == municipalityID {
				return Quote{Precio: e.Precio, Zona: zona}, true, nil
			}
			continue
		}
		if fallback == nil {
			fallback = e
		}
	}
	if fallback != nil {
		return Quote{Precio: fallback.Precio, Zona: zona}, true, nil
	}

	s.metrics.TariffMiss()
	return Quote{Zona: zona}, false, nil
}

// table returns the active rows, serving from cache when possible. The load
// is singleflight-protected so concurrent misses hit the database once.
func (s *Service) table(ctx context.Context) ([]Entry, error) {
	if s.cache != nil {
		entries, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("tariff cache read", slog.Any("error", err))
		} else if ok {
			return entries, nil
		}
	}

	v, err, _ := s.group.Do("tarifas", func() (any, error) {
		entries, err := s.repo.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, entries); err != nil {
				s.logger.Warn("tariff cache write", slog.Any("error", err))
			}
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Entry), nil
}

// Warm reloads the cache from the database. The nightly warmup job and the
// write path both use it.
func (s *Service) Warm(ctx context.Context) error {
	entries, err := s.repo.ListActive(ctx)
	if err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, entries)
}

// ============================================================================
// ADMINISTRATION
// ============================================================================

func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Entry, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateEntryRequest) (*Entry, error) {
	fields := httpx.FieldErrors{}
	if !ValidTamano(req.Tamano) {
		fields.Add("tamano", "El tamaño no es válido")
	}
	if req.Precio <= 0 {
		fields.Add("precio", "El precio debe ser mayor que cero")
	}
	if len(fields) > 0 {
		return nil, fields
	}

	entry := Entry{
		IDDepartamento: req.IDDepartamento,
		IDMunicipio:    req.IDMunicipio,
		Tamano:         req.Tamano,
		Precio:         req.Precio,
		Zona:           ZonaRural,
	}
	if req.IDMunicipio != nil {
		entry.Zona = ZoneFor(req.IDDepartamento, *req.IDMunicipio)
	}

	id, err := s.repo.Insert(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateEntry(ctx context.Context, id int64, req UpdateEntryRequest) (*Entry, error) {
	updates := map[string]any{}
	if req.Precio != nil {
		if *req.Precio <= 0 {
			fields := httpx.FieldErrors{}
			fields.Add("precio", "El precio debe ser mayor que cero")
			return nil, fields
		}
		updates["precio"] = *req.Precio
	}
	if req.Activo != nil {
		updates["activo"] = *req.Activo
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("tariff cache invalidate", slog.Any("error", err))
	}
}
