package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mrspaquetes/paqueteria-api/internal/platform/db"
	"github.com/mrspaquetes/paqueteria-api/internal/platform/httpx"
)

// Repository is the collection persistence contract. Assignment touches
// several rows, so WithTx yields a transaction-bound Repository.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	GetRoute(ctx context.Context, id int64) (*RutaRecoleccion, error)
	ListRoutes(ctx context.Context) ([]RutaRecoleccion, error)
	InsertRoute(ctx context.Context, r RutaRecoleccion) (int64, error)
	UpdateRouteEstado(ctx context.Context, id int64, estado string) error

	GetCollectionOrder(ctx context.Context, id int64) (*OrdenRecoleccion, error)
	FindByPreorder(ctx context.Context, preorderID int64) (*OrdenRecoleccion, error)
	InsertCollectionOrder(ctx context.Context, o OrdenRecoleccion) (int64, error)
	AttachToRoute(ctx context.Context, collectionOrderID, routeID int64, prioridad int) error
	MaxPriority(ctx context.Context, routeID int64) (int, error)
	UpdatePriority(ctx context.Context, routeID, collectionOrderID int64, prioridad int) error
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) GetRoute(ctx context.Context, id int64) (*RutaRecoleccion, error) {
	var route RutaRecoleccion
	err := r.db.QueryRow(ctx,
		"SELECT id, id_vehiculo, fecha_asignacion, estado FROM rutas_recoleccion WHERE id = $1", id,
	).Scan(&route.ID, &route.IDVehiculo, &route.FechaAsignacion, &route.Estado)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ruta %d: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, id_preorden, id_ruta, prioridad, fecha_creacion
		FROM ordenes_recoleccion
		WHERE id_ruta = $1
		ORDER BY prioridad, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var o OrdenRecoleccion
		if err := rows.Scan(&o.ID, &o.IDPreorden, &o.IDRuta, &o.Prioridad, &o.FechaCreacion); err != nil {
			return nil, err
		}
		route.Ordenes = append(route.Ordenes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *repository) ListRoutes(ctx context.Context) ([]RutaRecoleccion, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, id_vehiculo, fecha_asignacion, estado FROM rutas_recoleccion ORDER BY fecha_asignacion DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []RutaRecoleccion
	for rows.Next() {
		var route RutaRecoleccion
		if err := rows.Scan(&route.ID, &route.IDVehiculo, &route.FechaAsignacion, &route.Estado); err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, rows.Err()
}

func (r *repository) InsertRoute(ctx context.Context, route RutaRecoleccion) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		"INSERT INTO rutas_recoleccion (id_vehiculo, fecha_asignacion, estado) VALUES ($1, $2, $3) RETURNING id",
		route.IDVehiculo, route.FechaAsignacion, route.Estado,
	).Scan(&id)
	return id, err
}

func (r *repository) UpdateRouteEstado(ctx context.Context, id int64, estado string) error {
	tag, err := r.db.Exec(ctx, "UPDATE rutas_recoleccion SET estado = $1 WHERE id = $2", estado, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ruta %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func (r *repository) GetCollectionOrder(ctx context.Context, id int64) (*OrdenRecoleccion, error) {
	var o OrdenRecoleccion
	err := r.db.QueryRow(ctx,
		"SELECT id, id_preorden, id_ruta, prioridad, fecha_creacion FROM ordenes_recoleccion WHERE id = $1", id,
	).Scan(&o.ID, &o.IDPreorden, &o.IDRuta, &o.Prioridad, &o.FechaCreacion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("orden de recolección %d: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}
	return &o, nil
}

// FindByPreorder returns the collection order of a preorder, or ErrNotFound
// when none exists yet.
func (r *repository) FindByPreorder(ctx context.Context, preorderID int64) (*OrdenRecoleccion, error) {
	var o OrdenRecoleccion
	err := r.db.QueryRow(ctx,
		"SELECT id, id_preorden, id_ruta, prioridad, fecha_creacion FROM ordenes_recoleccion WHERE id_preorden = $1", preorderID,
	).Scan(&o.ID, &o.IDPreorden, &o.IDRuta, &o.Prioridad, &o.FechaCreacion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *repository) InsertCollectionOrder(ctx context.Context, o OrdenRecoleccion) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		"INSERT INTO ordenes_recoleccion (id_preorden, id_ruta, prioridad, fecha_creacion) VALUES ($1, $2, $3, NOW()) RETURNING id",
		o.IDPreorden, o.IDRuta, o.Prioridad,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("la preorden %d ya tiene orden de recolección: %w", o.IDPreorden, httpx.ErrDuplicate)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) AttachToRoute(ctx context.Context, collectionOrderID, routeID int64, prioridad int) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE ordenes_recoleccion SET id_ruta = $1, prioridad = $2 WHERE id = $3",
		routeID, prioridad, collectionOrderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("orden de recolección %d: %w", collectionOrderID, httpx.ErrNotFound)
	}
	return nil
}

func (r *repository) MaxPriority(ctx context.Context, routeID int64) (int, error) {
	var max int
	err := r.db.QueryRow(ctx,
		"SELECT COALESCE(MAX(prioridad), 0) FROM ordenes_recoleccion WHERE id_ruta = $1", routeID,
	).Scan(&max)
	return max, err
}

func (r *repository) UpdatePriority(ctx context.Context, routeID, collectionOrderID int64, prioridad int) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE ordenes_recoleccion SET prioridad = $1 WHERE id = $2 AND id_ruta = $3",
		prioridad, collectionOrderID, routeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("orden de recolección %d en ruta %d: %w", collectionOrderID, routeID, httpx.ErrNotFound)
	}
	return nil
}
