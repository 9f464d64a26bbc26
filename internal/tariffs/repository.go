package tariffs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mrspaquetes/paqueteria-api/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for tariff rows.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const entryColumns = "id, id_departamento, id_municipio, tamano, zona, precio, activo, actualizado_en"

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	if err := row.Scan(&e.ID, &e.IDDepartamento, &e.IDMunicipio, &e.Tamano, &e.Zona, &e.Precio, &e.Activo, &e.ActualizadoEn); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListActive returns every active tariff row, the unit the cache stores.
func (r *Repository) ListActive(ctx context.Context) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+entryColumns+" FROM tarifa_destinos WHERE activo ORDER BY id_departamento, id_municipio NULLS LAST, tamano")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.IDDepartamento, &e.IDMunicipio, &e.Tamano, &e.Zona, &e.Precio, &e.Activo, &e.ActualizadoEn); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// List returns all rows, inactive included, for the administration screen.
func (r *Repository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+entryColumns+" FROM tarifa_destinos ORDER BY id_departamento, id_municipio NULLS LAST, tamano")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.IDDepartamento, &e.IDMunicipio, &e.Tamano, &e.Zona, &e.Precio, &e.Activo, &e.ActualizadoEn); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (*Entry, error) {
	entry, err := scanEntry(r.pool.QueryRow(ctx, "SELECT "+entryColumns+" FROM tarifa_destinos WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("tarifa %d: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}
	return entry, nil
}

func (r *Repository) Insert(ctx context.Context, e Entry) (int64, error) {
	const query = `
		INSERT INTO tarifa_destinos (id_departamento, id_municipio, tamano, zona, precio, activo, actualizado_en)
		VALUES ($1, $2, $3, $4, $5, true, NOW())
		RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, query, e.IDDepartamento, e.IDMunicipio, e.Tamano, e.Zona, e.Precio).Scan(&id)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return id, nil
}

func (r *Repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := "UPDATE tarifa_destinos SET actualizado_en = NOW()"
	args := []any{}
	for _, col := range []string{"precio", "activo"} {
		if v, ok := updates[col]; ok {
			args = append(args, v)
			query += fmt.Sprintf(", %s = $%d", col, len(args))
		}
	}
	args = append(args, id)
	query += fmt.Sprintf(" WHERE id = $%d", len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tarifa %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// Deactivate performs the logical delete.
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "UPDATE tarifa_destinos SET activo = false, actualizado_en = NOW() WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tarifa %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("tarifa duplicada: %w", httpx.ErrDuplicate)
	}
	return err
}
