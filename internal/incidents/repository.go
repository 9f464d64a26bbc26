package incidents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mrspaquetes/paqueteria-api/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for incidents.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const incidentColumns = `id, id_paquete, id_tipo_incidencia, estado, id_empleado_asignado,
	descripcion, COALESCE(solucion, ''), fecha_incidencia, fecha_registro`

func (r *Repository) List(ctx context.Context, f ListFilters) ([]Incidencia, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	if f.Estado != "" {
		args = append(args, f.Estado)
		where += fmt.Sprintf(" AND estado = $%d", len(args))
	}
	if f.IDPaquete > 0 {
		args = append(args, f.IDPaquete)
		where += fmt.Sprintf(" AND id_paquete = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM incidencias "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if f.Page > 1 {
		offset = (f.Page - 1) * limit
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT %s FROM incidencias %s
		ORDER BY fecha_incidencia DESC, id DESC
		LIMIT $%d OFFSET $%d`, incidentColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var incidents []Incidencia
	for rows.Next() {
		var in Incidencia
		if err := rows.Scan(&in.ID, &in.IDPaquete, &in.IDTipoIncidencia, &in.Estado, &in.IDEmpleadoAsignado,
			&in.Descripcion, &in.Solucion, &in.FechaIncidencia, &in.FechaRegistro); err != nil {
			return nil, 0, err
		}
		incidents = append(incidents, in)
	}
	return incidents, total, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (*Incidencia, error) {
	var in Incidencia
	err := r.pool.QueryRow(ctx, "SELECT "+incidentColumns+" FROM incidencias WHERE id = $1", id).Scan(
		&in.ID, &in.IDPaquete, &in.IDTipoIncidencia, &in.Estado, &in.IDEmpleadoAsignado,
		&in.Descripcion, &in.Solucion, &in.FechaIncidencia, &in.FechaRegistro)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incidencia %d: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}
	return &in, nil
}

func (r *Repository) Insert(ctx context.Context, in Incidencia) (int64, error) {
	const query = `
		INSERT INTO incidencias (id_paquete, id_tipo_incidencia, estado, id_empleado_asignado, descripcion, fecha_incidencia, fecha_registro)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, query,
		in.IDPaquete, in.IDTipoIncidencia, in.Estado, in.IDEmpleadoAsignado, in.Descripcion, in.FechaIncidencia,
	).Scan(&id)
	return id, err
}

func (r *Repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	var sets []string
	args := []any{}
	for _, col := range []string{"estado", "id_empleado_asignado", "descripcion", "solucion"} {
		if v, ok := updates[col]; ok {
			args = append(args, v)
			sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE incidencias SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("incidencia %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}
