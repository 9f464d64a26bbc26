package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mrspaquetes/paqueteria-api/internal/platform/db"
	"github.com/mrspaquetes/paqueteria-api/internal/platform/httpx"
)

// Repository is the order persistence contract. WithTx yields a Repository
// bound to one transaction so order and detail inserts commit together.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, f ListFilters) ([]OrderSummary, int, error)
	Insert(ctx context.Context, o Order) (int64, error)
	InsertDetail(ctx context.Context, d PackageDetail) (int64, error)
	UpdateEstado(ctx context.Context, id int64, estado Estado) error
	UpdateEstadoPago(ctx context.Context, id int64, estadoPago EstadoPago) error
	GenerateNumber(ctx context.Context, date time.Time) (string, error)
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

const orderColumns = `id, numero_orden, id_cliente, id_direccion, id_direccion_recoleccion,
	tipo_orden, tipo_entrega, id_tipo_pago, id_tipo_documento,
	costo_adicional, total_pagar, estado, estado_pago,
	fecha_envio, fecha_entrega_estimada, fecha_registro`

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(
		&o.ID, &o.NumeroOrden, &o.IDCliente, &o.IDDireccion, &o.IDDireccionRecoleccion,
		&o.TipoOrden, &o.TipoEntrega, &o.IDTipoPago, &o.IDTipoDocumento,
		&o.CostoAdicional, &o.TotalPagar, &o.Estado, &o.EstadoPago,
		&o.FechaEnvio, &o.FechaEntregaEstimada, &o.FechaRegistro,
	)
}

func (r *repository) Get(ctx context.Context, id int64) (*Order, error) {
	var o Order
	err := scanOrder(r.db.QueryRow(ctx, "SELECT "+orderColumns+" FROM ordenes WHERE id = $1", id), &o)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("orden %d: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, id_orden, id_tipo_paquete, id_empaque, peso, tamano, descripcion_contenido, precio
		FROM detalle_ordenes WHERE id_orden = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var d PackageDetail
		if err := rows.Scan(&d.ID, &d.IDOrden, &d.IDTipoPaquete, &d.IDEmpaque, &d.Peso, &d.Tamano, &d.DescripcionContenido, &d.Precio); err != nil {
			return nil, err
		}
		o.Detalles = append(o.Detalles, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) List(ctx context.Context, f ListFilters) ([]OrderSummary, int, error) {
	conditions := []string{"1=1"}
	args := []any{}

	if f.Estado != "" {
		args = append(args, f.Estado)
		conditions = append(conditions, fmt.Sprintf("o.estado = $%d", len(args)))
	}
	if f.EstadoPago != "" {
		args = append(args, f.EstadoPago)
		conditions = append(conditions, fmt.Sprintf("o.estado_pago = $%d", len(args)))
	}
	if f.TipoOrden != "" {
		args = append(args, f.TipoOrden)
		conditions = append(conditions, fmt.Sprintf("o.tipo_orden = $%d", len(args)))
	}
	if f.IDCliente > 0 {
		args = append(args, f.IDCliente)
		conditions = append(conditions, fmt.Sprintf("o.id_cliente = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(lower(o.numero_orden) LIKE $%d OR unaccent(lower(c.nombre || ' ' || c.apellido)) LIKE $%d)", len(args), len(args)))
	}

	where := "WHERE " + conditions[0]
	for _, c := range conditions[1:] {
		where += " AND " + c
	}

	var total int
	countQuery := "SELECT count(*) FROM ordenes o JOIN clientes c ON o.id_cliente = c.id " + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
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
		SELECT o.id, o.numero_orden, o.id_cliente, o.id_direccion, o.id_direccion_recoleccion,
		       o.tipo_orden, o.tipo_entrega, o.id_tipo_pago, o.id_tipo_documento,
		       o.costo_adicional, o.total_pagar, o.estado, o.estado_pago,
		       o.fecha_envio, o.fecha_entrega_estimada, o.fecha_registro,
		       c.nombre || ' ' || c.apellido AS cliente_nombre
		FROM ordenes o
		JOIN clientes c ON o.id_cliente = c.id
		%s
		ORDER BY o.fecha_registro DESC, o.id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []OrderSummary
	for rows.Next() {
		var s OrderSummary
		if err := rows.Scan(
			&s.ID, &s.NumeroOrden, &s.IDCliente, &s.IDDireccion, &s.IDDireccionRecoleccion,
			&s.TipoOrden, &s.TipoEntrega, &s.IDTipoPago, &s.IDTipoDocumento,
			&s.CostoAdicional, &s.TotalPagar, &s.Estado, &s.EstadoPago,
			&s.FechaEnvio, &s.FechaEntregaEstimada, &s.FechaRegistro,
			&s.ClienteNombre,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *repository) Insert(ctx context.Context, o Order) (int64, error) {
	const query = `
		INSERT INTO ordenes (numero_orden, id_cliente, id_direccion, id_direccion_recoleccion,
			tipo_orden, tipo_entrega, id_tipo_pago, id_tipo_documento,
			costo_adicional, total_pagar, estado, estado_pago,
			fecha_envio, fecha_entrega_estimada, fecha_registro)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query,
		o.NumeroOrden, o.IDCliente, o.IDDireccion, o.IDDireccionRecoleccion,
		o.TipoOrden, o.TipoEntrega, o.IDTipoPago, o.IDTipoDocumento,
		o.CostoAdicional, o.TotalPagar, o.Estado, o.EstadoPago,
		o.FechaEnvio, o.FechaEntregaEstimada,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("orden %s: %w", o.NumeroOrden, httpx.ErrDuplicate)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) InsertDetail(ctx context.Context, d PackageDetail) (int64, error) {
	const query = `
		INSERT INTO detalle_ordenes (id_orden, id_tipo_paquete, id_empaque, peso, tamano, descripcion_contenido, precio)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query,
		d.IDOrden, d.IDTipoPaquete, d.IDEmpaque, d.Peso, d.Tamano, d.DescripcionContenido, d.Precio,
	).Scan(&id)
	return id, err
}

func (r *repository) UpdateEstado(ctx context.Context, id int64, estado Estado) error {
	tag, err := r.db.Exec(ctx, "UPDATE ordenes SET estado = $1 WHERE id = $2", estado, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("orden %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func (r *repository) UpdateEstadoPago(ctx context.Context, id int64, estadoPago EstadoPago) error {
	tag, err := r.db.Exec(ctx, "UPDATE ordenes SET estado_pago = $1 WHERE id = $2", estadoPago, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("orden %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// GenerateNumber produces the next document number, ORD-{YYMM}-{SEQ}.
func (r *repository) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	var count int64
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM ordenes").Scan(&count); err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%04d", date.Format("0601"), count+1), nil
}
