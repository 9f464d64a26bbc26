package masterdata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mrspaquetes/paqueteria-api/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for master data.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// catalogTables whitelists the dropdown catalogs.
var catalogTables = map[string]string{
	CatalogTipoPaquete:    "tipos_paquete",
	CatalogEmpaques:       "empaques",
	CatalogTipoIncidencia: "tipos_incidencia",
	CatalogTipoPago:       "tipos_pago",
	CatalogTipoDocumento:  "tipos_documento",
	CatalogEstadoPaquete:  "estados_paquete",
}

// ============================================================================
// CLIENTS
// ============================================================================

func (r *Repository) ListClients(ctx context.Context, f ListFilters) ([]Client, int, error) {
	where := "WHERE activo"
	args := []any{}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += fmt.Sprintf(" AND (unaccent(lower(nombre || ' ' || apellido)) LIKE $%d OR lower(email) LIKE $%d)", len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM clientes "+where, args...).Scan(&total); err != nil {
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
		SELECT id, nombre, apellido, email, dui, telefono, fecha_registro, activo
		FROM clientes %s
		ORDER BY apellido, nombre
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Nombre, &c.Apellido, &c.Email, &c.DUI, &c.Telefono, &c.FechaRegistro, &c.Activo); err != nil {
			return nil, 0, err
		}
		clients = append(clients, c)
	}
	return clients, total, rows.Err()
}

func (r *Repository) GetClient(ctx context.Context, id int64) (*Client, error) {
	const query = `
		SELECT id, nombre, apellido, email, dui, telefono, fecha_registro, activo
		FROM clientes WHERE id = $1`
	var c Client
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Nombre, &c.Apellido, &c.Email, &c.DUI, &c.Telefono, &c.FechaRegistro, &c.Activo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("cliente %d: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repository) InsertClient(ctx context.Context, c Client) (int64, error) {
	const query = `
		INSERT INTO clientes (nombre, apellido, email, dui, telefono, fecha_registro, activo)
		VALUES ($1, $2, $3, $4, $5, now(), true)
		RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, query, c.Nombre, c.Apellido, c.Email, c.DUI, c.Telefono).Scan(&id)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return id, nil
}

func (r *Repository) UpdateClient(ctx context.Context, id int64, updates map[string]any) error {
	return r.updateByID(ctx, "clientes", id, updates)
}

// DeactivateClient performs the logical delete used across the system.
func (r *Repository) DeactivateClient(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE clientes SET activo = false WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cliente %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// ============================================================================
// EMPLOYEES
// ============================================================================

func (r *Repository) ListEmployees(ctx context.Context, f ListFilters) ([]Employee, int, error) {
	where := "WHERE activo"
	args := []any{}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += fmt.Sprintf(" AND (unaccent(lower(nombre || ' ' || apellido)) LIKE $%d OR lower(cargo) LIKE $%d)", len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM empleados "+where, args...).Scan(&total); err != nil {
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
		SELECT id, nombre, apellido, email, dui, telefono, cargo, fecha_contratacion, activo
		FROM empleados %s
		ORDER BY apellido, nombre
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.Nombre, &e.Apellido, &e.Email, &e.DUI, &e.Telefono, &e.Cargo, &e.FechaContratacion, &e.Activo); err != nil {
			return nil, 0, err
		}
		employees = append(employees, e)
	}
	return employees, total, rows.Err()
}

func (r *Repository) GetEmployee(ctx context.Context, id int64) (*Employee, error) {
	const query = `
		SELECT id, nombre, apellido, email, dui, telefono, cargo, fecha_contratacion, activo
		FROM empleados WHERE id = $1`
	var e Employee
	err := r.pool.QueryRow(ctx, query, id).Scan(&e.ID, &e.Nombre, &e.Apellido, &e.Email, &e.DUI, &e.Telefono, &e.Cargo, &e.FechaContratacion, &e.Activo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("empleado %d: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}
	return &e, nil
}

func (r *Repository) InsertEmployee(ctx context.Context, e Employee) (int64, error) {
	const query = `
		INSERT INTO empleados (nombre, apellido, email, dui, telefono, cargo, fecha_contratacion, activo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true)
		RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, query, e.Nombre, e.Apellido, e.Email, e.DUI, e.Telefono, e.Cargo, e.FechaContratacion).Scan(&id)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return id, nil
}

func (r *Repository) UpdateEmployee(ctx context.Context, id int64, updates map[string]any) error {
	return r.updateByID(ctx, "empleados", id, updates)
}

func (r *Repository) DeactivateEmployee(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE empleados SET activo = false WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("empleado %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// ============================================================================
// ADDRESSES
// ============================================================================

func (r *Repository) ListAddressesByClient(ctx context.Context, clientID int64) ([]AddressWithNames, error) {
	const query = `
		SELECT d.id, d.id_cliente, d.nombre_contacto, d.telefono, d.id_departamento,
		       d.id_municipio, d.direccion, coalesce(d.referencia, ''), d.activo,
		       dep.nombre, mun.nombre
		FROM direcciones d
		JOIN departamentos dep ON dep.id = d.id_departamento
		JOIN municipios mun ON mun.id = d.id_municipio
		WHERE d.id_cliente = $1 AND d.activo
		ORDER BY d.id`
	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []AddressWithNames
	for rows.Next() {
		var a AddressWithNames
		if err := rows.Scan(&a.ID, &a.IDCliente, &a.NombreContacto, &a.Telefono, &a.IDDepartamento,
			&a.IDMunicipio, &a.Direccion, &a.Referencia, &a.Activo, &a.Departamento, &a.Municipio); err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

func (r *Repository) GetAddress(ctx context.Context, id int64) (*Address, error) {
	const query = `
		SELECT id, id_cliente, nombre_contacto, telefono, id_departamento, id_municipio,
		       direccion, coalesce(referencia, ''), activo
		FROM direcciones WHERE id = $1`
	var a Address
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.IDCliente, &a.NombreContacto, &a.Telefono,
		&a.IDDepartamento, &a.IDMunicipio, &a.Direccion, &a.Referencia, &a.Activo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("dirección %d: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repository) InsertAddress(ctx context.Context, a Address) (int64, error) {
	const query = `
		INSERT INTO direcciones (id_cliente, nombre_contacto, telefono, id_departamento, id_municipio, direccion, referencia, activo)
		VALUES ($1, $2, $3, $4, $5, $6, nullif($7, ''), true)
		RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, query, a.IDCliente, a.NombreContacto, a.Telefono, a.IDDepartamento,
		a.IDMunicipio, a.Direccion, a.Referencia).Scan(&id)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return id, nil
}

func (r *Repository) UpdateAddress(ctx context.Context, id int64, updates map[string]any) error {
	return r.updateByID(ctx, "direcciones", id, updates)
}

func (r *Repository) DeactivateAddress(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE direcciones SET activo = false WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("dirección %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// MunicipalityBelongsTo reports whether the municipality is part of the
// department, used to validate address payloads.
func (r *Repository) MunicipalityBelongsTo(ctx context.Context, municipalityID, departmentID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM municipios WHERE id = $1 AND id_departamento = $2)`,
		municipalityID, departmentID).Scan(&exists)
	return exists, err
}

// ============================================================================
// VEHICLES
// ============================================================================

func (r *Repository) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	const query = `
		SELECT id, placa, marca, modelo, capacidad_kg, id_conductor, activo
		FROM vehiculos WHERE activo ORDER BY placa`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.Placa, &v.Marca, &v.Modelo, &v.CapacidadKg, &v.IDConductor, &v.Activo); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (r *Repository) GetVehicle(ctx context.Context, id int64) (*Vehicle, error) {
	const query = `
		SELECT id, placa, marca, modelo, capacidad_kg, id_conductor, activo
		FROM vehiculos WHERE id = $1`
	var v Vehicle
	err := r.pool.QueryRow(ctx, query, id).Scan(&v.ID, &v.Placa, &v.Marca, &v.Modelo, &v.CapacidadKg, &v.IDConductor, &v.Activo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vehículo %d: %w", id, httpx.ErrNotFound)
		}
		return nil, err
	}
	return &v, nil
}

func (r *Repository) InsertVehicle(ctx context.Context, v Vehicle) (int64, error) {
	const query = `
		INSERT INTO vehiculos (placa, marca, modelo, capacidad_kg, id_conductor, activo)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, query, v.Placa, v.Marca, v.Modelo, v.CapacidadKg, v.IDConductor).Scan(&id)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return id, nil
}

// ============================================================================
// REFERENCE DATA
// ============================================================================

func (r *Repository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, nombre FROM departamentos ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Nombre); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (r *Repository) ListMunicipalities(ctx context.Context, departmentID int64) ([]Municipality, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, id_departamento, nombre FROM municipios WHERE id_departamento = $1 ORDER BY nombre`,
		departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var municipalities []Municipality
	for rows.Next() {
		var m Municipality
		if err := rows.Scan(&m.ID, &m.IDDepartamento, &m.Nombre); err != nil {
			return nil, err
		}
		municipalities = append(municipalities, m)
	}
	return municipalities, rows.Err()
}

func (r *Repository) ListCatalog(ctx context.Context, catalog string) ([]CatalogItem, error) {
	table, ok := catalogTables[catalog]
	if !ok {
		return nil, fmt.Errorf("catálogo %q: %w", catalog, httpx.ErrNotFound)
	}
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT id, nombre FROM %s ORDER BY id`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CatalogItem
	for rows.Next() {
		var item CatalogItem
		if err := rows.Scan(&item.ID, &item.Nombre); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ============================================================================
// HELPERS
// ============================================================================

func (r *Repository) updateByID(ctx context.Context, table string, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	setClauses := make([]string, 0, len(updates))
	args := make([]any, 0, len(updates)+1)
	for column, value := range updates {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(setClauses, ", "), len(args))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", table, id, httpx.ErrNotFound)
	}
	return nil
}

// mapConstraint converts unique violations into the duplicate sentinel.
func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("registro duplicado (%s): %w", pgErr.ConstraintName, httpx.ErrDuplicate)
	}
	return err
}
