package masterdata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrspaquetes/paqueteria-api/internal/platform/httpx"
	"github.com/mrspaquetes/paqueteria-api/internal/shared"
	_ "github.com/mrspaquetes/paqueteria-api/testing"
)

// stubRepo is an in-memory Repo for service tests.
type stubRepo struct {
	clients    map[int64]*Client
	employees  map[int64]*Employee
	addresses  map[int64]*Address
	vehicles   map[int64]*Vehicle
	nextID     int64
	muniByDept map[int64]int64

	lastClientUpdates map[string]any
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		clients:    map[int64]*Client{},
		employees:  map[int64]*Employee{},
		addresses:  map[int64]*Address{},
		vehicles:   map[int64]*Vehicle{},
		muniByDept: map[int64]int64{},
	}
}

func (s *stubRepo) id() int64 { s.nextID++; return s.nextID }

func (s *stubRepo) ListClients(_ context.Context, f ListFilters) ([]Client, int, error) {
	out := []Client{}
	for _, c := range s.clients {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (s *stubRepo) GetClient(_ context.Context, id int64) (*Client, error) {
	c, ok := s.clients[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (s *stubRepo) InsertClient(_ context.Context, c Client) (int64, error) {
	c.ID = s.id()
	c.Activo = true
	s.clients[c.ID] = &c
	return c.ID, nil
}

func (s *stubRepo) UpdateClient(_ context.Context, id int64, updates map[string]any) error {
	c, ok := s.clients[id]
	if !ok {
		return shared.ErrNotFound
	}
	s.lastClientUpdates = updates
	if v, ok := updates["nombre"]; ok {
		c.Nombre = v.(string)
	}
	if v, ok := updates["telefono"]; ok {
		c.Telefono = v.(string)
	}
	return nil
}

func (s *stubRepo) DeactivateClient(_ context.Context, id int64) error {
	c, ok := s.clients[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.Activo = false
	return nil
}

func (s *stubRepo) ListEmployees(_ context.Context, f ListFilters) ([]Employee, int, error) {
	return nil, 0, nil
}

func (s *stubRepo) GetEmployee(_ context.Context, id int64) (*Employee, error) {
	e, ok := s.employees[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return e, nil
}

func (s *stubRepo) InsertEmployee(_ context.Context, e Employee) (int64, error) {
	e.ID = s.id()
	e.Activo = true
	s.employees[e.ID] = &e
	return e.ID, nil
}

func (s *stubRepo) UpdateEmployee(_ context.Context, id int64, updates map[string]any) error {
	if _, ok := s.employees[id]; !ok {
		return shared.ErrNotFound
	}
	return nil
}

func (s *stubRepo) DeactivateEmployee(_ context.Context, id int64) error {
	e, ok := s.employees[id]
	if !ok {
		return shared.ErrNotFound
	}
	e.Activo = false
	return nil
}

func (s *stubRepo) ListAddressesByClient(_ context.Context, clientID int64) ([]AddressWithNames, error) {
	return nil, nil
}

func (s *stubRepo) GetAddress(_ context.Context, id int64) (*Address, error) {
	a, ok := s.addresses[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return a, nil
}

func (s *stubRepo) InsertAddress(_ context.Context, a Address) (int64, error) {
	a.ID = s.id()
	a.Activo = true
	s.addresses[a.ID] = &a
	return a.ID, nil
}

func (s *stubRepo) UpdateAddress(_ context.Context, id int64, updates map[string]any) error {
	if _, ok := s.addresses[id]; !ok {
		return shared.ErrNotFound
	}
	return nil
}

func (s *stubRepo) DeactivateAddress(_ context.Context, id int64) error {
	a, ok := s.addresses[id]
	if !ok {
		return shared.ErrNotFound
	}
	a.Activo = false
	return nil
}

func (s *stubRepo) MunicipalityBelongsTo(_ context.Context, municipalityID, departmentID int64) (bool, error) {
	return s.muniByDept[municipalityID] == departmentID, nil
}

func (s *stubRepo) ListVehicles(_ context.Context) ([]Vehicle, error) { return nil, nil }

func (s *stubRepo) GetVehicle(_ context.Context, id int64) (*Vehicle, error) {
	v, ok := s.vehicles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return v, nil
}

func (s *stubRepo) InsertVehicle(_ context.Context, v Vehicle) (int64, error) {
	v.ID = s.id()
	v.Activo = true
	s.vehicles[v.ID] = &v
	return v.ID, nil
}

func (s *stubRepo) ListDepartments(_ context.Context) ([]Department, error) { return nil, nil }

func (s *stubRepo) ListMunicipalities(_ context.Context, departmentID int64) ([]Municipality, error) {
	return nil, nil
}

func (s *stubRepo) ListCatalog(_ context.Context, catalog string) ([]CatalogItem, error) {
	return nil, nil
}

func TestCreateClientFormatsDocuments(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	client, err := svc.CreateClient(context.Background(), CreateClientRequest{
		Nombre:   "  María ",
		Apellido: "Pérez",
		Email:    " Maria@Example.COM ",
		DUI:      "123456789",
		Telefono: "61234567",
	})
	require.NoError(t, err)
	assert.Equal(t, "01234567-8", client.DUI)
	assert.Equal(t, "6123-4567", client.Telefono)
	assert.Equal(t, "maria@example.com", client.Email)
	assert.Equal(t, "María", client.Nombre)
}

func TestCreateClientRejectsLandline(t *testing.T) {
	svc := NewService(newStubRepo())

	_, err := svc.CreateClient(context.Background(), CreateClientRequest{
		Nombre:   "Juan",
		Apellido: "López",
		Email:    "juan@example.com",
		DUI:      "04567891-2",
		Telefono: "2123-4567",
	})
	var fields httpx.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "telefono")
}

func TestCreateClientAccumulatesFieldErrors(t *testing.T) {
	svc := NewService(newStubRepo())

	_, err := svc.CreateClient(context.Background(), CreateClientRequest{
		Nombre:   "Ana",
		Apellido: "Ruiz",
		Email:    "ana@example.com",
		DUI:      "12",
		Telefono: "999",
	})
	var fields httpx.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Len(t, fields, 2)
}

func TestUpdateClientPartial(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	created, err := svc.CreateClient(context.Background(), CreateClientRequest{
		Nombre:   "Carlos",
		Apellido: "Gómez",
		Email:    "carlos@example.com",
		DUI:      "045678912",
		Telefono: "7123-4567",
	})
	require.NoError(t, err)

	phone := "69876543"
	updated, err := svc.UpdateClient(context.Background(), created.ID, UpdateClientRequest{
		Telefono: &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "6987-6543", updated.Telefono)
	assert.Equal(t, "Carlos", updated.Nombre)
	// Only the phone column should be touched.
	assert.Len(t, repo.lastClientUpdates, 1)
}

func TestCreateEmployeeAcceptsLandline(t *testing.T) {
	svc := NewService(newStubRepo())

	employee, err := svc.CreateEmployee(context.Background(), CreateEmployeeRequest{
		Nombre:   "Laura",
		Apellido: "Martínez",
		Email:    "laura@example.com",
		DUI:      "056789123",
		Telefono: "21234567",
		Cargo:    "Operador",
	})
	require.NoError(t, err)
	assert.Equal(t, "2123-4567", employee.Telefono)
}

func TestCreateAddressGeographicMismatch(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	client, err := svc.CreateClient(context.Background(), CreateClientRequest{
		Nombre:   "Sofía",
		Apellido: "Hernández",
		Email:    "sofia@example.com",
		DUI:      "067891234",
		Telefono: "6111-2222",
	})
	require.NoError(t, err)

	repo.muniByDept[215] = 12

	_, err = svc.CreateAddress(context.Background(), CreateAddressRequest{
		IDCliente:      client.ID,
		NombreContacto: "Sofía Hernández",
		Telefono:       "6111-2222",
		IDDepartamento: 5,
		IDMunicipio:    215,
		Direccion:      "Col. Centro #4",
	})
	var fields httpx.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "id_municipio")

	address, err := svc.CreateAddress(context.Background(), CreateAddressRequest{
		IDCliente:      client.ID,
		NombreContacto: "Sofía Hernández",
		Telefono:       "6111-2222",
		IDDepartamento: 12,
		IDMunicipio:    215,
		Direccion:      "Col. Centro #4",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), address.IDDepartamento)
}

func TestCreateAddressUnknownClient(t *testing.T) {
	repo := newStubRepo()
	repo.muniByDept[1] = 1
	svc := NewService(repo)

	_, err := svc.CreateAddress(context.Background(), CreateAddressRequest{
		IDCliente:      99,
		NombreContacto: "Alguien",
		Telefono:       "6111-2222",
		IDDepartamento: 1,
		IDMunicipio:    1,
		Direccion:      "Calle 1",
	})
	var fields httpx.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "id_cliente")
}

func TestCreateVehicleRequiresExistingDriver(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	driver := int64(42)
	_, err := svc.CreateVehicle(context.Background(), CreateVehicleRequest{
		Placa:       "p123-456",
		Marca:       "Toyota",
		Modelo:      "Hilux",
		CapacidadKg: 800,
		IDConductor: &driver,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	vehicle, err := svc.CreateVehicle(context.Background(), CreateVehicleRequest{
		Placa:       "p123-456",
		Marca:       "Toyota",
		Modelo:      "Hilux",
		CapacidadKg: 800,
	})
	require.NoError(t, err)
	assert.Equal(t, "P123-456", vehicle.Placa)
}

func TestDeleteClientIsLogical(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	client, err := svc.CreateClient(context.Background(), CreateClientRequest{
		Nombre:   "Diego",
		Apellido: "Flores",
		Email:    "diego@example.com",
		DUI:      "078912345",
		Telefono: "7999-8888",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteClient(context.Background(), client.ID))
	stored, err := repo.GetClient(context.Background(), client.ID)
	require.NoError(t, err)
	assert.False(t, stored.Activo)
}
