package collection

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrspaquetes/paqueteria-api/internal/masterdata"
	"github.com/mrspaquetes/paqueteria-api/internal/orders"
	"github.com/mrspaquetes/paqueteria-api/internal/platform/httpx"
	_ "github.com/mrspaquetes/paqueteria-api/testing"
)

type stubRepo struct {
	routes     map[int64]*RutaRecoleccion
	collection map[int64]*OrdenRecoleccion
	nextID     int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{routes: map[int64]*RutaRecoleccion{}, collection: map[int64]*OrdenRecoleccion{}}
}

func (s *stubRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, s)
}

func (s *stubRepo) GetRoute(_ context.Context, id int64) (*RutaRecoleccion, error) {
	r, ok := s.routes[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	copied := *r
	copied.Ordenes = nil
	for _, o := range s.collection {
		if o.IDRuta != nil && *o.IDRuta == id {
			copied.Ordenes = append(copied.Ordenes, *o)
		}
	}
	return &copied, nil
}

func (s *stubRepo) ListRoutes(_ context.Context) ([]RutaRecoleccion, error) {
	var out []RutaRecoleccion
	for _, r := range s.routes {
		out = append(out, *r)
	}
	return out, nil
}

func (s *stubRepo) InsertRoute(_ context.Context, r RutaRecoleccion) (int64, error) {
	s.nextID++
	r.ID = s.nextID
	s.routes[r.ID] = &r
	return r.ID, nil
}

func (s *stubRepo) UpdateRouteEstado(_ context.Context, id int64, estado string) error {
	r, ok := s.routes[id]
	if !ok {
		return httpx.ErrNotFound
	}
	r.Estado = estado
	return nil
}

func (s *stubRepo) GetCollectionOrder(_ context.Context, id int64) (*OrdenRecoleccion, error) {
	o, ok := s.collection[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return o, nil
}

func (s *stubRepo) FindByPreorder(_ context.Context, preorderID int64) (*OrdenRecoleccion, error) {
	for _, o := range s.collection {
		if o.IDPreorden == preorderID {
			return o, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (s *stubRepo) InsertCollectionOrder(_ context.Context, o OrdenRecoleccion) (int64, error) {
	s.nextID++
	o.ID = s.nextID
	o.FechaCreacion = time.Now()
	s.collection[o.ID] = &o
	return o.ID, nil
}

func (s *stubRepo) AttachToRoute(_ context.Context, collectionOrderID, routeID int64, prioridad int) error {
	o, ok := s.collection[collectionOrderID]
	if !ok {
		return httpx.ErrNotFound
	}
	o.IDRuta = &routeID
	o.Prioridad = &prioridad
	return nil
}

func (s *stubRepo) MaxPriority(_ context.Context, routeID int64) (int, error) {
	max := 0
	for _, o := range s.collection {
		if o.IDRuta != nil && *o.IDRuta == routeID && o.Prioridad != nil && *o.Prioridad > max {
			max = *o.Prioridad
		}
	}
	return max, nil
}

func (s *stubRepo) UpdatePriority(_ context.Context, routeID, collectionOrderID int64, prioridad int) error {
	o, ok := s.collection[collectionOrderID]
	if !ok || o.IDRuta == nil || *o.IDRuta != routeID {
		return httpx.ErrNotFound
	}
	o.Prioridad = &prioridad
	return nil
}

type stubOrders struct {
	orders map[int64]*orders.Order
}

func (s *stubOrders) Get(_ context.Context, id int64) (*orders.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return o, nil
}

type stubVehicles struct {
	vehicles map[int64]*masterdata.Vehicle
}

func (s *stubVehicles) GetVehicle(_ context.Context, id int64) (*masterdata.Vehicle, error) {
	v, ok := s.vehicles[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return v, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func preorder(id int64) *orders.Order {
	return &orders.Order{ID: id, TipoOrden: orders.TipoPreorden, Estado: orders.EstadoEnProceso}
}

func fixture() (*Service, *stubRepo) {
	repo := newStubRepo()
	orderLookup := &stubOrders{orders: map[int64]*orders.Order{
		1: preorder(1),
		2: preorder(2),
		3: preorder(3),
		4: {ID: 4, TipoOrden: orders.TipoOrden, Estado: orders.EstadoEnProceso},
		5: {ID: 5, TipoOrden: orders.TipoPreorden, Estado: orders.EstadoCancelada},
	}}
	vehicles := &stubVehicles{vehicles: map[int64]*masterdata.Vehicle{
		7: {ID: 7, Placa: "P123-456"},
	}}
	return NewService(testLogger(), repo, orderLookup, vehicles), repo
}

func newRoute(t *testing.T, svc *Service) *RutaRecoleccion {
	t.Helper()
	route, err := svc.CreateRoute(context.Background(), CreateRouteRequest{
		IDVehiculo:      7,
		FechaAsignacion: time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return route
}

func TestCreateRouteUnknownVehicle(t *testing.T) {
	svc, _ := fixture()

	_, err := svc.CreateRoute(context.Background(), CreateRouteRequest{
		IDVehiculo:      99,
		FechaAsignacion: time.Now(),
	})
	var fields httpx.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "id_vehiculo")
}

func TestAssignSequentialPriorities(t *testing.T) {
	svc, _ := fixture()
	route := newRoute(t, svc)

	assigned, err := svc.Assign(context.Background(), route.ID, AssignRequest{IDsPreordenes: []int64{1, 2}})
	require.NoError(t, err)
	require.Len(t, assigned.Ordenes, 2)

	priorities := map[int64]int{}
	for _, o := range assigned.Ordenes {
		require.NotNil(t, o.Prioridad)
		priorities[o.IDPreorden] = *o.Prioridad
	}
	assert.Equal(t, 1, priorities[1])
	assert.Equal(t, 2, priorities[2])

	// A later batch continues after the current maximum.
	assigned, err = svc.Assign(context.Background(), route.ID, AssignRequest{IDsPreordenes: []int64{3}})
	require.NoError(t, err)
	require.Len(t, assigned.Ordenes, 3)
	for _, o := range assigned.Ordenes {
		if o.IDPreorden == 3 {
			assert.Equal(t, 3, *o.Prioridad)
		}
	}
}

func TestAssignRejectsNonPreorder(t *testing.T) {
	svc, _ := fixture()
	route := newRoute(t, svc)

	_, err := svc.Assign(context.Background(), route.ID, AssignRequest{IDsPreordenes: []int64{4}})
	var fields httpx.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields["ids_preordenes.0"], "La orden no es una preorden")
}

func TestAssignRejectsCancelledPreorder(t *testing.T) {
	svc, _ := fixture()
	route := newRoute(t, svc)

	_, err := svc.Assign(context.Background(), route.ID, AssignRequest{IDsPreordenes: []int64{5}})
	var fields httpx.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields["ids_preordenes.0"], "La preorden no está en proceso")
}

func TestAssignRejectsAlreadyAssigned(t *testing.T) {
	svc, _ := fixture()
	route := newRoute(t, svc)

	_, err := svc.Assign(context.Background(), route.ID, AssignRequest{IDsPreordenes: []int64{1}})
	require.NoError(t, err)

	other := newRoute(t, svc)
	_, err = svc.Assign(context.Background(), other.ID, AssignRequest{IDsPreordenes: []int64{1}})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestAssignReusesUnattachedCollectionOrder(t *testing.T) {
	svc, repo := fixture()
	route := newRoute(t, svc)

	created, err := svc.CreateCollectionOrder(context.Background(), CreateCollectionOrderRequest{IDPreorden: 2})
	require.NoError(t, err)
	require.Nil(t, created.IDRuta)

	assigned, err := svc.Assign(context.Background(), route.ID, AssignRequest{IDsPreordenes: []int64{2}})
	require.NoError(t, err)
	require.Len(t, assigned.Ordenes, 1)
	assert.Equal(t, created.ID, assigned.Ordenes[0].ID)

	// No second collection order was created for the same preorder.
	count := 0
	for _, o := range repo.collection {
		if o.IDPreorden == 2 {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestUpdatePriorityAllowsTies(t *testing.T) {
	svc, _ := fixture()
	route := newRoute(t, svc)

	assigned, err := svc.Assign(context.Background(), route.ID, AssignRequest{IDsPreordenes: []int64{1, 2}})
	require.NoError(t, err)

	var first OrdenRecoleccion
	for _, o := range assigned.Ordenes {
		if o.IDPreorden == 2 {
			first = o
		}
	}
	updated, err := svc.UpdatePriority(context.Background(), route.ID, first.ID, UpdatePriorityRequest{Prioridad: 1})
	require.NoError(t, err)

	ties := 0
	for _, o := range updated.Ordenes {
		if o.Prioridad != nil && *o.Prioridad == 1 {
			ties++
		}
	}
	assert.Equal(t, 2, ties)
}

func TestFinalizeRouteBlocksFurtherWork(t *testing.T) {
	svc, _ := fixture()
	route := newRoute(t, svc)

	done, err := svc.FinalizeRoute(context.Background(), route.ID)
	require.NoError(t, err)
	assert.Equal(t, RutaFinalizada, done.Estado)

	_, err = svc.FinalizeRoute(context.Background(), route.ID)
	assert.ErrorIs(t, err, httpx.ErrInvalidState)

	_, err = svc.Assign(context.Background(), route.ID, AssignRequest{IDsPreordenes: []int64{1}})
	assert.ErrorIs(t, err, httpx.ErrInvalidState)
}

func TestCreateCollectionOrderDuplicate(t *testing.T) {
	svc, _ := fixture()

	_, err := svc.CreateCollectionOrder(context.Background(), CreateCollectionOrderRequest{IDPreorden: 1})
	require.NoError(t, err)

	_, err = svc.CreateCollectionOrder(context.Background(), CreateCollectionOrderRequest{IDPreorden: 1})
	var fields httpx.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "id_preorden")
}
