package incidents

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrspaquetes/paqueteria-api/internal/platform/httpx"
	_ "github.com/mrspaquetes/paqueteria-api/testing"
)

func TestEstadoAcceptsLegacyCodes(t *testing.T) {
	cases := []struct {
		payload string
		want    EstadoIncidencia
	}{
		{`1`, EstadoAbierta},
		{`2`, EstadoEnProceso},
		{`3`, EstadoCerrada},
		{`"Abierta"`, EstadoAbierta},
		{`"En Proceso"`, EstadoEnProceso},
		{`"Cerrada"`, EstadoCerrada},
	}
	for _, tc := range cases {
		var got EstadoIncidencia
		require.NoError(t, json.Unmarshal([]byte(tc.payload), &got), tc.payload)
		assert.Equal(t, tc.want, got, tc.payload)
		assert.True(t, got.IsValid())
	}
}

func TestEstadoUnknownValuesFailValidation(t *testing.T) {
	var got EstadoIncidencia
	require.NoError(t, json.Unmarshal([]byte(`9`), &got))
	assert.False(t, got.IsValid())

	require.NoError(t, json.Unmarshal([]byte(`"Pendiente"`), &got))
	assert.False(t, got.IsValid())
}

func TestEstadoAlwaysMarshalsAsString(t *testing.T) {
	var got EstadoIncidencia
	require.NoError(t, json.Unmarshal([]byte(`2`), &got))

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Equal(t, `"En Proceso"`, string(out))
}

// stubRepo backs the service tests.
type stubRepo struct {
	incidents map[int64]*Incidencia
	nextID    int64
}

func newStubRepo() *stubRepo { return &stubRepo{incidents: map[int64]*Incidencia{}} }

func (s *stubRepo) List(_ context.Context, f ListFilters) ([]Incidencia, int, error) {
	var out []Incidencia
	for _, in := range s.incidents {
		out = append(out, *in)
	}
	return out, len(out), nil
}

func (s *stubRepo) Get(_ context.Context, id int64) (*Incidencia, error) {
	in, ok := s.incidents[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return in, nil
}

func (s *stubRepo) Insert(_ context.Context, in Incidencia) (int64, error) {
	s.nextID++
	in.ID = s.nextID
	in.FechaRegistro = time.Now()
	s.incidents[in.ID] = &in
	return in.ID, nil
}

func (s *stubRepo) Update(_ context.Context, id int64, updates map[string]any) error {
	in, ok := s.incidents[id]
	if !ok {
		return httpx.ErrNotFound
	}
	if v, ok := updates["estado"]; ok {
		in.Estado = v.(EstadoIncidencia)
	}
	if v, ok := updates["solucion"]; ok {
		in.Solucion = v.(string)
	}
	if v, ok := updates["descripcion"]; ok {
		in.Descripcion = v.(string)
	}
	return nil
}

func create(t *testing.T, svc *Service) *Incidencia {
	t.Helper()
	incident, err := svc.Create(context.Background(), CreateIncidentRequest{
		IDPaquete:        4,
		IDTipoIncidencia: 2,
		Descripcion:      "Paquete dañado en tránsito",
		FechaIncidencia:  time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return incident
}

func TestCreateStartsOpen(t *testing.T) {
	svc := NewService(newStubRepo())
	incident := create(t, svc)
	assert.Equal(t, EstadoAbierta, incident.Estado)
}

func TestCloseRequiresSolution(t *testing.T) {
	svc := NewService(newStubRepo())
	incident := create(t, svc)

	cerrada := EstadoCerrada
	_, err := svc.Update(context.Background(), incident.ID, UpdateIncidentRequest{Estado: &cerrada})
	var fields httpx.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "solucion")

	solucion := "Se reembolsó al cliente"
	closed, err := svc.Update(context.Background(), incident.ID, UpdateIncidentRequest{
		Estado:   &cerrada,
		Solucion: &solucion,
	})
	require.NoError(t, err)
	assert.Equal(t, EstadoCerrada, closed.Estado)
	assert.Equal(t, solucion, closed.Solucion)
}

func TestUpdateRejectsUnknownEstado(t *testing.T) {
	svc := NewService(newStubRepo())
	incident := create(t, svc)

	bogus := EstadoIncidencia("Pendiente")
	_, err := svc.Update(context.Background(), incident.ID, UpdateIncidentRequest{Estado: &bogus})
	var fields httpx.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "estado")
}
