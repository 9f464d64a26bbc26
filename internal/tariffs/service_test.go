package tariffs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mrspaquetes/paqueteria-api/testing"
)

type stubRepo struct {
	entries     []Entry
	activeCalls int
}

func (s *stubRepo) ListActive(_ context.Context) ([]Entry, error) {
	s.activeCalls++
	var active []Entry
	for _, e := range s.entries {
		if e.Activo {
			active = append(active, e)
		}
	}
	return active, nil
}

func (s *stubRepo) List(_ context.Context) ([]Entry, error) { return s.entries, nil }

func (s *stubRepo) Get(_ context.Context, id int64) (*Entry, error) {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return &s.entries[i], nil
		}
	}
	return nil, nil
}

func (s *stubRepo) Insert(_ context.Context, e Entry) (int64, error) {
	e.ID = int64(len(s.entries) + 1)
	e.Activo = true
	e.ActualizadoEn = time.Now()
	s.entries = append(s.entries, e)
	return e.ID, nil
}

func (s *stubRepo) Update(_ context.Context, id int64, updates map[string]any) error {
	for i := range s.entries {
		if s.entries[i].ID == id {
			if v, ok := updates["precio"]; ok {
				s.entries[i].Precio = v.(float64)
			}
			if v, ok := updates["activo"]; ok {
				s.entries[i].Activo = v.(bool)
			}
		}
	}
	return nil
}

func (s *stubRepo) Deactivate(_ context.Context, id int64) error {
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].Activo = false
		}
	}
	return nil
}

func muni(id int64) *int64 { return &id }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seededRepo() *stubRepo {
	return &stubRepo{entries: []Entry{
		{ID: 1, IDDepartamento: 12, IDMunicipio: muni(215), Tamano: TamanoPequeno, Zona: ZonaUrbana, Precio: 3.50, Activo: true},
		{ID: 2, IDDepartamento: 12, IDMunicipio: nil, Tamano: TamanoPequeno, Zona: ZonaRural, Precio: 5.00, Activo: true},
		{ID: 3, IDDepartamento: 12, IDMunicipio: nil, Tamano: TamanoGrande, Zona: ZonaRural, Precio: 9.75, Activo: true},
		{ID: 4, IDDepartamento: 3, IDMunicipio: muni(44), Tamano: TamanoMediano, Zona: ZonaRural, Precio: 6.25, Activo: true},
	}}
}

func TestLookupExactBeatsFallback(t *testing.T) {
	svc := NewService(testLogger(), seededRepo(), nil, nil)

	quote, ok, err := svc.Lookup(context.Background(), TamanoPequeno, 12, 215)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3.50, quote.Precio)
	assert.Equal(t, ZonaUrbana, quote.Zona)
}

func TestLookupDepartmentFallback(t *testing.T) {
	svc := NewService(testLogger(), seededRepo(), nil, nil)

	// Municipality 300 has no exact row; the department-level row applies.
	quote, ok, err := svc.Lookup(context.Background(), TamanoPequeno, 12, 300)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5.00, quote.Precio)
	assert.Equal(t, ZonaRural, quote.Zona)
}

func TestLookupMissIsNotAnError(t *testing.T) {
	svc := NewService(testLogger(), seededRepo(), nil, nil)

	quote, ok, err := svc.Lookup(context.Background(), TamanoMediano, 9, 100)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, quote.Precio)
}

func TestLookupInvalidSize(t *testing.T) {
	svc := NewService(testLogger(), seededRepo(), nil, nil)

	_, _, err := svc.Lookup(context.Background(), "Enorme", 12, 215)
	require.Error(t, err)
}

func TestZoneRule(t *testing.T) {
	assert.Equal(t, ZonaUrbana, ZoneFor(12, 215))
	assert.Equal(t, ZonaRural, ZoneFor(12, 216))
	assert.Equal(t, ZonaRural, ZoneFor(1, 215))
}

func TestLookupServesFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := seededRepo()
	svc := NewService(testLogger(), repo, NewCache(client, time.Hour), nil)

	_, ok, err := svc.Lookup(context.Background(), TamanoGrande, 12, 999)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = svc.Lookup(context.Background(), TamanoGrande, 12, 999)
	require.NoError(t, err)
	require.True(t, ok)

	// Second lookup must come from Redis, not the repository.
	assert.Equal(t, 1, repo.activeCalls)
}

func TestWritesInvalidateCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := seededRepo()
	svc := NewService(testLogger(), repo, NewCache(client, time.Hour), nil)

	_, ok, err := svc.Lookup(context.Background(), TamanoMediano, 3, 44)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, mr.Exists(cacheKey))

	precio := 7.75
	_, err = svc.UpdateEntry(context.Background(), 4, UpdateEntryRequest{Precio: &precio})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cacheKey))

	quote, ok, err := svc.Lookup(context.Background(), TamanoMediano, 3, 44)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7.75, quote.Precio)
}

func TestCreateRejectsBadSizeAndPrice(t *testing.T) {
	svc := NewService(testLogger(), seededRepo(), nil, nil)

	_, err := svc.Create(context.Background(), CreateEntryRequest{
		IDDepartamento: 1,
		Tamano:         "XL",
		Precio:         0,
	})
	require.Error(t, err)
}
