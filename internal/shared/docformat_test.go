package shared_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrspaquetes/paqueteria-api/internal/shared"
	_ "github.com/mrspaquetes/paqueteria-api/testing"
)

func TestFormatDUI(t *testing.T) {
	formatted, err := shared.FormatDUI("123456789")
	require.NoError(t, err)
	assert.Equal(t, "01234567-8", formatted)
	assert.True(t, shared.ValidDUI(formatted))

	formatted, err = shared.FormatDUI("012345678")
	require.NoError(t, err)
	assert.Equal(t, "01234567-8", formatted)

	_, err = shared.FormatDUI("1234")
	assert.Error(t, err)
}

func TestFormatPhone(t *testing.T) {
	formatted, err := shared.FormatPhone("61234567")
	require.NoError(t, err)
	assert.Equal(t, "6123-4567", formatted)
	assert.True(t, shared.ValidMobile(formatted))
	assert.True(t, shared.ValidContactPhone(formatted))

	formatted, err = shared.FormatPhone("51234567")
	require.NoError(t, err)
	assert.False(t, shared.ValidMobile(formatted))
	assert.False(t, shared.ValidContactPhone(formatted))

	formatted, err = shared.FormatPhone("21234567")
	require.NoError(t, err)
	assert.False(t, shared.ValidMobile(formatted))
	assert.True(t, shared.ValidContactPhone(formatted))

	_, err = shared.FormatPhone("612345")
	assert.Error(t, err)
}

func TestParseWeight(t *testing.T) {
	cases := []struct {
		raw     string
		want    float64
		wantErr error
	}{
		{raw: "12.50", want: 12.5},
		{raw: "1,234.50", want: 1234.5},
		{raw: "3", want: 3},
		{raw: "0.00", wantErr: shared.ErrWeightZero},
		{raw: "0", wantErr: shared.ErrWeightZero},
		{raw: "12.345", wantErr: shared.ErrInvalidWeight},
		{raw: "-4", wantErr: shared.ErrInvalidWeight},
		{raw: "abc", wantErr: shared.ErrInvalidWeight},
	}
	for _, tc := range cases {
		got, err := shared.ParseWeight(tc.raw)
		if tc.wantErr != nil {
			assert.ErrorIs(t, err, tc.wantErr, "weight %q", tc.raw)
			continue
		}
		require.NoError(t, err, "weight %q", tc.raw)
		assert.Equal(t, tc.want, got, "weight %q", tc.raw)
	}
}

func TestNormalizeSearch(t *testing.T) {
	assert.Equal(t, "bartolome perulapia", shared.NormalizeSearch("Bartolomé Perulapía"))
	assert.Equal(t, "san miguel", shared.NormalizeSearch("  San Miguel "))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 17.5, shared.Round2(5.00+10.00+2.50))
	assert.Equal(t, 0.35, shared.Round2(0.345))
}
