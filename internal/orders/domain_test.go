package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstadoTransitions(t *testing.T) {
	assert.True(t, EstadoEnProceso.CanCancel())
	assert.True(t, EstadoEnProceso.CanFinalize())
	assert.False(t, EstadoEnProceso.IsTerminal())

	for _, terminal := range []Estado{EstadoCompletada, EstadoCancelada} {
		assert.False(t, terminal.CanCancel(), string(terminal))
		assert.False(t, terminal.CanFinalize(), string(terminal))
		assert.True(t, terminal.IsTerminal(), string(terminal))
	}
}

func TestEstadoIsValid(t *testing.T) {
	assert.True(t, EstadoEnProceso.IsValid())
	assert.True(t, EstadoCompletada.IsValid())
	assert.True(t, EstadoCancelada.IsValid())
	assert.False(t, Estado("Enviada").IsValid())
	// The underscore is part of the wire value.
	assert.False(t, Estado("En proceso").IsValid())
}
