package environment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/credkit/pkg/environment"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := map[string]environment.Environment{
		"production": environment.Production,
		"PROD":       environment.Production,
		"stage":      environment.Staging,
		"staging":    environment.Staging,
		"dev":        environment.Development,
		"":           environment.Development,
		"qa":         environment.Development,
	}
	for in, want := range tests {
		assert.Equal(t, want, environment.Parse(in), in)
	}
}

func TestEnvironment_UnmarshalText(t *testing.T) {
	t.Parallel()

	var e environment.Environment
	require.NoError(t, e.UnmarshalText([]byte("prod")))
	assert.True(t, e.IsProduction())
	assert.False(t, e.IsDevelopment())
}
