package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RELAY_BROKER", "")
	t.Setenv("RELAY_FALLBACK_ENABLED", "not-a-bool")

	cfg := Load()

	assert.Equal(t, "", cfg.Relay.Broker)
	assert.True(t, cfg.Relay.FallbackEnabled)
	assert.Equal(t, "nord", cfg.Render.HighlightStyle)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("RELAY_BROKER", "nats")
	t.Setenv("RELAY_FALLBACK_ENABLED", "false")
	t.Setenv("NESTED_HEADINGS", "true")
	t.Setenv("OTEL_ENABLED", "1")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "nats", cfg.Relay.Broker)
	assert.False(t, cfg.Relay.FallbackEnabled)
	assert.True(t, cfg.Render.NestedHeadings)
	assert.True(t, cfg.App.OtelEnabled)
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "go duration", value: "90m", want: 90 * time.Minute},
		{name: "bare seconds", value: "30", want: 30 * time.Second},
		{name: "garbage falls back", value: "soon", want: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			assert.Equal(t, tt.want, getEnvAsDuration("TEST_DURATION", time.Hour))
		})
	}
}
