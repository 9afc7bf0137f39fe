package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetHealth(t *testing.T) {
	t.Helper()
	prev := health
	health = newHealthRegistry()
	t.Cleanup(func() { health = prev })
}

func TestRegisterComponent(t *testing.T) {
	resetHealth(t)

	RegisterComponent("docker", true, "running")

	comp, ok := Component("docker")
	require.True(t, ok)
	assert.True(t, comp.Healthy)
	assert.Equal(t, "running", comp.Message)
	assert.False(t, comp.Updated.IsZero())

	_, ok = Component("api")
	assert.False(t, ok)
}

func TestUpdateComponent(t *testing.T) {
	resetHealth(t)

	RegisterComponent("stack", true, "ok")
	UpdateComponent("stack", false, "unreadable")

	comp, _ := Component("stack")
	assert.False(t, comp.Healthy)
	assert.Equal(t, "unreadable", comp.Message)
}

func TestGetHealth(t *testing.T) {
	tests := []struct {
		name       string
		components map[string]bool
		wantStatus string
		wantStack  string
	}{
		{name: "nothing registered", wantStatus: "healthy"},
		{
			name:       "all healthy",
			components: map[string]bool{"api": true, "stack": true},
			wantStatus: "healthy",
			wantStack:  "healthy",
		},
		{
			name:       "one unhealthy",
			components: map[string]bool{"api": true, "stack": false},
			wantStatus: "unhealthy",
			wantStack:  "unhealthy: broken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetHealth(t)
			SetVersion("1.0.0")
			for name, ok := range tt.components {
				RegisterComponent(name, ok, "broken")
			}

			h := GetHealth()
			assert.Equal(t, tt.wantStatus, h.Status)
			assert.Equal(t, "1.0.0", h.Version)
			assert.Len(t, h.Components, len(tt.components))
			assert.Equal(t, tt.wantStack, h.Components["stack"])
			assert.NotEmpty(t, h.Uptime)
		})
	}
}
