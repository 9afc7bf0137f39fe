package network

import (
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish(t *testing.T) {
	tests := []struct {
		name    string
		ports   []string
		want    []string
		wantErr bool
	}{
		{name: "single", ports: []string{"10009"}, want: []string{"10009"}},
		{name: "several", ports: []string{"8080", "9735", "10009"}, want: []string{"8080", "9735", "10009"}},
		{name: "skips empty", ports: []string{"", "5050"}, want: []string{"5050"}},
		{name: "none", ports: nil, want: []string{}},
		{name: "not a number", ports: []string{"abc"}, wantErr: true},
		{name: "out of range", ports: []string{"70000"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Publish(tt.ports...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Ports())
		})
	}
}

func TestPublishBindsAllInterfaces(t *testing.T) {
	got, err := Publish("11111")
	require.NoError(t, err)

	port := nat.Port("11111/tcp")
	assert.Contains(t, got.Exposed, port)
	require.Len(t, got.Bindings[port], 1)
	assert.Equal(t, "0.0.0.0", got.Bindings[port][0].HostIP)
	assert.Equal(t, "11111", got.Bindings[port][0].HostPort)
}
