package images

import (
	"fmt"
	"net/url"

	"github.com/cuemby/swarm/pkg/runtime"
	"github.com/cuemby/swarm/pkg/types"
)

func buildCache(c *types.Cache, bc *BuildContext) (*runtime.ContainerSpec, error) {
	memes, err := External(c, bc.Nodes, types.ExternalMeme)
	if err != nil {
		return nil, err
	}
	tribes, err := External(c, bc.Nodes, types.ExternalTribes)
	if err != nil {
		return nil, err
	}

	memeHost, err := hostOf(memes.URL)
	if err != nil {
		return nil, err
	}
	mqttHost, err := hostOf(tribes.URL)
	if err != nil {
		return nil, err
	}

	spec := newSpec(c, bc, "/cache/data", c.Port)
	spec.Env = []string{
		"PRIVATE_KEY=" + c.PrivKey,
		"MQTT_HOST=" + mqttHost,
		"MQTT_PORT=1883",
		"MQTT_CLIENT_ID=local-123",
		fmt.Sprintf("LOG_INCOMING=%t", c.Log),
		"RSA_KEY=" + c.RSAKey,
		"MEME_HOST=" + memeHost,
	}
	return spec, nil
}

// hostOf extracts the hostname of an endpoint given with or without scheme
func hostOf(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		u, err = url.Parse("https://" + endpoint)
	}
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	return u.Hostname(), nil
}
