package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cuemby/swarm/pkg/health"
	"github.com/cuemby/swarm/pkg/log"
)

// RelayResponse is the envelope every relay endpoint answers with
type RelayResponse struct {
	Success  bool            `json:"success"`
	Response json.RawMessage `json:"response"`
}

// RelayClient talks to a relay's admin API
type RelayClient struct {
	api *adminClient
}

// NewRelayClient creates a client for a relay at host:port
func NewRelayClient(host, port, token string) *RelayClient {
	return &RelayClient{api: newAdminClient(fmt.Sprintf("http://%s:%s", host, port), token)}
}

// ConnectRelay creates a client and waits until the relay answers its
// setup check
func ConnectRelay(ctx context.Context, host, port, token string, retry health.RetryConfig) (*RelayClient, error) {
	c := NewRelayClient(host, port, token)
	logger := log.WithComponent("clients")

	attempt := 0
	err := health.Wait(ctx, health.CheckFunc(func(ctx context.Context) error {
		attempt++
		_, err := c.IsSetup(ctx)
		if err != nil {
			logger.Info().Int("attempt", attempt).Str("relay", host).Msg("checking for relay setup")
		}
		return err
	}), retry)
	if err != nil {
		return nil, fmt.Errorf("relay api could not set up: %w", err)
	}
	return c, nil
}

func (c *RelayClient) call(ctx context.Context, method, path string, in any, admin bool) (json.RawMessage, error) {
	data, err := c.api.do(ctx, method, path, in, admin)
	if err != nil {
		return nil, err
	}
	var res RelayResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to decode relay response: %w", err)
	}
	if !res.Success {
		return nil, errors.New("relay error: " + string(res.Response))
	}
	return res.Response, nil
}

// IsSetup reports whether the relay finished its initial setup
func (c *RelayClient) IsSetup(ctx context.Context) (bool, error) {
	raw, err := c.call(ctx, http.MethodGet, "/is_setup", nil, false)
	if err != nil {
		return false, err
	}
	var setup bool
	if err := json.Unmarshal(raw, &setup); err != nil {
		return false, fmt.Errorf("failed to decode is_setup: %w", err)
	}
	return setup, nil
}

func (c *RelayClient) AddUser(ctx context.Context, initialSats *uint64) (json.RawMessage, error) {
	path := "/add_user"
	if initialSats != nil {
		path = fmt.Sprintf("%s?sats=%d", path, *initialSats)
	}
	return c.call(ctx, http.MethodGet, path, nil, true)
}

func (c *RelayClient) ListUsers(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, http.MethodGet, "/list_users", nil, true)
}

func (c *RelayClient) GetChats(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, http.MethodGet, "/chats", nil, true)
}

func (c *RelayClient) AddDefaultTribe(ctx context.Context, id uint16) (json.RawMessage, error) {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/default_tribe/%d", id), nil, true)
}

func (c *RelayClient) RemoveDefaultTribe(ctx context.Context, id uint16) (json.RawMessage, error) {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/default_tribe/%d", id), nil, true)
}

type createTribeBody struct {
	Name    string `json:"name"`
	IsTribe bool   `json:"is_tribe"`
}

func (c *RelayClient) CreateTribe(ctx context.Context, name string) (json.RawMessage, error) {
	return c.call(ctx, http.MethodPost, "/group", createTribeBody{Name: name, IsTribe: true}, true)
}
