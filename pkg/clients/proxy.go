package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ProxyClient talks to the payment proxy's admin port
type ProxyClient struct {
	api *adminClient
}

// NewProxyClient creates a client for a proxy admin API at host:adminPort
func NewProxyClient(host, adminPort, token string) *ProxyClient {
	return &ProxyClient{api: newAdminClient(fmt.Sprintf("http://%s:%s", host, adminPort), token)}
}

// GetBalance returns the proxy's total balance across its virtual nodes
func (c *ProxyClient) GetBalance(ctx context.Context) (json.RawMessage, error) {
	data, err := c.api.do(ctx, http.MethodGet, "/balance", nil, true)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("proxy returned invalid json: %q", data)
	}
	return json.RawMessage(data), nil
}
