package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// BoltwallClient talks to the auth gateway's admin endpoints
type BoltwallClient struct {
	api *adminClient
}

// NewBoltwallClient creates a client for a gateway at host:port
func NewBoltwallClient(host, port, token string) *BoltwallClient {
	return &BoltwallClient{api: newAdminClient(fmt.Sprintf("http://%s:%s", host, port), token)}
}

type pubkeyBody struct {
	Pubkey string `json:"pubkey"`
}

type paidEndpointBody struct {
	ID     uint64 `json:"id"`
	Status bool   `json:"status"`
}

func (c *BoltwallClient) text(ctx context.Context, method, path string, in any) (string, error) {
	data, err := c.api.do(ctx, method, path, in, true)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *BoltwallClient) AddAdminPubkey(ctx context.Context, pubkey string) (string, error) {
	return c.text(ctx, http.MethodPost, "/set_admin_pubkey", pubkeyBody{Pubkey: pubkey})
}

func (c *BoltwallClient) GetSuperAdmin(ctx context.Context) (string, error) {
	return c.text(ctx, http.MethodGet, "/super_admin", nil)
}

func (c *BoltwallClient) AddSubAdminPubkey(ctx context.Context, pubkey string) (string, error) {
	return c.text(ctx, http.MethodPost, "/set_subadmin_pubkey", pubkeyBody{Pubkey: pubkey})
}

func (c *BoltwallClient) ListAdmins(ctx context.Context) (string, error) {
	return c.text(ctx, http.MethodGet, "/admins", nil)
}

func (c *BoltwallClient) DeleteSubAdmin(ctx context.Context, pubkey string) (string, error) {
	return c.text(ctx, http.MethodDelete, "/sub_admin/"+url.PathEscape(pubkey), nil)
}

func (c *BoltwallClient) ListPaidEndpoint(ctx context.Context) (string, error) {
	return c.text(ctx, http.MethodGet, "/endpointsList", nil)
}

func (c *BoltwallClient) UpdatePaidEndpoint(ctx context.Context, id uint64, status bool) (string, error) {
	return c.text(ctx, http.MethodPut, "/updateEndpointStatus", paidEndpointBody{ID: id, Status: status})
}
