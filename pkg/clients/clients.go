package clients

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/cuemby/swarm/pkg/images"
	"github.com/lightningnetwork/lnd/lnrpc"
)

// Lightning is the node operations the dispatcher needs
type Lightning interface {
	GetInfo(ctx context.Context) (*lnrpc.GetInfoResponse, error)
	ListChannels(ctx context.Context) (*lnrpc.ListChannelsResponse, error)
	AddPeer(ctx context.Context, pubkey, host string) (*lnrpc.ConnectPeerResponse, error)
	ListPeers(ctx context.Context) (*lnrpc.ListPeersResponse, error)
	AddChannel(ctx context.Context, pubkey string, amount, pushAmount int64) (*lnrpc.ChannelPoint, error)
	NewAddress(ctx context.Context) (*lnrpc.NewAddressResponse, error)
	GetBalance(ctx context.Context) (*lnrpc.WalletBalanceResponse, error)
	AddInvoice(ctx context.Context, amt int64) (*lnrpc.AddInvoiceResponse, error)
	PayInvoice(ctx context.Context, paymentRequest string) (*lnrpc.SendResponse, error)
	PayKeysend(ctx context.Context, dest string, amt int64) (*lnrpc.SendResponse, error)
	Close() error
}

// Chain is the chain node operations the dispatcher needs
type Chain interface {
	GetInfo(ctx context.Context) (*ChainInfo, error)
	TestMine(ctx context.Context, blocks int64, address string) ([]string, error)
	GetBalance(ctx context.Context) (float64, error)
	Close() error
}

// Relay is the chat relay admin API
type Relay interface {
	AddUser(ctx context.Context, initialSats *uint64) (json.RawMessage, error)
	ListUsers(ctx context.Context) (json.RawMessage, error)
	GetChats(ctx context.Context) (json.RawMessage, error)
	AddDefaultTribe(ctx context.Context, id uint16) (json.RawMessage, error)
	RemoveDefaultTribe(ctx context.Context, id uint16) (json.RawMessage, error)
	CreateTribe(ctx context.Context, name string) (json.RawMessage, error)
}

// Proxy is the payment proxy admin API
type Proxy interface {
	GetBalance(ctx context.Context) (json.RawMessage, error)
}

// Boltwall is the auth gateway admin API. Responses are passed through
// as returned.
type Boltwall interface {
	AddAdminPubkey(ctx context.Context, pubkey string) (string, error)
	GetSuperAdmin(ctx context.Context) (string, error)
	AddSubAdminPubkey(ctx context.Context, pubkey string) (string, error)
	ListAdmins(ctx context.Context) (string, error)
	DeleteSubAdmin(ctx context.Context, pubkey string) (string, error)
	ListPaidEndpoint(ctx context.Context) (string, error)
	UpdatePaidEndpoint(ctx context.Context, id uint64, status bool) (string, error)
}

// Registry holds one client per connected node, keyed by node name. It is
// safe for concurrent use; the dispatcher additionally serializes commands.
type Registry struct {
	mu       sync.RWMutex
	lnd      map[string]Lightning
	bitcoind map[string]Chain
	relay    map[string]Relay
	proxy    map[string]Proxy
	boltwall map[string]Boltwall
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		lnd:      make(map[string]Lightning),
		bitcoind: make(map[string]Chain),
		relay:    make(map[string]Relay),
		proxy:    make(map[string]Proxy),
		boltwall: make(map[string]Boltwall),
	}
}

func (r *Registry) SetLnd(name string, c Lightning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lnd[name] = c
}

func (r *Registry) SetBitcoind(name string, c Chain) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bitcoind[name] = c
}

func (r *Registry) SetRelay(name string, c Relay) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.relay[name] = c
}

func (r *Registry) SetProxy(name string, c Proxy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.proxy[name] = c
}

func (r *Registry) SetBoltwall(name string, c Boltwall) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boltwall[name] = c
}

func (r *Registry) Lnd(name string) (Lightning, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.lnd[name]
	return c, ok
}

func (r *Registry) Bitcoind(name string) (Chain, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.bitcoind[name]
	return c, ok
}

func (r *Registry) Relay(name string) (Relay, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.relay[name]
	return c, ok
}

func (r *Registry) Proxy(name string) (Proxy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.proxy[name]
	return c, ok
}

func (r *Registry) Boltwall(name string) (Boltwall, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.boltwall[name]
	return c, ok
}

// Remove drops every client registered under name, closing the ones that
// hold connections
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.lnd[name]; ok {
		_ = c.Close()
		delete(r.lnd, name)
	}
	if c, ok := r.bitcoind[name]; ok {
		_ = c.Close()
		delete(r.bitcoind, name)
	}
	delete(r.relay, name)
	delete(r.proxy, name)
	delete(r.boltwall, name)
}

// Names returns every node name with at least one client, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for n := range r.lnd {
		seen[n] = struct{}{}
	}
	for n := range r.bitcoind {
		seen[n] = struct{}{}
	}
	for n := range r.relay {
		seen[n] = struct{}{}
	}
	for n := range r.proxy {
		seen[n] = struct{}{}
	}
	for n := range r.boltwall {
		seen[n] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Close closes and removes every client
func (r *Registry) Close() {
	for _, name := range r.Names() {
		r.Remove(name)
	}
}

// Host returns the address clients use to reach a node: its docker
// hostname when the control process runs inside the stack network,
// localhost otherwise
func Host(name string, dockerRun bool) string {
	if dockerRun {
		return images.Domain(name)
	}
	return "localhost"
}
