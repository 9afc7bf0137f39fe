package clients

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/cuemby/swarm/pkg/security"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/record"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// macaroonCredential attaches a hex macaroon to every RPC
type macaroonCredential struct {
	hex string
}

func (m macaroonCredential) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{"macaroon": m.hex}, nil
}

func (m macaroonCredential) RequireTransportSecurity() bool {
	return true
}

func lndTransport(certPEM []byte) (credentials.TransportCredentials, error) {
	pool, err := security.CertPool(certPEM)
	if err != nil {
		return nil, err
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}), nil
}

// LndClient is a gRPC client for one lnd node
type LndClient struct {
	conn *grpc.ClientConn
	rpc  lnrpc.LightningClient
}

// NewLndClient connects to lnd at host:rpcPort authenticating with the
// node's TLS certificate and admin macaroon
func NewLndClient(host, rpcPort string, certPEM, macaroon []byte) (*LndClient, error) {
	creds, err := lndTransport(certPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to load lnd certificate: %w", err)
	}
	mac, err := security.MacaroonToHex(macaroon)
	if err != nil {
		return nil, fmt.Errorf("failed to load lnd macaroon: %w", err)
	}

	conn, err := grpc.NewClient(net.JoinHostPort(host, rpcPort),
		grpc.WithTransportCredentials(creds),
		grpc.WithPerRPCCredentials(macaroonCredential{hex: mac}))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to lnd: %w", err)
	}
	return &LndClient{conn: conn, rpc: lnrpc.NewLightningClient(conn)}, nil
}

func (c *LndClient) Close() error {
	return c.conn.Close()
}

func (c *LndClient) GetInfo(ctx context.Context) (*lnrpc.GetInfoResponse, error) {
	return c.rpc.GetInfo(ctx, &lnrpc.GetInfoRequest{})
}

func (c *LndClient) ListChannels(ctx context.Context) (*lnrpc.ListChannelsResponse, error) {
	return c.rpc.ListChannels(ctx, &lnrpc.ListChannelsRequest{})
}

func (c *LndClient) AddPeer(ctx context.Context, pubkey, host string) (*lnrpc.ConnectPeerResponse, error) {
	return c.rpc.ConnectPeer(ctx, &lnrpc.ConnectPeerRequest{
		Addr: &lnrpc.LightningAddress{Pubkey: pubkey, Host: host},
	})
}

func (c *LndClient) ListPeers(ctx context.Context) (*lnrpc.ListPeersResponse, error) {
	return c.rpc.ListPeers(ctx, &lnrpc.ListPeersRequest{})
}

func (c *LndClient) AddChannel(ctx context.Context, pubkey string, amount, pushAmount int64) (*lnrpc.ChannelPoint, error) {
	node, err := hex.DecodeString(pubkey)
	if err != nil {
		return nil, fmt.Errorf("invalid pubkey: %w", err)
	}
	return c.rpc.OpenChannelSync(ctx, &lnrpc.OpenChannelRequest{
		NodePubkey:         node,
		LocalFundingAmount: amount,
		PushSat:            pushAmount,
	})
}

func (c *LndClient) NewAddress(ctx context.Context) (*lnrpc.NewAddressResponse, error) {
	return c.rpc.NewAddress(ctx, &lnrpc.NewAddressRequest{Type: lnrpc.AddressType_WITNESS_PUBKEY_HASH})
}

func (c *LndClient) GetBalance(ctx context.Context) (*lnrpc.WalletBalanceResponse, error) {
	return c.rpc.WalletBalance(ctx, &lnrpc.WalletBalanceRequest{})
}

func (c *LndClient) AddInvoice(ctx context.Context, amt int64) (*lnrpc.AddInvoiceResponse, error) {
	return c.rpc.AddInvoice(ctx, &lnrpc.Invoice{Value: amt})
}

func (c *LndClient) PayInvoice(ctx context.Context, paymentRequest string) (*lnrpc.SendResponse, error) {
	return c.send(ctx, &lnrpc.SendRequest{PaymentRequest: paymentRequest})
}

// PayKeysend pays dest without an invoice. The preimage travels in the
// keysend custom record and its hash is the payment hash.
func (c *LndClient) PayKeysend(ctx context.Context, dest string, amt int64) (*lnrpc.SendResponse, error) {
	destKey, err := hex.DecodeString(dest)
	if err != nil {
		return nil, fmt.Errorf("invalid destination: %w", err)
	}
	preimage := make([]byte, 32)
	if _, err := rand.Read(preimage); err != nil {
		return nil, fmt.Errorf("failed to generate preimage: %w", err)
	}
	hash := sha256.Sum256(preimage)

	return c.send(ctx, &lnrpc.SendRequest{
		Dest:              destKey,
		Amt:               amt,
		PaymentHash:       hash[:],
		DestCustomRecords: map[uint64][]byte{record.KeySendType: preimage},
	})
}

func (c *LndClient) send(ctx context.Context, req *lnrpc.SendRequest) (*lnrpc.SendResponse, error) {
	res, err := c.rpc.SendPaymentSync(ctx, req)
	if err != nil {
		return nil, err
	}
	if res.PaymentError != "" {
		return nil, errors.New("payment failed: " + res.PaymentError)
	}
	return res, nil
}

// ErrWalletNotReady is returned while lnd has not reached an active state
var ErrWalletNotReady = errors.New("lnd wallet not ready")

// Unlocker opens lnd's wallet. It needs only the TLS certificate; the admin
// macaroon does not exist until the wallet has been created.
type Unlocker struct {
	conn   *grpc.ClientConn
	wallet lnrpc.WalletUnlockerClient
	state  lnrpc.StateClient
}

// NewUnlocker connects to lnd's unlocker service
func NewUnlocker(host, rpcPort string, certPEM []byte) (*Unlocker, error) {
	creds, err := lndTransport(certPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to load lnd certificate: %w", err)
	}
	conn, err := grpc.NewClient(net.JoinHostPort(host, rpcPort), grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to lnd: %w", err)
	}
	return &Unlocker{
		conn:   conn,
		wallet: lnrpc.NewWalletUnlockerClient(conn),
		state:  lnrpc.NewStateClient(conn),
	}, nil
}

func (u *Unlocker) Close() error {
	return u.conn.Close()
}

// Unlock unlocks the wallet with password, creating it from mnemonic when
// none exists yet. An already unlocked wallet is not an error.
func (u *Unlocker) Unlock(ctx context.Context, password string, mnemonic []string) error {
	state, err := u.state.GetState(ctx, &lnrpc.GetStateRequest{})
	if err != nil {
		return fmt.Errorf("failed to get lnd state: %w", err)
	}

	switch state.State {
	case lnrpc.WalletState_RPC_ACTIVE, lnrpc.WalletState_SERVER_ACTIVE, lnrpc.WalletState_UNLOCKED:
		return nil
	case lnrpc.WalletState_NON_EXISTING:
		_, err = u.wallet.InitWallet(ctx, &lnrpc.InitWalletRequest{
			WalletPassword:     []byte(password),
			CipherSeedMnemonic: mnemonic,
		})
		if err != nil {
			return fmt.Errorf("failed to init wallet: %w", err)
		}
		return nil
	case lnrpc.WalletState_LOCKED:
		_, err = u.wallet.UnlockWallet(ctx, &lnrpc.UnlockWalletRequest{WalletPassword: []byte(password)})
		if err != nil && !strings.Contains(err.Error(), "already unlocked") {
			return fmt.Errorf("failed to unlock wallet: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrWalletNotReady, state.State)
	}
}

// Active returns nil once lnd serves the full RPC surface
func (u *Unlocker) Active(ctx context.Context) error {
	state, err := u.state.GetState(ctx, &lnrpc.GetStateRequest{})
	if err != nil {
		return err
	}
	if state.State != lnrpc.WalletState_RPC_ACTIVE && state.State != lnrpc.WalletState_SERVER_ACTIVE {
		return fmt.Errorf("%w: %s", ErrWalletNotReady, state.State)
	}
	return nil
}
