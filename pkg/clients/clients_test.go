package clients

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChainRPC struct {
	mined     int64
	minedTo   btcutil.Address
	loadErr   error
	createErr error
	created   bool
	shutdown  bool
	block     chan struct{}
}

func (f *fakeChainRPC) GetBlockChainInfo() (*btcjson.GetBlockChainInfoResult, error) {
	if f.block != nil {
		<-f.block
	}
	return &btcjson.GetBlockChainInfoResult{Chain: "regtest", Blocks: 101, Headers: 101, BestBlockHash: "00ff"}, nil
}

func (f *fakeChainRPC) GetNewAddress(account string) (btcutil.Address, error) {
	return testAddress(), nil
}

func (f *fakeChainRPC) GenerateToAddress(n int64, addr btcutil.Address, maxTries *int64) ([]*chainhash.Hash, error) {
	f.mined += n
	f.minedTo = addr
	out := make([]*chainhash.Hash, n)
	for i := range out {
		out[i] = &chainhash.Hash{byte(i + 1)}
	}
	return out, nil
}

func (f *fakeChainRPC) GetBalance(account string) (btcutil.Amount, error) {
	return btcutil.Amount(150_000_000), nil
}

func (f *fakeChainRPC) LoadWallet(name string) (*btcjson.LoadWalletResult, error) {
	return &btcjson.LoadWalletResult{Name: name}, f.loadErr
}

func (f *fakeChainRPC) CreateWallet(name string, opts ...rpcclient.CreateWalletOpt) (*btcjson.CreateWalletResult, error) {
	f.created = true
	return &btcjson.CreateWalletResult{Name: name}, f.createErr
}

func (f *fakeChainRPC) Shutdown() { f.shutdown = true }

func testAddress() btcutil.Address {
	addr, err := btcutil.NewAddressWitnessPubKeyHash(make([]byte, 20), &chaincfg.RegressionNetParams)
	if err != nil {
		panic(err)
	}
	return addr
}

func TestBitcoindClient(t *testing.T) {
	rpc := &fakeChainRPC{}
	c := &BitcoindClient{rpc: rpc, params: ChainParams("regtest")}
	ctx := context.Background()

	info, err := c.GetInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "regtest", info.Chain)
	assert.Equal(t, int32(101), info.Blocks)

	hashes, err := c.TestMine(ctx, 3, "")
	require.NoError(t, err)
	assert.Len(t, hashes, 3)
	assert.Equal(t, int64(3), rpc.mined)

	explicit := testAddress().EncodeAddress()
	_, err = c.TestMine(ctx, 1, explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, rpc.minedTo.EncodeAddress())

	_, err = c.TestMine(ctx, 1, "not-an-address")
	assert.Error(t, err)

	bal, err := c.GetBalance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, bal, 1e-9)

	require.NoError(t, c.Close())
	assert.True(t, rpc.shutdown)
}

func TestBitcoindEnsureWallet(t *testing.T) {
	tests := []struct {
		name        string
		loadErr     error
		createErr   error
		wantCreated bool
		wantErr     bool
	}{
		{"loads", nil, nil, false, false},
		{"already loaded", errors.New("Wallet file verification failed. already loaded"), nil, false, false},
		{"creates", errors.New("Wallet file not found"), nil, true, false},
		{"create fails", errors.New("Wallet file not found"), errors.New("disk full"), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rpc := &fakeChainRPC{loadErr: tt.loadErr, createErr: tt.createErr}
			c := &BitcoindClient{rpc: rpc, params: ChainParams("regtest")}
			err := c.EnsureWallet(context.Background())
			assert.Equal(t, tt.wantCreated, rpc.created)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBitcoindHonoursContext(t *testing.T) {
	rpc := &fakeChainRPC{block: make(chan struct{})}
	defer close(rpc.block)
	c := &BitcoindClient{rpc: rpc, params: ChainParams("regtest")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.GetInfo(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChainParams(t *testing.T) {
	tests := map[string]string{
		"bitcoin": chaincfg.MainNetParams.Name,
		"mainnet": chaincfg.MainNetParams.Name,
		"testnet": chaincfg.TestNet3Params.Name,
		"simnet":  chaincfg.SimNetParams.Name,
		"regtest": chaincfg.RegressionNetParams.Name,
		"other":   chaincfg.RegressionNetParams.Name,
	}
	for network, want := range tests {
		assert.Equal(t, want, ChainParams(network).Name, network)
	}
}

type nopLightning struct {
	Lightning
	closed bool
}

func (n *nopLightning) Close() error {
	n.closed = true
	return nil
}

type nopRelay struct{ Relay }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	ln := &nopLightning{}
	r.SetLnd("lnd", ln)
	r.SetRelay("relay", nopRelay{})
	r.SetRelay("lnd", nopRelay{})

	_, ok := r.Lnd("lnd")
	assert.True(t, ok)
	_, ok = r.Lnd("relay")
	assert.False(t, ok)
	_, ok = r.Bitcoind("lnd")
	assert.False(t, ok)
	assert.Equal(t, []string{"lnd", "relay"}, r.Names())

	r.Remove("lnd")
	assert.True(t, ln.closed)
	_, ok = r.Relay("lnd")
	assert.False(t, ok)
	_, ok = r.Relay("relay")
	assert.True(t, ok)

	r.Close()
	assert.Empty(t, r.Names())
}

func TestHost(t *testing.T) {
	assert.Equal(t, "localhost", Host("lnd", false))
	assert.Equal(t, "lnd.sphinx", Host("lnd", true))
}

func TestMacaroonCredential(t *testing.T) {
	cred := macaroonCredential{hex: hex.EncodeToString([]byte("mac"))}
	md, err := cred.GetRequestMetadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "6d6163", md["macaroon"])
	assert.True(t, cred.RequireTransportSecurity())
}

func TestNewLndClientRejectsBadMaterial(t *testing.T) {
	_, err := NewLndClient("localhost", "10009", []byte("not a pem"), []byte("x"))
	assert.Error(t, err)

	_, err = NewUnlocker("localhost", "10009", nil)
	assert.Error(t, err)
}
