package clients

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/cuemby/swarm/pkg/images"
)

// DefaultWallet is the wallet bitcoind loads for mining and balances
const DefaultWallet = "wallet"

// ChainInfo is the summary returned by GetInfo
type ChainInfo struct {
	Chain                string  `json:"chain"`
	Blocks               int32   `json:"blocks"`
	Headers              int32   `json:"headers"`
	BestBlockHash        string  `json:"bestblockhash"`
	Difficulty           float64 `json:"difficulty"`
	VerificationProgress float64 `json:"verificationprogress"`
	Pruned               bool    `json:"pruned"`
}

// chainRPC is the subset of rpcclient.Client used here
type chainRPC interface {
	GetBlockChainInfo() (*btcjson.GetBlockChainInfoResult, error)
	GetNewAddress(account string) (btcutil.Address, error)
	GenerateToAddress(numBlocks int64, address btcutil.Address, maxTries *int64) ([]*chainhash.Hash, error)
	GetBalance(account string) (btcutil.Amount, error)
	LoadWallet(walletName string) (*btcjson.LoadWalletResult, error)
	CreateWallet(name string, opts ...rpcclient.CreateWalletOpt) (*btcjson.CreateWalletResult, error)
	Shutdown()
}

// BitcoindClient is a JSON-RPC client for one chain node
type BitcoindClient struct {
	rpc    chainRPC
	params *chaincfg.Params
}

// ChainParams maps a stack network name to chain parameters
func ChainParams(network string) *chaincfg.Params {
	switch images.LndNetwork(network) {
	case "mainnet":
		return &chaincfg.MainNetParams
	case "testnet":
		return &chaincfg.TestNet3Params
	case "simnet":
		return &chaincfg.SimNetParams
	default:
		return &chaincfg.RegressionNetParams
	}
}

// NewBitcoindClient connects to bitcoind's RPC port over HTTP POST
func NewBitcoindClient(host, port, user, pass, network string) (*BitcoindClient, error) {
	params := ChainParams(network)
	rpc, err := rpcclient.New(&rpcclient.ConnConfig{
		Host:         net.JoinHostPort(host, port),
		User:         user,
		Pass:         pass,
		HTTPPostMode: true,
		DisableTLS:   true,
		Params:       params.Name,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create bitcoind client: %w", err)
	}
	return &BitcoindClient{rpc: rpc, params: params}, nil
}

// run executes a blocking RPC, giving up when ctx is done
func run[T any](ctx context.Context, call func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := call()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// EnsureWallet loads the default wallet, creating it on first start
func (c *BitcoindClient) EnsureWallet(ctx context.Context) error {
	_, err := run(ctx, func() (*btcjson.LoadWalletResult, error) {
		return c.rpc.LoadWallet(DefaultWallet)
	})
	if err == nil || strings.Contains(err.Error(), "already loaded") {
		return nil
	}
	if _, cerr := run(ctx, func() (*btcjson.CreateWalletResult, error) {
		return c.rpc.CreateWallet(DefaultWallet)
	}); cerr != nil && !strings.Contains(cerr.Error(), "already exists") {
		return fmt.Errorf("failed to create wallet: %w", cerr)
	}
	return nil
}

func (c *BitcoindClient) GetInfo(ctx context.Context) (*ChainInfo, error) {
	info, err := run(ctx, c.rpc.GetBlockChainInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to get blockchain info: %w", err)
	}
	return &ChainInfo{
		Chain:                info.Chain,
		Blocks:               info.Blocks,
		Headers:              info.Headers,
		BestBlockHash:        info.BestBlockHash,
		Difficulty:           info.Difficulty,
		VerificationProgress: info.VerificationProgress,
		Pruned:               info.Pruned,
	}, nil
}

// TestMine mines blocks to address, or to a fresh wallet address when
// address is empty, and returns the block hashes
func (c *BitcoindClient) TestMine(ctx context.Context, blocks int64, address string) ([]string, error) {
	var (
		addr btcutil.Address
		err  error
	)
	if address == "" {
		addr, err = run(ctx, func() (btcutil.Address, error) { return c.rpc.GetNewAddress("") })
		if err != nil {
			return nil, fmt.Errorf("failed to get new address: %w", err)
		}
	} else {
		addr, err = btcutil.DecodeAddress(address, c.params)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", address, err)
		}
	}

	hashes, err := run(ctx, func() ([]*chainhash.Hash, error) {
		return c.rpc.GenerateToAddress(blocks, addr, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate blocks: %w", err)
	}
	out := make([]string, len(hashes))
	for i, h := range hashes {
		out[i] = h.String()
	}
	return out, nil
}

// GetBalance returns the wallet balance in BTC
func (c *BitcoindClient) GetBalance(ctx context.Context) (float64, error) {
	amt, err := run(ctx, func() (btcutil.Amount, error) { return c.rpc.GetBalance("*") })
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return amt.ToBTC(), nil
}

func (c *BitcoindClient) Close() error {
	c.rpc.Shutdown()
	return nil
}
