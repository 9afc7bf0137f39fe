package deploy

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/cuemby/swarm/pkg/clients"
	"github.com/cuemby/swarm/pkg/health"
	"github.com/cuemby/swarm/pkg/images"
	"github.com/cuemby/swarm/pkg/log"
	"github.com/cuemby/swarm/pkg/security"
	"github.com/cuemby/swarm/pkg/types"
)

// Fetcher reads a file written by a running container
type Fetcher interface {
	Fetch(ctx context.Context, ref images.ArtifactRef) ([]byte, error)
}

// ClientConnector builds API clients for freshly started nodes and
// registers them. Nodes without a client are only waited for.
type ClientConnector struct {
	Registry  *clients.Registry
	Secrets   security.Secrets
	Fetcher   Fetcher
	DockerRun bool
	Retry     health.RetryConfig

	// Execer runs readiness checks inside containers; without one the
	// graph database is not checked
	Execer health.Execer
}

// NewClientConnector creates a connector with the service retry defaults
func NewClientConnector(reg *clients.Registry, secrets security.Secrets, fetcher Fetcher, dockerRun bool) *ClientConnector {
	return &ClientConnector{
		Registry:  reg,
		Secrets:   secrets,
		Fetcher:   fetcher,
		DockerRun: dockerRun,
		Retry:     health.ServiceRetry,
	}
}

// Connect registers the client of img, waiting until its API answers.
// Images without an API are skipped.
func (c *ClientConnector) Connect(ctx context.Context, img types.Image, stack *types.Stack) error {
	name := img.Meta().Name
	host := clients.Host(name, c.DockerRun)
	logger := log.WithNode(name)

	switch i := img.(type) {
	case *types.Btc:
		btc, err := clients.NewBitcoindClient(host, images.BtcRPCPort(i.Network), i.User, i.Pass, i.Network)
		if err != nil {
			return err
		}
		err = health.Wait(ctx, health.CheckFunc(func(ctx context.Context) error {
			_, err := btc.GetInfo(ctx)
			return err
		}), c.Retry)
		if err == nil {
			err = btc.EnsureWallet(ctx)
		}
		if err != nil {
			_ = btc.Close()
			return err
		}
		c.Registry.SetBitcoind(name, btc)

	case *types.Lnd:
		lnd, err := c.connectLnd(ctx, i, host)
		if err != nil {
			return err
		}
		c.Registry.SetLnd(name, lnd)

	case *types.Proxy:
		token := ""
		if i.AdminToken != nil {
			token = *i.AdminToken
		}
		if err := health.Wait(ctx, health.NewTCPChecker(host, i.AdminPort), c.Retry); err != nil {
			return fmt.Errorf("proxy admin api: %w", err)
		}
		c.Registry.SetProxy(name, clients.NewProxyClient(host, i.AdminPort, token))

	case *types.Relay:
		relay, err := clients.ConnectRelay(ctx, host, i.Port, c.Secrets[security.RelayTokenKey(name)], c.Retry)
		if err != nil {
			return err
		}
		c.Registry.SetRelay(name, relay)

	case *types.Boltwall:
		c.Registry.SetBoltwall(name, clients.NewBoltwallClient(host, i.Port, i.AdminToken))

	case *types.Neo4j:
		if c.Execer == nil {
			return nil
		}
		check := health.NewExecChecker(c.Execer, images.Domain(name), images.Neo4jReadyCmd(i)...)
		if err := health.Wait(ctx, check, c.Retry); err != nil {
			return fmt.Errorf("neo4j: %w", err)
		}
		logger.Info().Msg("Service ready")
		return nil

	case *types.Jarvis:
		// any answer below 500 means the server is up
		check := health.NewHTTPChecker("http://" + net.JoinHostPort(host, i.Port)).
			WithStatusRange(http.StatusOK, http.StatusInternalServerError-1)
		if err := health.Wait(ctx, check, c.Retry); err != nil {
			return fmt.Errorf("jarvis: %w", err)
		}
		logger.Info().Msg("Service ready")
		return nil

	case *types.Cache, *types.Traefik:
		return nil

	default:
		return fmt.Errorf("%w: %T", types.ErrUnknownImage, img)
	}

	logger.Info().Msg("Client connected")
	return nil
}

// connectLnd unlocks the wallet, creating it from the stored seed on
// first start, then connects with the admin macaroon it produces
func (c *ClientConnector) connectLnd(ctx context.Context, lnd *types.Lnd, host string) (*clients.LndClient, error) {
	cert, err := c.Fetcher.Fetch(ctx, images.LndTLSCert(lnd))
	if err != nil {
		return nil, err
	}

	unlocker, err := clients.NewUnlocker(host, lnd.RPCPort, cert)
	if err != nil {
		return nil, err
	}
	defer unlocker.Close()

	mnemonic := security.SplitMnemonic(c.Secrets[security.KeyLndMnemonic])
	err = health.Retry(ctx, c.Retry, nil, func() error {
		return unlocker.Unlock(ctx, lnd.UnlockPassword, mnemonic)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unlock lnd: %w", err)
	}
	if err := health.Wait(ctx, health.CheckFunc(unlocker.Active), c.Retry); err != nil {
		return nil, fmt.Errorf("lnd never became active: %w", err)
	}

	mac, err := c.Fetcher.Fetch(ctx, images.LndAdminMacaroon(lnd))
	if err != nil {
		return nil, err
	}
	return clients.NewLndClient(host, lnd.RPCPort, cert, mac)
}

// Disconnect drops and closes every client of a node
func (c *ClientConnector) Disconnect(name string) {
	c.Registry.Remove(name)
}
