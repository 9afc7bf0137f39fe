package types

import (
	"fmt"

	"github.com/cuemby/swarm/pkg/ingress"
	"github.com/cuemby/swarm/pkg/security"
)

// Default versions of the images in the default topology
const (
	DefaultBtcVersion      = "v23.0"
	DefaultLndVersion      = "v0.16.2-beta"
	DefaultProxyVersion    = "0.1.23"
	DefaultRelayVersion    = "v2.3.4"
	DefaultCacheVersion    = "0.1.14"
	DefaultTraefikVersion  = "v2.9"
	DefaultBoltwallVersion = "latest"
	DefaultNeo4jVersion    = "4.4.9"
	DefaultJarvisVersion   = "latest"

	DefaultAdminUsername = "admin"
	DefaultBtcUser       = "sphinx"
)

// DefaultStack returns the topology written on a project's first run.
// Passwords come from the secrets bundle, which must already be filled.
// A reverse proxy is added only when host is set.
func DefaultStack(network, host string, secrets security.Secrets, adminHash string) (*Stack, error) {
	btcPass, err := secrets.Get(security.KeyBitcoindPass)
	if err != nil {
		return nil, err
	}
	lndPass, err := secrets.Get(security.KeyLndPassword)
	if err != nil {
		return nil, err
	}

	cache, err := NewCache("cache", DefaultCacheVersion, "9000", true)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache node: %w", err)
	}

	boltwallHost := ingress.HostFor("boltwall", "", host)

	s := &Stack{
		Network: network,
		Host:    host,
		Nodes: []Node{
			NewInternal(NewBtc("bitcoind", DefaultBtcVersion, network, DefaultBtcUser, btcPass)),
			NewInternal(WithLinks(NewLnd("lnd", DefaultLndVersion, network, "9735", "10009", "8080", lndPass), "bitcoind")),
			NewInternal(WithLinks(NewProxy("proxy", DefaultProxyVersion, network, "11111", "5050"), "lnd")),
			NewInternal(WithLinks(NewRelay("relay", DefaultRelayVersion, "production", "3000"), "lnd", "proxy")),
			NewInternal(WithLinks(cache, "tribes", "memes")),
			NewInternal(NewNeo4j("neo4j", DefaultNeo4jVersion, "7474", "7687")),
			NewInternal(WithLinks(NewJarvis("jarvis", DefaultJarvisVersion, "6000"), "neo4j")),
			NewInternal(WithLinks(NewBoltwall("boltwall", DefaultBoltwallVersion, "8444", boltwallHost), "lnd", "jarvis")),
			NewExternal(ExternalTribes, "tribes", "tribes.sphinx.chat"),
			NewExternal(ExternalMeme, "memes", "meme.sphinx.chat"),
		},
		Users: []User{
			{ID: 1, Username: DefaultAdminUsername, PassHash: adminHash, Admin: true},
		},
	}
	if host != "" {
		s.Nodes = append(s.Nodes, NewInternal(NewTraefik("traefik", DefaultTraefikVersion, "admin@"+host, false)))
	}
	return s, nil
}

// FillSecrets populates secret fields that are empty, either from the
// project secrets bundle or freshly generated. Values already present are
// kept. It reports whether the stack and the bundle changed.
func FillSecrets(s *Stack, secrets security.Secrets) (stackChanged, secretsChanged bool, err error) {
	for _, n := range s.Nodes {
		if n.Internal == nil {
			continue
		}
		switch i := n.Internal.(type) {
		case *Btc:
			if i.Pass == "" {
				v, added, err := secrets.Ensure(security.KeyBitcoindPass, randomWord(20))
				if err != nil {
					return stackChanged, secretsChanged, err
				}
				i.Pass = v
				stackChanged = true
				secretsChanged = secretsChanged || added
			}
		case *Lnd:
			if i.UnlockPassword == "" {
				v, added, err := secrets.Ensure(security.KeyLndPassword, randomWord(20))
				if err != nil {
					return stackChanged, secretsChanged, err
				}
				i.UnlockPassword = v
				stackChanged = true
				secretsChanged = secretsChanged || added
			}
		case *Proxy:
			if i.AdminToken == nil || *i.AdminToken == "" {
				v := security.RandomWord(12)
				i.AdminToken = &v
				stackChanged = true
			}
			if i.StoreKey == nil || *i.StoreKey == "" {
				v := security.StoreKey()
				i.StoreKey = &v
				stackChanged = true
			}
		case *Relay:
			_, added, err := secrets.Ensure(security.RelayTokenKey(i.Name), randomWord(20))
			if err != nil {
				return stackChanged, secretsChanged, err
			}
			secretsChanged = secretsChanged || added
		case *Cache:
			if i.PrivKey == "" {
				i.PrivKey = security.PrivateKey32()
				stackChanged = true
			}
			if i.RSAKey == "" {
				k, err := security.RSAKey()
				if err != nil {
					return stackChanged, secretsChanged, err
				}
				i.RSAKey = k
				stackChanged = true
			}
		case *Boltwall:
			if i.AdminToken == "" {
				i.AdminToken = security.RandomWord(12)
				stackChanged = true
			}
			if i.SessionSecret == "" {
				i.SessionSecret = security.HexSecret(16)
				stackChanged = true
			}
		case *Traefik, *Neo4j, *Jarvis:
		default:
			return stackChanged, secretsChanged, fmt.Errorf("%w: %T", ErrUnknownImage, n.Internal)
		}
	}
	return stackChanged, secretsChanged, nil
}

func randomWord(n int) func() (string, error) {
	return func() (string, error) { return security.RandomWord(n), nil }
}
