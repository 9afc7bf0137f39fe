package types

import (
	"fmt"

	"github.com/cuemby/swarm/pkg/security"
)

// ImageKind names one variant of the closed Image set. The string is also
// the JSON tag of the variant.
type ImageKind string

const (
	KindBtc      ImageKind = "Btc"
	KindLnd      ImageKind = "Lnd"
	KindProxy    ImageKind = "Proxy"
	KindRelay    ImageKind = "Relay"
	KindCache    ImageKind = "Cache"
	KindTraefik  ImageKind = "Traefik"
	KindBoltwall ImageKind = "Boltwall"
	KindNeo4j    ImageKind = "Neo4j"
	KindJarvis   ImageKind = "Jarvis"
)

// Repository identifies an image in a registry
type Repository struct {
	Org  string
	Repo string
}

// String returns "org/repo"
func (r Repository) String() string {
	return r.Org + "/" + r.Repo
}

// Ref returns the full image reference for a version
func (r Repository) Ref(version string) string {
	return fmt.Sprintf("%s/%s:%s", r.Org, r.Repo, version)
}

// Base holds the fields every image kind carries
type Base struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Links   []string `json:"links"`
}

// Image is one locally managed service. The set of implementations is
// closed: Btc, Lnd, Proxy, Relay, Cache, Traefik, Boltwall, Neo4j, Jarvis.
type Image interface {
	Meta() *Base
	Kind() ImageKind
	Repo() Repository
}

type Btc struct {
	Base
	Network string `json:"network"`
	User    string `json:"user"`
	Pass    string `json:"pass"`
}

type Lnd struct {
	Base
	Network        string `json:"network"`
	Port           string `json:"port"`
	RPCPort        string `json:"rpc_port"`
	HTTPPort       string `json:"http_port,omitempty"`
	UnlockPassword string `json:"unlock_password"`
	Host           string `json:"host,omitempty"`
}

type Proxy struct {
	Base
	Network    string  `json:"network"`
	Port       string  `json:"port"`
	AdminPort  string  `json:"admin_port"`
	AdminToken *string `json:"admin_token"`
	StoreKey   *string `json:"store_key"`
	NewNodes   *string `json:"new_nodes"`
}

type Relay struct {
	Base
	Port    string `json:"port"`
	NodeEnv string `json:"node_env"`
	Host    string `json:"host,omitempty"`
}

type Cache struct {
	Base
	Port    string `json:"port"`
	Log     bool   `json:"log"`
	PrivKey string `json:"priv_key"`
	RSAKey  string `json:"rsa_key"`
}

type Traefik struct {
	Base
	Insecure bool   `json:"insecure"`
	Email    string `json:"email,omitempty"`
}

type Boltwall struct {
	Base
	Port          string `json:"port"`
	Host          string `json:"host,omitempty"`
	AdminToken    string `json:"admin_token"`
	SessionSecret string `json:"session_secret"`
}

type Neo4j struct {
	Base
	Port     string `json:"port"`
	BoltPort string `json:"bolt_port"`
}

type Jarvis struct {
	Base
	Port string `json:"port"`
}

func (i *Btc) Meta() *Base      { return &i.Base }
func (i *Lnd) Meta() *Base      { return &i.Base }
func (i *Proxy) Meta() *Base    { return &i.Base }
func (i *Relay) Meta() *Base    { return &i.Base }
func (i *Cache) Meta() *Base    { return &i.Base }
func (i *Traefik) Meta() *Base  { return &i.Base }
func (i *Boltwall) Meta() *Base { return &i.Base }
func (i *Neo4j) Meta() *Base    { return &i.Base }
func (i *Jarvis) Meta() *Base   { return &i.Base }

func (*Btc) Kind() ImageKind      { return KindBtc }
func (*Lnd) Kind() ImageKind      { return KindLnd }
func (*Proxy) Kind() ImageKind    { return KindProxy }
func (*Relay) Kind() ImageKind    { return KindRelay }
func (*Cache) Kind() ImageKind    { return KindCache }
func (*Traefik) Kind() ImageKind  { return KindTraefik }
func (*Boltwall) Kind() ImageKind { return KindBoltwall }
func (*Neo4j) Kind() ImageKind    { return KindNeo4j }
func (*Jarvis) Kind() ImageKind   { return KindJarvis }

func (*Btc) Repo() Repository      { return Repository{"lncm", "bitcoind"} }
func (*Lnd) Repo() Repository      { return Repository{"lightninglabs", "lnd"} }
func (*Proxy) Repo() Repository    { return Repository{"sphinxlightning", "sphinx-proxy"} }
func (*Relay) Repo() Repository    { return Repository{"sphinxlightning", "sphinx-relay"} }
func (*Cache) Repo() Repository    { return Repository{"sphinxlightning", "sphinx-cache"} }
func (*Traefik) Repo() Repository  { return Repository{"library", "traefik"} }
func (*Boltwall) Repo() Repository { return Repository{"sphinxlightning", "sphinx-boltwall"} }
func (*Neo4j) Repo() Repository    { return Repository{"bitnami", "neo4j"} }
func (*Jarvis) Repo() Repository   { return Repository{"sphinxlightning", "sphinx-jarvis-backend"} }

// WithLinks replaces the image's links and returns the image
func WithLinks[T Image](img T, links ...string) T {
	img.Meta().Links = append([]string(nil), links...)
	return img
}

func base(name, version string) Base {
	return Base{Name: name, Version: version, Links: []string{}}
}

// NewBtc creates a chain node. The RPC password comes from the project
// secrets so it survives a stack document reset.
func NewBtc(name, version, network, user, pass string) *Btc {
	return &Btc{Base: base(name, version), Network: network, User: user, Pass: pass}
}

func NewLnd(name, version, network, port, rpcPort, httpPort, unlockPassword string) *Lnd {
	return &Lnd{
		Base:           base(name, version),
		Network:        network,
		Port:           port,
		RPCPort:        rpcPort,
		HTTPPort:       httpPort,
		UnlockPassword: unlockPassword,
	}
}

// NewProxy creates a payment proxy with a fresh admin token and store key
func NewProxy(name, version, network, port, adminPort string) *Proxy {
	token := security.RandomWord(12)
	key := security.StoreKey()
	return &Proxy{
		Base:       base(name, version),
		Network:    network,
		Port:       port,
		AdminPort:  adminPort,
		AdminToken: &token,
		StoreKey:   &key,
	}
}

func NewRelay(name, version, nodeEnv, port string) *Relay {
	return &Relay{Base: base(name, version), Port: port, NodeEnv: nodeEnv}
}

// NewCache creates a cache node with a fresh node key and RSA key
func NewCache(name, version, port string, log bool) (*Cache, error) {
	rsaKey, err := security.RSAKey()
	if err != nil {
		return nil, err
	}
	return &Cache{
		Base:    base(name, version),
		Port:    port,
		Log:     log,
		PrivKey: security.PrivateKey32(),
		RSAKey:  rsaKey,
	}, nil
}

func NewTraefik(name, version, email string, insecure bool) *Traefik {
	return &Traefik{Base: base(name, version), Insecure: insecure, Email: email}
}

func NewBoltwall(name, version, port, host string) *Boltwall {
	return &Boltwall{
		Base:          base(name, version),
		Port:          port,
		Host:          host,
		AdminToken:    security.RandomWord(12),
		SessionSecret: security.HexSecret(16),
	}
}

func NewNeo4j(name, version, port, boltPort string) *Neo4j {
	return &Neo4j{Base: base(name, version), Port: port, BoltPort: boltPort}
}

func NewJarvis(name, version, port string) *Jarvis {
	return &Jarvis{Base: base(name, version), Port: port}
}
