package types

import "fmt"

// Sanitize returns a deep copy of the stack that is safe to hand to an API
// caller: every secret field is cleared and users are dropped. The input is
// not modified.
func Sanitize(s *Stack) (*Stack, error) {
	out := &Stack{
		Network: s.Network,
		Host:    s.Host,
		Nodes:   make([]Node, 0, len(s.Nodes)),
	}
	for _, n := range s.Nodes {
		c, err := CloneNode(n)
		if err != nil {
			return nil, err
		}
		if c.Internal != nil {
			if err := clearSecrets(c.Internal); err != nil {
				return nil, err
			}
		}
		out.Nodes = append(out.Nodes, c)
	}
	return out, nil
}

func clearSecrets(img Image) error {
	switch i := img.(type) {
	case *Btc:
		i.Pass = ""
	case *Lnd:
		i.UnlockPassword = ""
	case *Proxy:
		i.AdminToken = nil
		i.StoreKey = nil
	case *Cache:
		i.PrivKey = ""
		i.RSAKey = ""
	case *Boltwall:
		i.AdminToken = ""
		i.SessionSecret = ""
	case *Relay, *Traefik, *Neo4j, *Jarvis:
	default:
		return fmt.Errorf("%w: %T", ErrUnknownImage, img)
	}
	return nil
}

// Clone returns a deep copy of the stack, users included
func (s *Stack) Clone() (*Stack, error) {
	out := &Stack{
		Network: s.Network,
		Host:    s.Host,
		Nodes:   make([]Node, 0, len(s.Nodes)),
		Users:   append([]User(nil), s.Users...),
	}
	for _, n := range s.Nodes {
		c, err := CloneNode(n)
		if err != nil {
			return nil, err
		}
		out.Nodes = append(out.Nodes, c)
	}
	return out, nil
}

// CloneNode returns a deep copy of a node
func CloneNode(n Node) (Node, error) {
	if n.External != nil {
		ext := *n.External
		return Node{External: &ext}, nil
	}
	if n.Internal == nil {
		return Node{}, nil
	}
	img, err := CloneImage(n.Internal)
	if err != nil {
		return Node{}, err
	}
	return Node{Internal: img}, nil
}

// CloneImage returns a deep copy of an image
func CloneImage(img Image) (Image, error) {
	var out Image
	switch i := img.(type) {
	case *Btc:
		c := *i
		out = &c
	case *Lnd:
		c := *i
		out = &c
	case *Proxy:
		c := *i
		c.AdminToken = cloneString(i.AdminToken)
		c.StoreKey = cloneString(i.StoreKey)
		c.NewNodes = cloneString(i.NewNodes)
		out = &c
	case *Relay:
		c := *i
		out = &c
	case *Cache:
		c := *i
		out = &c
	case *Traefik:
		c := *i
		out = &c
	case *Boltwall:
		c := *i
		out = &c
	case *Neo4j:
		c := *i
		out = &c
	case *Jarvis:
		c := *i
		out = &c
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownImage, img)
	}
	out.Meta().Links = append([]string{}, img.Meta().Links...)
	return out, nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
