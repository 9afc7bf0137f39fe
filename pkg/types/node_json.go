package types

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON writes the externally tagged form:
//
//	{"Internal":{"Lnd":{...}}}
//	{"External":{"kind":"Meme","name":"memes","url":"..."}}
func (n Node) MarshalJSON() ([]byte, error) {
	switch {
	case n.Internal != nil && n.External != nil:
		return nil, fmt.Errorf("node %q is both internal and external", n.Name())
	case n.External != nil:
		return json.Marshal(map[string]*ExternalNode{"External": n.External})
	case n.Internal != nil:
		inner, err := marshalImage(n.Internal)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]json.RawMessage{"Internal": inner})
	default:
		return nil, fmt.Errorf("empty node")
	}
}

// UnmarshalJSON reads the form written by MarshalJSON
func (n *Node) UnmarshalJSON(data []byte) error {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return fmt.Errorf("failed to decode node: %w", err)
	}
	if len(outer) != 1 {
		return fmt.Errorf("node must have exactly one of Internal or External")
	}

	if raw, ok := outer["External"]; ok {
		var ext ExternalNode
		if err := json.Unmarshal(raw, &ext); err != nil {
			return fmt.Errorf("failed to decode external node: %w", err)
		}
		*n = Node{External: &ext}
		return nil
	}

	raw, ok := outer["Internal"]
	if !ok {
		return fmt.Errorf("node must have exactly one of Internal or External")
	}
	img, err := unmarshalImage(raw)
	if err != nil {
		return err
	}
	*n = Node{Internal: img}
	return nil
}

func marshalImage(img Image) (json.RawMessage, error) {
	switch img.(type) {
	case *Btc, *Lnd, *Proxy, *Relay, *Cache, *Traefik, *Boltwall, *Neo4j, *Jarvis:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownImage, img)
	}
	body, err := json.Marshal(img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s image: %w", img.Kind(), err)
	}
	return json.Marshal(map[ImageKind]json.RawMessage{img.Kind(): body})
}

func unmarshalImage(data []byte) (Image, error) {
	var tagged map[ImageKind]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("image must have exactly one kind tag")
	}

	for kind, body := range tagged {
		img, err := newOfKind(kind)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(body, img); err != nil {
			return nil, fmt.Errorf("failed to decode %s image: %w", kind, err)
		}
		if img.Meta().Links == nil {
			img.Meta().Links = []string{}
		}
		return img, nil
	}
	return nil, ErrUnknownImage
}

func newOfKind(kind ImageKind) (Image, error) {
	switch kind {
	case KindBtc:
		return &Btc{}, nil
	case KindLnd:
		return &Lnd{}, nil
	case KindProxy:
		return &Proxy{}, nil
	case KindRelay:
		return &Relay{}, nil
	case KindCache:
		return &Cache{}, nil
	case KindTraefik:
		return &Traefik{}, nil
	case KindBoltwall:
		return &Boltwall{}, nil
	case KindNeo4j:
		return &Neo4j{}, nil
	case KindJarvis:
		return &Jarvis{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownImage, kind)
	}
}
