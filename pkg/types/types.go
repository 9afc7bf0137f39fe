package types

import "errors"

var (
	// ErrUnknownImage is returned by every type switch over Image that meets
	// a kind it does not handle.
	ErrUnknownImage = errors.New("unknown image kind")

	// ErrNodeNotFound is returned when a name does not match any node.
	ErrNodeNotFound = errors.New("node not found")
)

// Stack is the persisted topology of one project
type Stack struct {
	Network string `json:"network"`
	Nodes   []Node `json:"nodes"`
	Host    string `json:"host,omitempty"` // public domain, enables ingress labels
	Users   []User `json:"users,omitempty"`
}

// User is a control plane account
type User struct {
	ID       uint32 `json:"id"`
	Username string `json:"username"`
	PassHash string `json:"pass_hash"`
	Admin    bool   `json:"admin,omitempty"`
}

// ExternalKind tags an external endpoint for lookup by kind
type ExternalKind string

const (
	ExternalMeme   ExternalKind = "Meme"
	ExternalTribes ExternalKind = "Tribes"
)

// ExternalNode is an endpoint the stack consumes but does not run
type ExternalNode struct {
	Kind ExternalKind `json:"kind"`
	Name string       `json:"name"`
	URL  string       `json:"url"`
}

// Node is either a locally managed container (Internal) or an external
// endpoint. Exactly one of the two fields is set.
type Node struct {
	Internal Image
	External *ExternalNode
}

// NewInternal wraps an image as a node
func NewInternal(img Image) Node {
	return Node{Internal: img}
}

// NewExternal creates an external node
func NewExternal(kind ExternalKind, name, url string) Node {
	return Node{External: &ExternalNode{Kind: kind, Name: name, URL: url}}
}

// Name returns the node's lookup key
func (n Node) Name() string {
	if n.Internal != nil {
		return n.Internal.Meta().Name
	}
	if n.External != nil {
		return n.External.Name
	}
	return ""
}

// FindNode returns the node with the given name
func (s *Stack) FindNode(name string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.Name() == name {
			return n, true
		}
	}
	return Node{}, false
}

// FindImage returns the internal image with the given name
func (s *Stack) FindImage(name string) (Image, error) {
	n, ok := s.FindNode(name)
	if !ok || n.Internal == nil {
		return nil, ErrNodeNotFound
	}
	return n.Internal, nil
}

// FindExternal returns the first external node of the given kind
func FindExternal(nodes []Node, kind ExternalKind) (*ExternalNode, bool) {
	for _, n := range nodes {
		if n.External != nil && n.External.Kind == kind {
			return n.External, true
		}
	}
	return nil, false
}

// Images returns the internal images in stack order
func (s *Stack) Images() []Image {
	out := make([]Image, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.Internal != nil {
			out = append(out, n.Internal)
		}
	}
	return out
}

// FindUser returns the user with the given username
func (s *Stack) FindUser(username string) (*User, bool) {
	for i := range s.Users {
		if s.Users[i].Username == username {
			return &s.Users[i], true
		}
	}
	return nil, false
}

// FindUserByID returns the user with the given id
func (s *Stack) FindUserByID(id uint32) (*User, bool) {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i], true
		}
	}
	return nil, false
}
