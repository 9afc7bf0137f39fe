package images

import (
	"fmt"

	"github.com/cuemby/swarm/pkg/types"
)

// MissingDependencyError is returned when none of a node's links resolves
// to a node of the kind its builder requires
type MissingDependencyError struct {
	Node string // node being built
	Kind string // required kind
	Link string // first unmet link, empty when the node declares none
}

func (e *MissingDependencyError) Error() string {
	if e.Link == "" {
		return fmt.Sprintf("%s requires a linked %s node", e.Node, e.Kind)
	}
	return fmt.Sprintf("%s: missing %s dependency, link %q is absent or of the wrong kind", e.Node, e.Kind, e.Link)
}

// linkKinds lists the kinds each builder resolves through links
var linkKinds = map[types.ImageKind][]types.ImageKind{
	types.KindLnd:      {types.KindBtc},
	types.KindProxy:    {types.KindLnd},
	types.KindRelay:    {types.KindLnd, types.KindProxy},
	types.KindBoltwall: {types.KindLnd, types.KindJarvis},
	types.KindJarvis:   {types.KindNeo4j},
}

// Linked scans img's links in order and returns the first node of type T.
// When none matches, the error names the first absent link, or else the
// first link whose node is of a kind img never links to.
func Linked[T types.Image](img types.Image, nodes []types.Node, kind types.ImageKind) (T, error) {
	var zero T
	b := img.Meta()

	absent := ""
	wrongKind := ""
	for _, link := range b.Links {
		n, ok := lookup(nodes, link)
		if !ok {
			if absent == "" {
				absent = link
			}
			continue
		}
		if t, ok := n.Internal.(T); ok {
			return t, nil
		}
		if wrongKind == "" && !claimed(img.Kind(), n) {
			wrongKind = link
		}
	}

	unmet := absent
	if unmet == "" {
		unmet = wrongKind
	}
	return zero, &MissingDependencyError{Node: b.Name, Kind: string(kind), Link: unmet}
}

// claimed reports whether n is of a kind owner links to for another purpose
func claimed(owner types.ImageKind, n types.Node) bool {
	if n.Internal == nil {
		return false
	}
	for _, k := range linkKinds[owner] {
		if n.Internal.Kind() == k {
			return true
		}
	}
	return false
}

// LinkedOptional is Linked without the error, for dependencies a builder
// can do without
func LinkedOptional[T types.Image](img types.Image, nodes []types.Node) (T, bool) {
	t, err := Linked[T](img, nodes, "")
	return t, err == nil
}

// External returns the external node of the given kind
func External(img types.Image, nodes []types.Node, kind types.ExternalKind) (*types.ExternalNode, error) {
	ext, ok := types.FindExternal(nodes, kind)
	if !ok {
		return nil, &MissingDependencyError{Node: img.Meta().Name, Kind: string(kind)}
	}
	return ext, nil
}

func lookup(nodes []types.Node, name string) (types.Node, bool) {
	for _, n := range nodes {
		if n.Name() == name {
			return n, true
		}
	}
	return types.Node{}, false
}
