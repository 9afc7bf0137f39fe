package deploy

import (
	"fmt"
	"strings"

	"github.com/cuemby/swarm/pkg/images"
	"github.com/cuemby/swarm/pkg/types"
)

// Order returns the stack's internal images so that every image comes
// after the internal nodes it links to. Ties keep stack order.
func Order(nodes []types.Node) ([]types.Image, error) {
	var imgs []types.Image
	index := make(map[string]int)
	for _, n := range nodes {
		if n.Internal == nil {
			continue
		}
		index[n.Internal.Meta().Name] = len(imgs)
		imgs = append(imgs, n.Internal)
	}

	pending := make([]int, len(imgs))
	dependents := make([][]int, len(imgs))
	for i, img := range imgs {
		for _, dep := range images.Dependencies(img, nodes) {
			j, ok := index[dep]
			if !ok || j == i {
				continue
			}
			pending[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	ordered := make([]types.Image, 0, len(imgs))
	done := make([]bool, len(imgs))
	for len(ordered) < len(imgs) {
		progressed := false
		for i, img := range imgs {
			if done[i] || pending[i] > 0 {
				continue
			}
			done[i] = true
			progressed = true
			ordered = append(ordered, img)
			for _, d := range dependents[i] {
				pending[d]--
			}
			break
		}
		if !progressed {
			var stuck []string
			for i, img := range imgs {
				if !done[i] {
					stuck = append(stuck, img.Meta().Name)
				}
			}
			return nil, fmt.Errorf("dependency cycle between %s", strings.Join(stuck, ", "))
		}
	}
	return ordered, nil
}
