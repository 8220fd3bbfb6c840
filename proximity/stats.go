package proximity

import (
	"gonum.org/v1/gonum/stat"
)

// IndexStats describes the shape of a built hierarchy.
type IndexStats struct {
	Triangles int
	Nodes     int
	Leaves    int
	// MaxDepth is the number of edges from the root to the deepest node.
	MaxDepth       int
	MeanLeafSize   float64
	StdDevLeafSize float64
}

// Stats walks the node arena and summarizes it.
func (idx *Index) Stats() IndexStats {
	stats := IndexStats{Triangles: idx.mesh.Len(), Nodes: len(idx.nodes)}
	var leafSizes []float64
	for id := range idx.nodes {
		n := &idx.nodes[id]
		if n.isLeaf() {
			leafSizes = append(leafSizes, float64(len(n.indices)))
		}
		if depth := idx.depth(id); depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
	}
	stats.Leaves = len(leafSizes)
	if len(leafSizes) > 1 {
		stats.MeanLeafSize, stats.StdDevLeafSize = stat.MeanStdDev(leafSizes, nil)
	} else if len(leafSizes) == 1 {
		stats.MeanLeafSize = leafSizes[0]
	}
	return stats
}

func (idx *Index) depth(id int) int {
	depth := 0
	for parent := idx.nodes[id].parent; parent != noNode; parent = idx.nodes[parent].parent {
		depth++
	}
	return depth
}
