// Package reduce implements the tiled multiply-then-tree-reduce engine
// that backs the dot product and related BLAS-1 reductions: per-chunk
// tile sizing bounded by device limits, pairwise multiply, and a
// logarithmic-depth tree reduction with odd/even parity kernel
// selection.
package reduce

import "github.com/Amr-9/goblast/pkg/crt"

// Limits caps the tile sizing for one chunk, sourced from the device
// descriptor and optionally narrowed by a crt.Override block.
type Limits struct {
	MaxGroups int64
	MaxItems  int64
}

// limitsFor resolves the effective tile-sizing limits for ctx: the
// device's maximums, narrowed by override.MaxGroups/MaxItemsPerGroup
// when those are non-zero (zero means use the device maximum).
func limitsFor(ctx *crt.Context, override *crt.Override) Limits {
	d := ctx.Device()
	l := Limits{MaxGroups: d.MaxGroups, MaxItems: d.MaxItems[0]}
	if override != nil {
		if override.MaxGroups > 0 && override.MaxGroups < l.MaxGroups {
			l.MaxGroups = override.MaxGroups
		}
		if override.MaxItemsPerGroup > 0 && override.MaxItemsPerGroup < l.MaxItems {
			l.MaxItems = override.MaxItemsPerGroup
		}
	}
	return l
}

// tile is one outer chunk's NDRange shape.
type tile struct {
	groups int64
	items  int64
	total  int64 // groups * items; the number of elements this chunk covers
}

// sizeTile derives (groups, items, total) for a chunk covering up to n
// remaining elements:
//
//  1. groups0 = min(ceil(n / maxItems), maxGroups)
//  2. total   = groups0 == 1 ? n : groups0 * maxItems
//  3. if groups0 > 1 && total > n: groups0--; total -= maxItems
//  4. items = total / groups0
//
// Postcondition: items > 0, groups0 > 0, items*groups0 <= n, and
// items*groups0 == total.
func sizeTile(n int64, l Limits) tile {
	groups := (n + l.MaxItems - 1) / l.MaxItems
	if groups > l.MaxGroups {
		groups = l.MaxGroups
	}
	var total int64
	if groups == 1 {
		total = n
	} else {
		total = groups * l.MaxItems
	}
	if groups > 1 && total > n {
		groups--
		total -= l.MaxItems
	}
	items := total / groups
	return tile{groups: groups, items: items, total: total}
}
