package reduce

import "testing"

func checkTile(t *testing.T, n int64, l Limits, tl tile) {
	t.Helper()
	if tl.groups <= 0 {
		t.Fatalf("groups must be > 0, got %d", tl.groups)
	}
	if tl.items <= 0 {
		t.Fatalf("items must be > 0, got %d", tl.items)
	}
	if tl.groups*tl.items > n {
		t.Fatalf("groups*items = %d exceeds n = %d", tl.groups*tl.items, n)
	}
	if tl.groups*tl.items != tl.total {
		t.Fatalf("groups*items = %d != total %d", tl.groups*tl.items, tl.total)
	}
	if tl.groups > l.MaxGroups {
		t.Fatalf("groups %d exceeds MaxGroups %d", tl.groups, l.MaxGroups)
	}
	if tl.items > l.MaxItems {
		t.Fatalf("items %d exceeds MaxItems %d", tl.items, l.MaxItems)
	}
}

func TestSizeTileInvariants(t *testing.T) {
	l := Limits{MaxGroups: 2, MaxItems: 4}
	for _, n := range []int64{1, 2, 3, 4, 5, 7, 8, 9, 10, 16, 17, 100} {
		tl := sizeTile(n, l)
		checkTile(t, n, l, tl)
	}
}

func TestSizeTileS3Scenario(t *testing.T) {
	// max_groups=2, max_items=4 (8 per chunk); n=10 must process a
	// chunk of 8 then a remainder chunk of 2.
	l := Limits{MaxGroups: 2, MaxItems: 4}
	n := int64(10)
	first := sizeTile(n, l)
	if first.total != 8 {
		t.Fatalf("first chunk total = %d, want 8", first.total)
	}
	n -= first.total
	second := sizeTile(n, l)
	if second.total != 2 {
		t.Fatalf("second chunk total = %d, want 2", second.total)
	}
	n -= second.total
	if n != 0 {
		t.Fatalf("expected n to reach 0, got %d", n)
	}
}

func TestSizeTileSingleElement(t *testing.T) {
	l := Limits{MaxGroups: 16, MaxItems: 256}
	tl := sizeTile(1, l)
	if tl.groups != 1 || tl.items != 1 || tl.total != 1 {
		t.Fatalf("sizeTile(1, ...) = %+v, want groups=items=total=1", tl)
	}
}

func TestSizeTileExactlyMaxItemsTimesMaxGroups(t *testing.T) {
	l := Limits{MaxGroups: 4, MaxItems: 8}
	n := l.MaxGroups * l.MaxItems
	tl := sizeTile(n, l)
	if tl.total != n {
		t.Fatalf("sizeTile should consume the whole chunk in one tile: total=%d want %d", tl.total, n)
	}
}
