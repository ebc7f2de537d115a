package precision

import "testing"

func TestTagString(t *testing.T) {
	cases := []struct {
		tag  Tag
		want string
	}{
		{FP16, "fp16"},
		{FP32, "fp32"},
		{FP64, "fp64"},
		{Tag(99), "invalid"},
	}
	for _, c := range cases {
		if got := c.tag.String(); got != c.want {
			t.Errorf("Tag(%d).String() = %q, want %q", c.tag, got, c.want)
		}
	}
}

func TestTagValidAndSize(t *testing.T) {
	if !FP16.Valid() || !FP32.Valid() || !FP64.Valid() {
		t.Fatal("FP16/FP32/FP64 must be valid")
	}
	if Tag(-1).Valid() || Tag(3).Valid() {
		t.Fatal("out-of-range tags must be invalid")
	}
	if FP16.Size() != 2 || FP32.Size() != 4 || FP64.Size() != 8 {
		t.Fatal("unexpected element sizes")
	}
}

func TestSelect(t *testing.T) {
	if Select(0, 1, 0, 1) != Compact {
		t.Error("offset=0 stride=1 on both operands must select Compact")
	}
	cases := [][4]int64{
		{1, 1, 0, 1},
		{0, 2, 0, 1},
		{0, 1, 1, 1},
		{0, 1, 0, 2},
	}
	for _, c := range cases {
		if Select(c[0], c[1], c[2], c[3]) != OffsetStride {
			t.Errorf("Select%v must select OffsetStride", c)
		}
	}
}

func TestKernelName(t *testing.T) {
	cases := []struct {
		op   string
		p    Tag
		addr Addressing
		want string
	}{
		{"dot", FP32, Compact, "dot_fp32"},
		{"dot", FP32, OffsetStride, "dot_os_fp32"},
		{"sum_odd", FP16, OffsetStride, "sum_odd_os_fp16"},
		{"gemv", FP64, Compact, "gemv_fp64"},
	}
	for _, c := range cases {
		if got := KernelName(c.op, c.p, c.addr); got != c.want {
			t.Errorf("KernelName(%q,%v,%v) = %q, want %q", c.op, c.p, c.addr, got, c.want)
		}
	}
}
