package codec_test

import (
	"testing"

	"handshake/match-service/internal/codec"
)

// ── Compress — known encodings ─────────────────────────────────────────────

func TestCompress_KnownValues(t *testing.T) {
	cases := []struct {
		name string
		ids  []int
		size int
		want string
	}{
		{"alternating bits", []int{2, 4}, 5, "01111"},
		{"empty selection", nil, 5, "05"},
		{"full universe", []int{1, 2, 3, 4, 5}, 5, "15"},
		{"single option selected", []int{1}, 1, "11"},
		{"single option unselected", nil, 1, "01"},
		{"leading run", []int{1, 2, 3}, 8, "135"},
		{"trailing run", []int{6, 7, 8}, 8, "053"},
		{"sparse 30", nil, 30, "0.1e"},
		{"full 30", idRange(1, 30), 30, "1.1e"},
	}
	for _, c := range cases {
		if got := codec.Compress(c.ids, c.size); got != c.want {
			t.Errorf("%s: Compress(%v, %d) = %q, want %q", c.name, c.ids, c.size, got, c.want)
		}
	}
}

func TestCompress_OutOfRangeIDsIgnored(t *testing.T) {
	if got := codec.Compress([]int{0, 3, 99}, 5); got != codec.Compress([]int{3}, 5) {
		t.Errorf("out-of-range ids changed the encoding: %q", got)
	}
}

// ── Round-trip: Decompress(Compress(S, N), N) == S ─────────────────────────

func TestRoundTrip_AllSubsetsSmallUniverses(t *testing.T) {
	for size := 1; size <= 5; size++ {
		for mask := 0; mask < 1<<size; mask++ {
			ids := idsFromSubset(mask, size)
			code := codec.Compress(ids, size)
			got, err := codec.Decompress(code, size)
			if err != nil {
				t.Fatalf("Decompress(%q, %d) error: %v (ids=%v)", code, size, err, ids)
			}
			if !equalIDs(got, ids) {
				t.Errorf("round trip failed for size=%d ids=%v: code=%q decoded=%v", size, ids, code, got)
			}
		}
	}
}

func TestRoundTrip_Universe30(t *testing.T) {
	selections := [][]int{
		nil,
		idRange(1, 30),
		{1},
		{30},
		{1, 30},
		{2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22, 24, 26, 28, 30},
		{5, 6, 7, 8, 9, 10},
		{1, 2, 3, 15, 28, 29, 30},
	}
	for _, ids := range selections {
		code := codec.Compress(ids, 30)
		got, err := codec.Decompress(code, 30)
		if err != nil {
			t.Fatalf("Decompress(%q, 30) error: %v", code, err)
		}
		if !equalIDs(got, ids) {
			t.Errorf("round trip failed for ids=%v: code=%q decoded=%v", ids, code, got)
		}
	}
}

// ── Int mode ───────────────────────────────────────────────────────────────

func TestDecompressInt_MatchesMask(t *testing.T) {
	cases := []struct {
		ids  []int
		size int
		want uint64
	}{
		{[]int{2, 4}, 5, 0b01010},
		{nil, 5, 0},
		{[]int{1, 2, 3, 4, 5}, 5, 0b11111},
		{[]int{1}, 8, 0b10000000},
		{[]int{8}, 8, 0b00000001},
	}
	for _, c := range cases {
		code := codec.Compress(c.ids, c.size)
		got, err := codec.DecompressInt(code, c.size)
		if err != nil {
			t.Fatalf("DecompressInt(%q, %d) error: %v", code, c.size, err)
		}
		if got != c.want {
			t.Errorf("DecompressInt(%q, %d) = %b, want %b", code, c.size, got, c.want)
		}
		if mask := codec.MaskOf(c.ids, c.size); mask != c.want {
			t.Errorf("MaskOf(%v, %d) = %b, want %b", c.ids, c.size, mask, c.want)
		}
	}
}

func TestDecompressInt_RejectsOversizedUniverse(t *testing.T) {
	if _, err := codec.DecompressInt("05", 65); err == nil {
		t.Error("DecompressInt with size 65 should fail, got nil error")
	}
}

// ── Malformed input ────────────────────────────────────────────────────────

func TestDecompress_RejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		code string
		size int
	}{
		{"empty string", "", 5},
		{"bad start bit", "25", 5},
		{"bad run digit", "0g", 5},
		{"zero-length run", "0005", 5},
		{"decodes short", "03", 5},
		{"decodes long", "0f", 5},
		{"truncated escape", "0.", 30},
		{"escape with one digit", "0.1", 30},
		{"escape with trailing dot", "01.1.", 30},
		{"size below one", "05", 0},
	}
	for _, c := range cases {
		if _, err := codec.Decompress(c.code, c.size); err == nil {
			t.Errorf("%s: Decompress(%q, %d) should fail, got nil error", c.name, c.code, c.size)
		}
	}
}

// ── Bit positions ──────────────────────────────────────────────────────────

func TestBit_MSBFirst(t *testing.T) {
	if got := codec.Bit(1, 5); got != 0b10000 {
		t.Errorf("Bit(1, 5) = %b, want 10000 (position 1 is MSB)", got)
	}
	if got := codec.Bit(5, 5); got != 0b00001 {
		t.Errorf("Bit(5, 5) = %b, want 00001", got)
	}
	if got := codec.Bit(6, 5); got != 0 {
		t.Errorf("Bit(6, 5) = %b, want 0 for out-of-range id", got)
	}
}

// ── helpers ────────────────────────────────────────────────────────────────

func idsFromSubset(mask, size int) []int {
	ids := make([]int, 0, size)
	for id := 1; id <= size; id++ {
		if mask&(1<<(id-1)) != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func idRange(lo, hi int) []int {
	ids := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		ids = append(ids, i)
	}
	return ids
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
