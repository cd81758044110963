package fingerprint

import "testing"

func TestHash_Deterministic(t *testing.T) {
	type in struct {
		A string
		B int
	}

	one := Hash(in{A: "x", B: 1})
	two := Hash(in{A: "x", B: 1})
	if one != two {
		t.Fatalf("equal inputs must hash equal")
	}
	if len(one) != 64 {
		t.Fatalf("expected hex sha256 length 64, got %d", len(one))
	}

	if Hash(in{A: "x", B: 2}) == one {
		t.Fatalf("different inputs must hash different")
	}
}

func TestKey_Prefixed(t *testing.T) {
	k := Key("selection:", map[string]int{"a": 1})
	if k[:len("selection:")] != "selection:" {
		t.Fatalf("expected namespace prefix, got %s", k)
	}
}
