package labels

import "testing"

func TestGetLabel(t *testing.T) {
	for l, s := range List {
		if GetLabel(s) != l {
			t.Fatalf("%s did not map back to %d", s, l)
		}
	}
	if GetLabel("COUNT") != LNil || GetLabel("event") != LNil {
		t.Fatal("unknown label recognised")
	}
}
