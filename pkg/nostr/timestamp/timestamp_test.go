package timestamp

import (
	"testing"
	"time"
)

func TestConversions(t *testing.T) {
	ts := FromUnix(1692452942)
	if ts.String() != "1692452942" {
		t.Fatalf("unexpected string %s", ts)
	}
	if FromTime(ts.Time()) != ts {
		t.Fatal("time round trip changed the value")
	}
	if neg := FromUnix(-5); neg.I64() != -5 {
		t.Fatal("negative timestamps must be kept")
	}
	p := ts.Ptr()
	*p = 0
	if ts == 0 {
		t.Fatal("Ptr must return a copy")
	}
	if d := time.Since(Now().Time()); d < -time.Second || d > 2*time.Second {
		t.Fatalf("Now is off by %v", d)
	}
}
