package kind

import (
	"errors"
	"testing"

	"github.com/Hubmakerlabs/cyan/pkg/nostr/codec"
)

func TestFromInt(t *testing.T) {
	for n := int64(0); n <= 7; n++ {
		k, err := FromInt(n)
		if err != nil {
			t.Fatalf("kind %d: %v", n, err)
		}
		if !k.Valid() || k.ToInt() != n {
			t.Fatalf("kind %d decoded to %v", n, k)
		}
	}
	for _, n := range []int64{-1, 8, 42, 1063, 30023, 65536 + 1, 1 << 40} {
		if _, err := FromInt(n); !errors.Is(err, codec.ErrUnknownVariant) {
			t.Errorf("kind %d: expected unknown variant, got %v", n, err)
		}
	}
}

func TestString(t *testing.T) {
	if TextNote.String() != "TextNote" {
		t.Fatal(TextNote.String())
	}
	if T(99).String() != "Kind(99)" {
		t.Fatal(T(99).String())
	}
	if b, _ := Metadata.MarshalJSON(); string(b) != "0" {
		t.Fatalf("got %s", b)
	}
}
