package subscriptionid

import (
	"strings"
	"testing"

	"github.com/Hubmakerlabs/cyan/pkg/nostr/codec"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	seen := make(map[T]bool)
	for i := 0; i < 100; i++ {
		si := New()
		require.Len(t, si.String(), GeneratedLen)
		require.True(t, si.Valid())
		for _, c := range si {
			require.True(t, strings.ContainsRune(alphabet, c), "%q", c)
		}
		require.False(t, seen[si])
		seen[si] = true
	}
}

func TestFromString(t *testing.T) {
	_, err := FromString("")
	require.ErrorIs(t, err, codec.ErrWrongLength)
	_, err = FromString(strings.Repeat("a", MaxLen+1))
	require.ErrorIs(t, err, codec.ErrWrongLength)
	si, err := FromString("sub:1")
	require.NoError(t, err)
	b, _ := si.MarshalJSON()
	require.Equal(t, `"sub:1"`, string(b))
}
