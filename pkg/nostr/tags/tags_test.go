package tags

import (
	"testing"

	"github.com/Hubmakerlabs/cyan/pkg/nostr/codec"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/tag"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const hexID = "6af93de56bf823a19fb2c996e43f74186b09389ae3f663fa1ac96959060ca671"

func TestDecodeList(t *testing.T) {
	src := `[["e","` + hexID + `"],["t","nostr"],["p","` + hexID + `","wss://r"]]`
	tt, err := Decode(gjson.Parse(src))
	require.NoError(t, err)
	require.Len(t, tt, 3)
	require.Equal(t, src, string(tt.MarshalTo(nil)))
	require.Len(t, tt.EventIDs(), 1)
	require.Len(t, tt.PubKeys(), 1)
	require.Len(t, tt.GetAll("t"), 1)
	require.IsType(t, &tag.Other{}, tt.GetAll("t")[0])
}

func TestEmpty(t *testing.T) {
	var tt T
	require.Equal(t, "[]", string(tt.MarshalTo(nil)))
	tt, err := Decode(gjson.Parse(`[]`))
	require.NoError(t, err)
	require.Empty(t, tt)
	_, err = Decode(gjson.Parse(`"x"`))
	require.ErrorIs(t, err, codec.ErrMalformed)
	_, err = Decode(gjson.Parse(`[[]]`))
	require.ErrorIs(t, err, codec.ErrMissingField)
}
