package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestErrorIs(t *testing.T) {
	err := Errorf(WrongLength, "id", "expected %d bytes", 32)
	require.ErrorIs(t, err, ErrWrongLength)
	require.False(t, errors.Is(err, ErrMalformed))
	require.Equal(t, "codec: wrong length 'id': expected 32 bytes", err.Error())
	require.Equal(t, "codec: missing field", (&Error{Kind: MissingField}).Error())
	var ce *Error
	require.True(t, errors.As(error(err), &ce))
	require.Equal(t, "id", ce.Field)
}

func TestParse(t *testing.T) {
	_, err := Parse([]byte(`{"a":`))
	require.ErrorIs(t, err, ErrMalformed)
	r, err := Parse([]byte(`{"a":1}`))
	require.NoError(t, err)
	require.Equal(t, int64(1), r.Get("a").Int())
}

func TestScalars(t *testing.T) {
	r := gjson.Parse(`{"s":"x","n":12,"f":1.5,"big":123456789012345678901,"t":true,"ff":false}`)

	s, err := String(r.Get("s"), "s")
	require.NoError(t, err)
	require.Equal(t, "x", s)
	_, err = String(r.Get("n"), "n")
	require.ErrorIs(t, err, ErrMalformed)
	_, err = String(r.Get("none"), "none")
	require.ErrorIs(t, err, ErrMissingField)

	n, err := Int(r.Get("n"), "n")
	require.NoError(t, err)
	require.Equal(t, int64(12), n)
	_, err = Int(r.Get("f"), "f")
	require.ErrorIs(t, err, ErrMalformed)
	_, err = Int(r.Get("big"), "big")
	require.ErrorIs(t, err, ErrMalformed)
	_, err = Int(r.Get("s"), "s")
	require.ErrorIs(t, err, ErrMalformed)

	b, err := Bool(r.Get("t"), "t")
	require.NoError(t, err)
	require.True(t, b)
	b, err = Bool(r.Get("ff"), "ff")
	require.NoError(t, err)
	require.False(t, b)
	_, err = Bool(r.Get("none"), "none")
	require.ErrorIs(t, err, ErrMissingField)
	_, err = Bool(r.Get("n"), "n")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestHex(t *testing.T) {
	r := gjson.Parse(`["abcd","abc","zz01","abcdef"]`).Array()
	dst := make([]byte, 2)
	require.NoError(t, Hex(dst, r[0], "0"))
	require.Equal(t, []byte{0xab, 0xcd}, dst)
	require.ErrorIs(t, Hex(dst, r[1], "1"), ErrMalformed)
	require.ErrorIs(t, Hex(dst, r[2], "2"), ErrMalformed)
	require.ErrorIs(t, Hex(dst, r[3], "3"), ErrWrongLength)
}
