// Package text implements the string escaping used for nostr JSON, both in the
// canonical form that is hashed to produce event ids and in wire messages.
//
// Only the characters that RFC8259 requires are escaped: quotation mark,
// reverse solidus and the control characters U+0000 through U+001F. The short
// forms \b \t \n \f \r are used where they exist, the rest of the control
// characters are written as \u00xx with lowercase hex. Everything else,
// including '/', '<', '>', '&', U+2028 and U+2029, is copied verbatim. Any
// other escaping would change the bytes that are hashed and break signatures.
package text

const hexDigits = "0123456789abcdef"

// AppendQuoted appends s to dst wrapped in quotes and escaped as described
// in the package documentation.
func AppendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			dst = append(dst, '\\', '"')
		case c == '\\':
			dst = append(dst, '\\', '\\')
		case c >= 0x20:
			dst = append(dst, c)
		case c == '\b':
			dst = append(dst, '\\', 'b')
		case c == '\t':
			dst = append(dst, '\\', 't')
		case c == '\n':
			dst = append(dst, '\\', 'n')
		case c == '\f':
			dst = append(dst, '\\', 'f')
		case c == '\r':
			dst = append(dst, '\\', 'r')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
		}
	}
	return append(dst, '"')
}

// Quote returns s quoted and escaped as a new byte slice.
func Quote(s string) []byte {
	return AppendQuoted(make([]byte, 0, len(s)+2), s)
}
