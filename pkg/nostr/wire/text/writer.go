package text

import "github.com/mailru/easyjson/jwriter"

// String writes s to w quoted with AppendQuoted rather than the jwriter
// escaping, which also escapes HTML characters and U+2028/U+2029.
func String(w *jwriter.Writer, s string) {
	w.Raw(AppendQuoted(nil, s), nil)
}
