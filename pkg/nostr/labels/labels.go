// Package labels names the message types by the string that leads their
// JSON array, with a compact enum for switching on them.
package labels

type T byte

const (
	LNil T = iota
	LEvent
	LReq
	LClose
	LOK
	LEOSE
	LNotice
)

const (
	EVENT  = "EVENT"
	REQ    = "REQ"
	CLOSE  = "CLOSE"
	OK     = "OK"
	EOSE   = "EOSE"
	NOTICE = "NOTICE"
)

// List maps each label to its wire string.
var List = map[T]string{
	LEvent:  EVENT,
	LReq:    REQ,
	LClose:  CLOSE,
	LOK:     OK,
	LEOSE:   EOSE,
	LNotice: NOTICE,
}

// GetLabel returns the enum for the wire string s, or LNil if there is none.
func GetLabel(s string) T {
	for l, name := range List {
		if name == s {
			return l
		}
	}
	return LNil
}

func (l T) String() string {
	if s, ok := List[l]; ok {
		return s
	}
	return "<nil>"
}
