package meta

import "strings"

// Flag is a single meta protocol flag as it appears in a response: a
// one-letter type, optionally followed by a token (e.g. "O123", "t60").
type Flag struct {
	Type  FlagType
	Token string // empty for flags without a token
}

// Flags is an ordered list of response flags. Order matches the wire order.
type Flags []Flag

// Has checks if a flag of the given type is present.
func (f Flags) Has(flagType FlagType) bool {
	_, ok := f.Get(flagType)
	return ok
}

// Get returns the token for the first flag of the given type.
// ok is false if the flag is absent; token is empty for token-less flags.
func (f Flags) Get(flagType FlagType) (token string, ok bool) {
	for _, flag := range f {
		if flag.Type == flagType {
			return flag.Token, true
		}
	}
	return "", false
}

func (f Flags) String() string {
	var sb strings.Builder
	for i, flag := range f {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(byte(flag.Type))
		sb.WriteString(flag.Token)
	}
	return sb.String()
}
