// Package room issues display identifiers for remote tables and the share
// links built from them. No peer session exists behind a room.
package room

import (
	"strings"

	"github.com/samber/lo"
)

const codeLength = 6

var charset = append(append([]rune{}, lo.UpperCaseLettersCharset...), lo.NumbersCharset...)

// NewCode returns a random room code such as "K3X9QZ".
func NewCode() string {
	return lo.RandomString(codeLength, charset)
}

// Normalize uppercases and trims a user-entered code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ShareLink builds "<base>#room=<code>".
func ShareLink(base, code string) string {
	return strings.TrimRight(base, "/#") + "/#room=" + code
}
