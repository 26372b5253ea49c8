// Package emoji extracts reaction tokens from free-form operator input.
//
// A token is either a standard emoji grapheme cluster, accepted verbatim, or
// a custom guild emoji in its rendered form (<:name:id> or <a:name:id>). Custom
// references are only accepted once the guild's emoji registry confirms them.
package emoji

import (
	"context"
	"errors"
	"strings"
)

// Token is the canonical string form of one emoji.
type Token string

// String returns the token's canonical form.
func (t Token) String() string {
	return string(t)
}

// Canonical returns the token with emoji presentation selectors (U+FE0F)
// removed, the form Discord compares reactions by.
func (t Token) Canonical() Token {
	return Token(strings.ReplaceAll(string(t), "\ufe0f", ""))
}

// IsCustom reports whether the token is a rendered custom emoji reference.
func (t Token) IsCustom() bool {
	s := string(t)
	return strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") && strings.Count(s, ":") >= 2
}

// APIName returns the form the reaction endpoints accept: name:id for custom
// emoji, the grapheme itself for standard emoji.
func (t Token) APIName() string {
	if !t.IsCustom() {
		return string(t)
	}
	parts := strings.Split(strings.Trim(string(t), "<>"), ":")
	if len(parts) < 3 {
		return string(t)
	}
	return parts[len(parts)-2] + ":" + parts[len(parts)-1]
}

// Render joins tokens the way an operator would type them.
func Render(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = string(t)
	}
	return strings.Join(parts, " ")
}

// Registry resolves custom emoji ids against a guild's uploaded emoji.
type Registry interface {
	// LookupEmoji returns the rendered form of the emoji, or an error when the
	// id is unknown or the registry cannot be reached.
	LookupEmoji(ctx context.Context, guildID, emojiID string) (Token, error)
}

// ErrRegistryUnavailable is returned when there is no guild to look emoji up in.
var ErrRegistryUnavailable = errors.New("emoji registry unavailable")
