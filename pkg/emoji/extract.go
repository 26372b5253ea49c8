package emoji

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/forPelevin/gomoji"
	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

// customPattern matches <:name:id> and <a:name:id> references.
var customPattern = regexp.MustCompile(`<(a?):([^:<>\s]{1,32}):([0-9]{0,20})>`)

// Matcher recognises standard emoji grapheme clusters.
type Matcher interface {
	IsEmoji(cluster string) bool
}

// GomojiMatcher matches clusters against the gomoji emoji table.
type GomojiMatcher struct{}

// IsEmoji reports whether the cluster is a known standard emoji.
func (GomojiMatcher) IsEmoji(cluster string) bool {
	// Digits, '#' and '*' carry the Emoji property but never render as one alone.
	if isASCII(cluster) {
		return false
	}
	_, err := gomoji.GetInfo(cluster)
	return err == nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// Extraction is the result of tokenising operator input.
type Extraction struct {
	Tokens  []Token
	Missing []string
}

// Empty reports whether no usable token survived extraction.
func (e Extraction) Empty() bool {
	return len(e.Tokens) == 0
}

// Extractor turns mixed text into an ordered, distinct token list.
type Extractor struct {
	registry Registry
	matcher  Matcher
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMatcher replaces the standard emoji matcher.
func WithMatcher(m Matcher) Option {
	return func(x *Extractor) {
		x.matcher = m
	}
}

// NewExtractor creates an extractor resolving custom emoji through registry.
// A nil registry reports every custom reference as missing.
func NewExtractor(registry Registry, opts ...Option) *Extractor {
	x := &Extractor{
		registry: registry,
		matcher:  GomojiMatcher{},
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract tokenises input using the default matcher.
func Extract(ctx context.Context, registry Registry, guildID, input string) Extraction {
	return NewExtractor(registry).Extract(ctx, guildID, input)
}

// Extract splits input into emoji clusters and literal spans. Emoji clusters
// become tokens verbatim; literal spans are searched for custom references,
// which are resolved against the guild registry. Tokens keep first-seen order
// and are distinct up to variation selectors.
func (x *Extractor) Extract(ctx context.Context, guildID, input string) Extraction {
	b := &builder{seen: make(map[Token]struct{})}

	var literal strings.Builder
	flush := func() {
		span := strings.TrimSpace(literal.String())
		literal.Reset()
		if span != "" {
			x.resolveCustom(ctx, guildID, span, b)
		}
	}

	gr := uniseg.NewGraphemes(norm.NFC.String(input))
	for gr.Next() {
		cluster := gr.Str()
		if x.matcher.IsEmoji(cluster) {
			flush()
			b.add(Token(cluster))
			continue
		}
		literal.WriteString(cluster)
	}
	flush()

	return Extraction{Tokens: b.tokens, Missing: b.missing}
}

func (x *Extractor) resolveCustom(ctx context.Context, guildID, span string, b *builder) {
	for _, m := range customPattern.FindAllStringSubmatch(span, -1) {
		raw, id := m[0], m[3]
		if id == "" || guildID == "" || x.registry == nil {
			b.missing = append(b.missing, raw)
			continue
		}

		token, err := x.registry.LookupEmoji(ctx, guildID, id)
		if err != nil || token == "" {
			b.missing = append(b.missing, raw)
			continue
		}
		b.add(token)
	}
}

type builder struct {
	tokens  []Token
	missing []string
	seen    map[Token]struct{}
}

// add keeps the first-seen form of each emoji. Forms that differ only in
// U+FE0F are one reaction on Discord.
func (b *builder) add(t Token) {
	key := t.Canonical()
	if _, ok := b.seen[key]; ok {
		return
	}
	b.seen[key] = struct{}{}
	b.tokens = append(b.tokens, t)
}

// FormatMissing renders lookup diagnostics for an operator-facing status line.
func FormatMissing(missing []string) string {
	parts := make([]string, len(missing))
	for i, raw := range missing {
		parts[i] = fmt.Sprintf("[*MISSING -> %s*]", raw)
	}
	return strings.Join(parts, " ")
}
