// Package refs parses and resolves block-reference tokens embedded in
// free text: ((ref)) addresses a node in the current tree, ((treeId:ref))
// addresses a node in another registered tree.
package refs

import "strings"

// Token is one ((...)) occurrence. Start/End are byte offsets of the full
// token (including delimiters) within the scanned text.
type Token struct {
	Raw       string `json:"raw"` // text between (( and ))
	TreeID    string `json:"treeId,omitempty"`
	Ref       string `json:"ref"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Malformed bool   `json:"malformed,omitempty"`
}

func isRefChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-':
		return true
	}
	return false
}

func wellFormed(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isRefChar(s[i]) {
			return false
		}
	}
	return true
}

// Scan lexes every ((...)) token in text, in order. A token closes at the
// FIRST )) after its opening ((, so nested parens like ((a((b))c)) yield one
// malformed token "a((b" and leave "c))" as plain text. That mirrors the
// original editor's behavior and is pinned by tests.
// Tokens without a closing )) are dropped entirely. Malformed tokens
// (empty ref, bad characters, empty treeId as in ((:x))) are returned with
// Malformed set so callers can report them; they never fail the scan.
func Scan(text string) []Token {
	var out []Token
	for i := 0; i+1 < len(text); {
		open := strings.Index(text[i:], "((")
		if open < 0 {
			break
		}
		open += i
		close := strings.Index(text[open+2:], "))")
		if close < 0 {
			break
		}
		close += open + 2

		tok := Token{
			Raw:   text[open+2 : close],
			Start: open,
			End:   close + 2,
		}
		if k := strings.IndexByte(tok.Raw, ':'); k >= 0 {
			tok.TreeID = tok.Raw[:k]
			tok.Ref = tok.Raw[k+1:]
			// An empty treeId, as in ((:x)), is treated as a reference
			// that can never resolve, not as a local token.
			if !wellFormed(tok.TreeID) || !wellFormed(tok.Ref) {
				tok.Malformed = true
			}
		} else {
			tok.Ref = tok.Raw
			if !wellFormed(tok.Ref) {
				tok.Malformed = true
			}
		}
		out = append(out, tok)
		i = tok.End
	}
	return out
}
