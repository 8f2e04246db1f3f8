package parser

import "strings"

type token struct {
	text   string
	quoted bool // any part was quoted, so operators inside are literal
}

// tokenize splits line on unquoted whitespace and operators. Double and
// single quotes group and are stripped; a backslash escapes the next
// character outside single quotes.
func tokenize(line string) []token {
	var (
		toks    []token
		buf     strings.Builder
		started bool
		quoted  bool
		quote   rune
	)
	flush := func() {
		if started {
			toks = append(toks, token{text: buf.String(), quoted: quoted})
		}
		buf.Reset()
		started, quoted = false, false
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if quote != 0 {
			switch {
			case r == quote:
				quote = 0
			case r == '\\' && quote == '"' && i+1 < len(runes) && (runes[i+1] == '"' || runes[i+1] == '\\'):
				i++
				buf.WriteRune(runes[i])
			default:
				buf.WriteRune(r)
			}
			continue
		}

		switch r {
		case '"', '\'':
			quote = r
			started, quoted = true, true
		case '\\':
			if i+1 < len(runes) {
				i++
				buf.WriteRune(runes[i])
				started, quoted = true, true
			}
		case ' ', '\t', '\n', '\r':
			flush()
		case '|', '&', '>', ';':
			flush()
			op := string(r)
			if i+1 < len(runes) && (r == '|' || r == '&' || r == '>') && runes[i+1] == r {
				op += string(r)
				i++
			}
			toks = append(toks, token{text: op})
		default:
			buf.WriteRune(r)
			started = true
		}
	}
	flush()
	return toks
}
