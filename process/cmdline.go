package process

import (
	"strings"

	"github.com/Norconex/commons-lang-sub007/errors"
)

// Tokenize splits a command line into tokens, honoring single and double
// quotes. Quoted segments keep their embedded whitespace and the surrounding
// quotes are stripped. An unterminated quote is a configuration error.
func Tokenize(line string) ([]string, error) {
	var (
		tokens  []string
		current strings.Builder
		inToken bool
		quote   rune
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, errors.Configurationf(
			"unterminated %c-quote in command line: %s", quote, line)
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}

// Escape wraps a token in double quotes when it contains whitespace and is
// not already quoted. Other tokens are returned unchanged.
func Escape(token string) string {
	if !strings.ContainsAny(token, " \t") {
		return token
	}
	if len(token) >= 2 && token[0] == '"' && token[len(token)-1] == '"' {
		return token
	}
	return `"` + token + `"`
}

// EscapeArgs applies Escape to every token.
func EscapeArgs(tokens []string) []string {
	escaped := make([]string, len(tokens))
	for i, t := range tokens {
		escaped[i] = Escape(t)
	}
	return escaped
}

// CommandLine joins tokens into a single display-ready command line,
// quoting tokens that contain whitespace.
func CommandLine(tokens []string) string {
	return strings.Join(EscapeArgs(tokens), " ")
}

// wrapForInterpreter adapts a token list to the host shell. On Windows the
// tokens are collapsed into a single quoted command string handed to
// "cmd /C", first stripping any interpreter prefix already present so
// wrapping is idempotent. The legacy command.com spelling is recognized
// when stripping but never emitted. Other platforms run the tokens as-is.
func wrapForInterpreter(goos string, tokens []string) []string {
	if goos != "windows" {
		return tokens
	}
	tokens = stripInterpreterPrefix(tokens)
	return []string{"cmd", "/C", strings.Join(EscapeArgs(tokens), " ")}
}

func stripInterpreterPrefix(tokens []string) []string {
	if len(tokens) < 2 {
		return tokens
	}
	interp := strings.ToLower(tokens[0])
	switch interp {
	case "cmd", "cmd.exe", "command.com":
		if strings.EqualFold(tokens[1], "/c") {
			return tokens[2:]
		}
	}
	return tokens
}
