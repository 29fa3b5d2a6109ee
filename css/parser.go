// Package css parses inline style attributes of editor markup.
package css

import (
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses inline style attribute values into declarations.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new inline style parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css")}
}

// ParseInline splits style on ';' and parses every non-empty piece as a
// single declaration. Pieces which fail to parse are kept with empty
// Property so keyword scans over Source still see them.
func (p *Parser) ParseInline(style string) Declarations {
	if strings.TrimSpace(style) == "" {
		return nil
	}

	var res Declarations
	for piece := range strings.SplitSeq(style, ";") {
		src := strings.TrimSpace(piece)
		if src == "" {
			continue
		}
		decl := Declaration{Source: src}
		if prop, val, ok := p.parseDeclaration(src); ok {
			decl.Property, decl.Value = prop, val
		} else {
			p.log.Debug("Ignoring malformed declaration", zap.String("declaration", src))
		}
		res = append(res, decl)
	}
	return res
}

func (p *Parser) parseDeclaration(src string) (string, Value, bool) {
	parser := css.NewParser(parse.NewInputString(src), true)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return "", Value{}, false
		case css.DeclarationGrammar:
			prop := strings.ToLower(strings.TrimSpace(string(data)))
			if prop == "" {
				return "", Value{}, false
			}
			return prop, parseValue(parser.Values()), true
		case css.CustomPropertyGrammar:
			// --var: not used by editor markup
			return "", Value{}, false
		}
	}
}

// parseValue converts declaration tokens to a Value.
func parseValue(tokens []css.Token) Value {
	var (
		toks      = make([]css.Token, 0, len(tokens))
		important bool
	)
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if t.TokenType == css.DelimToken && string(t.Data) == "!" {
			j := i + 1
			for j < len(tokens) && tokens[j].TokenType == css.WhitespaceToken {
				j++
			}
			if j < len(tokens) && tokens[j].TokenType == css.IdentToken && strings.EqualFold(string(tokens[j].Data), "important") {
				important = true
				i = j
				continue
			}
		}
		toks = append(toks, t)
	}
	toks = trimWhitespace(toks)
	if len(toks) == 0 {
		return Value{Important: important}
	}

	var sb strings.Builder
	for _, t := range toks {
		if t.TokenType == css.WhitespaceToken {
			sb.WriteByte(' ')
			continue
		}
		sb.Write(t.Data)
	}
	raw := strings.ToLower(sb.String())

	val := Value{Raw: raw, Important: important}
	if len(toks) > 1 {
		val.Keyword = raw
		return val
	}

	t := toks[0]
	switch t.TokenType {
	case css.DimensionToken:
		val.Value, val.Unit = parseDimension(string(t.Data))
	case css.PercentageToken:
		val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
		val.Unit = "%"
	case css.NumberToken:
		val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
	case css.StringToken:
		val.Keyword = unquote(string(t.Data))
	default:
		val.Keyword = raw
	}
	return val
}

func trimWhitespace(toks []css.Token) []css.Token {
	for len(toks) > 0 && toks[0].TokenType == css.WhitespaceToken {
		toks = toks[1:]
	}
	for len(toks) > 0 && toks[len(toks)-1].TokenType == css.WhitespaceToken {
		toks = toks[:len(toks)-1]
	}
	return toks
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}
	if numEnd == 0 {
		return 0, ""
	}

	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	unit := strings.ToLower(s[numEnd:])
	return num, unit
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
