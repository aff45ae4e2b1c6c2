package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	lex := NewLexer("test.mfm", src)
	var toks []Token
	for {
		tok, err := lex.Next()
		assert.Nil(t, err)
		toks = append(toks, tok)
		if tok.Kind == TokenEOF {
			return toks
		}
	}
}

func TestLexerTokenKinds(t *testing.T) {
	toks := lexAll(t, "push 5, r3, $counter, #2, %Wall, _\n")
	kinds := make([]TokenKind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []TokenKind{
		TokenIdent, TokenNumber, TokenComma, TokenRegister, TokenComma,
		TokenField, TokenComma, TokenSite, TokenComma, TokenTypeRef,
		TokenComma, TokenSkip, TokenNewline, TokenEOF,
	}, kinds)
}

func TestLexerNegativeNumber(t *testing.T) {
	toks := lexAll(t, "-7")
	assert.Equal(t, TokenNumber, toks[0].Kind)
	assert.Equal(t, "-7", toks[0].Text)
}

func TestLexerHexAndBinary(t *testing.T) {
	toks := lexAll(t, "0xFF 0b1010")
	assert.Equal(t, "0xFF", toks[0].Text)
	assert.Equal(t, "0b1010", toks[1].Text)
}

func TestLexerComments(t *testing.T) {
	toks := lexAll(t, "push 1 // a comment\n; another comment\npop\n")
	var idents []string
	for _, tok := range toks {
		if tok.Kind == TokenIdent {
			idents = append(idents, tok.Text)
		}
	}
	assert.Equal(t, []string{"push", "pop"}, idents)
}

func TestLexerLabelDefinition(t *testing.T) {
	toks := lexAll(t, "loop: jump loop\n")
	assert.Equal(t, TokenLabelDef, toks[0].Kind)
	assert.Equal(t, "loop", toks[0].Text)
}

func TestLexerRandomRegister(t *testing.T) {
	toks := lexAll(t, "getregister r?\n")
	assert.Equal(t, TokenRegister, toks[1].Kind)
	assert.Equal(t, "?", toks[1].Text)
}

func TestLexerQuotedTypeRef(t *testing.T) {
	toks := lexAll(t, `%"DReg Wall"`)
	assert.Equal(t, TokenTypeRef, toks[0].Kind)
	assert.Equal(t, "DReg Wall", toks[0].Text)
}

func TestLexerUnterminatedStringErrors(t *testing.T) {
	lex := NewLexer("test.mfm", `"unterminated`)
	_, err := lex.Next()
	assert.NotNil(t, err)
}
