package parser

import "strconv"

// Parser turns a token stream into a Module, accumulating errors rather
// than stopping at the first one so a single pass can report everything
// wrong with a source file.
type Parser struct {
	lex     *Lexer
	errs    *ErrorList
	tok     Token
	haveTok bool
}

// NewParser returns a parser over src, attributing positions to filename.
func NewParser(filename, src string) *Parser {
	return &Parser{lex: NewLexer(filename, src), errs: &ErrorList{}}
}

func (p *Parser) next() Token {
	if p.haveTok {
		p.haveTok = false
		return p.tok
	}
	tok, err := p.lex.Next()
	if err != nil {
		p.errs.AddError(err)
		return Token{Kind: TokenEOF, Pos: err.Pos}
	}
	return tok
}

func (p *Parser) peek() Token {
	if !p.haveTok {
		p.tok = p.next()
		p.haveTok = true
	}
	return p.tok
}

func (p *Parser) skipNewlines() {
	for p.peek().Kind == TokenNewline {
		p.next()
	}
}

// Parse consumes the whole source and returns the resulting Module
// along with any accumulated errors (the caller should check
// errs.HasErrors() before trusting the Module).
func Parse(filename, src string) (*Module, *ErrorList) {
	p := NewParser(filename, src)
	mod := newModule()

	p.skipNewlines()
	for p.peek().Kind == TokenDirective {
		p.parseDirective(mod)
		p.skipNewlines()
	}

	for p.peek().Kind != TokenEOF {
		p.parseInstructionLine(mod)
		p.skipNewlines()
	}

	return mod, p.errs
}

func (p *Parser) parseDirective(mod *Module) {
	tok := p.next()
	switch tok.Text {
	case ".metadata":
		key := p.next()
		val := p.next()
		mod.Metadata[key.Text] = val.Text
	case ".buildtag":
		mod.BuildTag = p.next().Text
	case ".selftype":
		mod.SelfType = p.next().Text
	case ".field":
		p.parseFieldDecl(mod, tok.Pos)
	case ".parameter":
		p.parseParameterDecl(mod, tok.Pos)
	case ".typenumber":
		p.parseTypeDecl(mod, tok.Pos)
	case ".symmetries":
		mod.Symmetries = p.parseSymmetryNames()
	case ".splat":
		mod.Splat = true
		p.errs.AddError(NewError(tok.Pos, ErrorUnsupportedDirective,
			"splat copy selection is not supported by this implementation"))
	default:
		p.errs.AddError(NewError(tok.Pos, ErrorInvalidDirective, "unknown directive "+tok.Text))
	}
	p.consumeLineEnd()
}

func (p *Parser) parseFieldDecl(mod *Module, pos Position) {
	name := p.next().Text
	offset := p.parseIntLiteral()
	length := p.parseIntLiteral()
	signed := false
	if p.peek().Kind == TokenIdent && p.peek().Text == "signed" {
		p.next()
		signed = true
	}
	mod.Fields = append(mod.Fields, FieldDecl{Name: name, Offset: offset, Length: length, Signed: signed, Pos: pos})
}

func (p *Parser) parseParameterDecl(mod *Module, pos Position) {
	name := p.next().Text
	val := p.parseOperand()
	mod.Parameters = append(mod.Parameters, ParameterDecl{Name: name, Value: val, Pos: pos})
}

func (p *Parser) parseTypeDecl(mod *Module, pos Position) {
	name := p.next().Text
	num := p.parseIntLiteral()
	mod.Types = append(mod.Types, TypeDecl{Name: name, Number: num, Pos: pos})
}

func (p *Parser) parseSymmetryNames() []string {
	var names []string
	tok := p.next()
	names = append(names, tok.Text)
	for p.peek().Kind == TokenPipe {
		p.next()
		names = append(names, p.next().Text)
	}
	return names
}

func (p *Parser) parseIntLiteral() int {
	tok := p.next()
	n, err := strconv.ParseInt(tok.Text, 0, 64)
	if err != nil {
		p.errs.AddError(NewError(tok.Pos, ErrorInvalidOperand, "expected integer literal, got "+tok.Text))
		return 0
	}
	return int(n)
}

func (p *Parser) consumeLineEnd() {
	if p.peek().Kind == TokenNewline {
		p.next()
	}
}

// parseInstructionLine reads zero or more `label:` prefixes followed by
// a mnemonic and its comma-separated operands. Labels on lines of their
// own are carried forward to the next instruction.
func (p *Parser) parseInstructionLine(mod *Module) {
	var labels []string
	for {
		for p.peek().Kind == TokenLabelDef {
			labels = append(labels, p.next().Text)
		}
		if len(labels) == 0 || p.peek().Kind != TokenNewline {
			break
		}
		p.skipNewlines()
	}
	if p.peek().Kind == TokenNewline || p.peek().Kind == TokenEOF {
		p.consumeLineEnd()
		return
	}

	mnemTok := p.next()
	if mnemTok.Kind != TokenIdent {
		p.errs.AddError(NewError(mnemTok.Pos, ErrorInvalidInstruction, "expected instruction mnemonic, got "+mnemTok.Text))
		p.skipToLineEnd()
		return
	}

	inst := Instruction{Labels: labels, Mnemonic: mnemTok.Text, Pos: mnemTok.Pos}

	if mnemTok.Text == "usesymmetries" {
		op := Operand{Kind: OperandSymmetrySet, Pos: p.peek().Pos, SymmetryNames: p.parseSymmetryNames()}
		inst.Operands = append(inst.Operands, op)
	} else {
		for p.peek().Kind != TokenNewline && p.peek().Kind != TokenEOF {
			inst.Operands = append(inst.Operands, p.parseOperand())
			if p.peek().Kind == TokenComma {
				p.next()
			}
		}
	}

	mod.Instructions = append(mod.Instructions, inst)
	p.consumeLineEnd()
}

func (p *Parser) skipToLineEnd() {
	for p.peek().Kind != TokenNewline && p.peek().Kind != TokenEOF {
		p.next()
	}
}

// parseOperand resolves a single raw operand token into its shape; full
// semantic resolution (does this field/type/label actually exist)
// happens later in the encoder.
func (p *Parser) parseOperand() Operand {
	tok := p.next()
	switch tok.Kind {
	case TokenNumber:
		n, err := strconv.ParseInt(tok.Text, 0, 64)
		if err != nil {
			p.errs.AddError(NewError(tok.Pos, ErrorInvalidOperand, "invalid numeric literal "+tok.Text))
		}
		return Operand{Kind: OperandConst, Pos: tok.Pos, IntValue: n, Signed: n < 0}
	case TokenRegister:
		if tok.Text == "?" {
			return Operand{Kind: OperandRegister, Pos: tok.Pos, IsRandom: true}
		}
		n, _ := strconv.ParseInt(tok.Text, 10, 64)
		return Operand{Kind: OperandRegister, Pos: tok.Pos, IntValue: n}
	case TokenField:
		return Operand{Kind: OperandField, Pos: tok.Pos, Name: tok.Text}
	case TokenSite:
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return Operand{Kind: OperandSite, Pos: tok.Pos, Name: tok.Text}
		}
		return Operand{Kind: OperandSite, Pos: tok.Pos, IntValue: n}
	case TokenTypeRef:
		return Operand{Kind: OperandTypeRef, Pos: tok.Pos, Name: tok.Text}
	case TokenSkip:
		return Operand{Kind: OperandSkip, Pos: tok.Pos}
	case TokenIdent:
		return Operand{Kind: OperandLabel, Pos: tok.Pos, Name: tok.Text}
	default:
		p.errs.AddError(NewError(tok.Pos, ErrorInvalidOperand, "unexpected token in operand position: "+tok.Text))
		return Operand{Kind: OperandConst, Pos: tok.Pos}
	}
}
