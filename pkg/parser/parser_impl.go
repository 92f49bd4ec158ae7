package parser

import (
	"fmt"
	"strconv"

	"github.com/sandrolain/goxmatch/pkg/types"
)

// Parser implements a recursive descent parser for queries.
type Parser struct {
	lexer   *Lexer
	current Token
	depth   int
	opts    CompileOptions
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...CompileOption) *Parser {
	options := CompileOptions{
		MaxDepth: 100,
	}
	for _, opt := range opts {
		opt(&options)
	}

	p := &Parser{
		lexer: NewLexer(input),
		opts:  options,
	}

	// Read the first token
	p.advance()

	return p
}

// Parse parses the entire query and returns the Expression.
func (p *Parser) Parse() (*types.Expression, error) {
	if p.current.Type == TokenEOF {
		return nil, p.error("empty expression")
	}

	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.current.Type != TokenEOF {
		return nil, p.error(fmt.Sprintf("unexpected token %q", p.current.Value))
	}

	return types.NewExpression(node, p.lexer.input), nil
}

// advance moves to the next token.
func (p *Parser) advance() {
	p.current = p.lexer.Next()
}

// expect checks if the current token matches the expected type and advances.
func (p *Parser) expect(tt TokenType) error {
	if p.current.Type != tt {
		return p.error(fmt.Sprintf("expected %s but got %s", tt, p.current.Type))
	}
	p.advance()
	return nil
}

// error creates a syntax error at the current token. Lexer errors take
// precedence since they explain why the token stream ended.
func (p *Parser) error(message string) error {
	if p.current.Type == TokenError {
		return p.lexer.Error()
	}
	return types.NewError(types.ErrSyntaxError, message, p.current.Position).WithToken(p.current.Value)
}

func (p *Parser) parseExpr() (*types.ASTNode, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.opts.MaxDepth {
		return nil, p.error(fmt.Sprintf("expression nesting exceeds %d levels", p.opts.MaxDepth))
	}
	return p.parsePath()
}

// parsePath parses PathExpr. A relative path made of a single primary is
// returned as that primary, and a lone '.' as the context item.
func (p *Parser) parsePath() (*types.ASTNode, error) {
	start := p.current

	switch start.Type {
	case TokenSlash:
		p.advance()
		path := types.NewASTNode(types.NodePath, start.Position)
		path.Absolute = true
		if !p.atAxisStep() {
			return path, nil
		}
		step, err := p.parseAxisStep(types.AxisChild)
		if err != nil {
			return nil, err
		}
		path.Steps = append(path.Steps, step)
		return p.parseRelSteps(path)

	case TokenDoubleSlash:
		p.advance()
		path := types.NewASTNode(types.NodePath, start.Position)
		path.Absolute = true
		step, err := p.parseAxisStep(types.AxisDescendant)
		if err != nil {
			return nil, err
		}
		path.Steps = append(path.Steps, step)
		return p.parseRelSteps(path)
	}

	first, err := p.parseStepExpr()
	if err != nil {
		return nil, err
	}
	path := types.NewASTNode(types.NodePath, start.Position)
	if isAxisStep(first) {
		if p.current.Type != TokenSlash && p.current.Type != TokenDoubleSlash &&
			first.Type == types.NodeContext && len(first.Predicates) == 0 {
			return first, nil
		}
		path.Steps = append(path.Steps, first)
	} else {
		if p.current.Type != TokenSlash && p.current.Type != TokenDoubleSlash {
			return first, nil
		}
		path.Primary = first
	}
	return p.parseRelSteps(path)
}

func (p *Parser) parseRelSteps(path *types.ASTNode) (*types.ASTNode, error) {
	for p.current.Type == TokenSlash || p.current.Type == TokenDoubleSlash {
		axis := types.AxisChild
		if p.current.Type == TokenDoubleSlash {
			axis = types.AxisDescendant
		}
		p.advance()
		step, err := p.parseAxisStep(axis)
		if err != nil {
			return nil, err
		}
		path.Steps = append(path.Steps, step)
	}
	return path, nil
}

func (p *Parser) atAxisStep() bool {
	switch p.current.Type {
	case TokenName, TokenStar, TokenDot:
		return true
	default:
		return false
	}
}

func isAxisStep(n *types.ASTNode) bool {
	switch n.Type {
	case types.NodeStep, types.NodeWildcard, types.NodeContext:
		return true
	default:
		return false
	}
}

// parseStepExpr parses the first step of a relative path, which may be a
// primary expression.
func (p *Parser) parseStepExpr() (*types.ASTNode, error) {
	tok := p.current
	switch tok.Type {
	case TokenName:
		p.advance()
		if p.current.Type == TokenParenOpen {
			call, err := p.parseFunctionCall(tok)
			if err != nil {
				return nil, err
			}
			return p.parseFilter(call)
		}
		step := types.NewASTNode(types.NodeStep, tok.Position)
		step.StrValue = tok.Value
		return step, p.parsePredicates(step)
	case TokenStar, TokenDot:
		return p.parseAxisStep(types.AxisChild)
	}

	prim, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parseFilter(prim)
}

// parseAxisStep parses a name test, '*' or '.' followed by predicates.
func (p *Parser) parseAxisStep(axis types.Axis) (*types.ASTNode, error) {
	tok := p.current
	var step *types.ASTNode
	switch tok.Type {
	case TokenName:
		step = types.NewASTNode(types.NodeStep, tok.Position)
		step.StrValue = tok.Value
	case TokenStar:
		step = types.NewASTNode(types.NodeWildcard, tok.Position)
		step.StrValue = "*"
	case TokenDot:
		step = types.NewASTNode(types.NodeContext, tok.Position)
	default:
		return nil, p.error(fmt.Sprintf("expected a step after %s", axis))
	}
	step.Axis = axis
	p.advance()
	if tok.Type == TokenName && p.current.Type == TokenParenOpen {
		return nil, p.error(fmt.Sprintf("function %s cannot be used as a path step", tok.Value))
	}
	return step, p.parsePredicates(step)
}

func (p *Parser) parsePredicates(node *types.ASTNode) error {
	for p.current.Type == TokenBracketOpen {
		p.advance()
		pred, err := p.parseExpr()
		if err != nil {
			return err
		}
		if err := p.expect(TokenBracketClose); err != nil {
			return err
		}
		node.Predicates = append(node.Predicates, pred)
	}
	return nil
}

// parseFilter wraps prim in a filter node when predicates follow it.
func (p *Parser) parseFilter(prim *types.ASTNode) (*types.ASTNode, error) {
	if p.current.Type != TokenBracketOpen {
		return prim, nil
	}
	filter := types.NewASTNode(types.NodeFilter, prim.Position)
	filter.Primary = prim
	if err := p.parsePredicates(filter); err != nil {
		return nil, err
	}
	return filter, nil
}

func (p *Parser) parsePrimary() (*types.ASTNode, error) {
	tok := p.current
	switch tok.Type {
	case TokenString:
		node := types.NewASTNode(types.NodeString, tok.Position)
		node.StrValue = tok.Value
		p.advance()
		return node, nil

	case TokenNumber:
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.error(fmt.Sprintf("invalid number %q", tok.Value))
		}
		node := types.NewASTNode(types.NodeNumber, tok.Position)
		node.NumValue = v
		node.StrValue = tok.Value
		p.advance()
		return node, nil

	case TokenParenOpen:
		p.advance()
		if p.current.Type == TokenParenClose {
			p.advance()
			return types.NewASTNode(types.NodeEmpty, tok.Position), nil
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenParenClose); err != nil {
			return nil, err
		}
		return inner, nil
	}

	if tok.Type == TokenEOF {
		return nil, p.error("unexpected end of expression")
	}
	return nil, p.error(fmt.Sprintf("unexpected token %q", tok.Value))
}

// parseFunctionCall parses the argument list of a call whose name token
// has been consumed.
func (p *Parser) parseFunctionCall(name Token) (*types.ASTNode, error) {
	call := types.NewASTNode(types.NodeFunction, name.Position)
	call.StrValue = name.Value
	p.advance() // (

	if p.current.Type == TokenParenClose {
		p.advance()
		return call, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.Arguments = append(call.Arguments, arg)
		if p.current.Type != TokenComma {
			break
		}
		p.advance()
	}
	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}
	return call, nil
}
