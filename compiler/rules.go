package compiler

import (
	"titan/opcode"
	"titan/token"
	"titan/value"
)

// ParseFn is a prefix or infix action bound to a token kind. Actions are
// plain methods on *Compiler rather than closures, so the rule table is
// a static map with no captured compiler reference to keep straight.
type ParseFn func(c *Compiler)

type rule struct {
	Prefix     ParseFn
	Infix      ParseFn
	Precedence Precedence
}

// rules is assigned in init rather than at its declaration: the table's
// actions reach getRule, which reads rules, and Go rejects a package
// variable whose initializer refers back to itself.
var rules map[token.TokenType]rule

func init() { rules = ruleTable }

var ruleTable = map[token.TokenType]rule{
	token.LPA:          {Prefix: (*Compiler).grouping, Precedence: PrecNone},
	token.SUB:          {Prefix: (*Compiler).unary, Infix: (*Compiler).binary, Precedence: PrecTerm},
	token.ADD:          {Infix: (*Compiler).binary, Precedence: PrecTerm},
	token.DIV:          {Infix: (*Compiler).binary, Precedence: PrecFactor},
	token.MULT:         {Infix: (*Compiler).binary, Precedence: PrecFactor},
	token.BANG:         {Prefix: (*Compiler).unary, Precedence: PrecNone},
	token.NOT_EQUAL:    {Infix: (*Compiler).binary, Precedence: PrecEquality},
	token.EQUAL_EQUAL:  {Infix: (*Compiler).binary, Precedence: PrecEquality},
	token.LARGER:       {Infix: (*Compiler).binary, Precedence: PrecComparison},
	token.LARGER_EQUAL: {Infix: (*Compiler).binary, Precedence: PrecComparison},
	token.LESS:         {Infix: (*Compiler).binary, Precedence: PrecComparison},
	token.LESS_EQUAL:   {Infix: (*Compiler).binary, Precedence: PrecComparison},
	token.IDENTIFIER:   {Prefix: (*Compiler).variable, Precedence: PrecNone},
	token.STRING:       {Prefix: (*Compiler).stringLiteral, Precedence: PrecNone},
	token.NUMBER:       {Prefix: (*Compiler).number, Precedence: PrecNone},
	token.TRUE:         {Prefix: (*Compiler).literal, Precedence: PrecNone},
	token.FALSE:        {Prefix: (*Compiler).literal, Precedence: PrecNone},
	token.NULL:         {Prefix: (*Compiler).literal, Precedence: PrecNone},
	token.AND:          {Infix: (*Compiler).and_, Precedence: PrecAnd},
	token.OR:           {Infix: (*Compiler).or_, Precedence: PrecOr},
}

// getRule returns t's rule, or the zero rule (no prefix/infix, PrecNone)
// if t has none — the same "not every token starts or continues an
// expression" fallback the teacher's getParseRule used.
func getRule(t token.TokenType) rule {
	return rules[t]
}

func (c *Compiler) grouping() {
	c.expression()
	c.consume(token.RPA, "expect ')' after expression")
}

func (c *Compiler) number() {
	n := c.previous.Literal.(float64)
	c.emitConstant(value.FromNumber(n), c.previous.Line)
}

func (c *Compiler) stringLiteral() {
	s := c.previous.Literal.(string)
	c.emitConstant(value.FromString(s), c.previous.Line)
}

func (c *Compiler) literal() {
	switch c.previous.TokenType {
	case token.TRUE:
		c.emitOp(opcode.True, c.previous.Line)
	case token.FALSE:
		c.emitOp(opcode.False, c.previous.Line)
	case token.NULL:
		c.emitOp(opcode.Null, c.previous.Line)
	}
}

func (c *Compiler) variable() {
	c.namedVariable(c.previous)
}

func (c *Compiler) unary() {
	opType := c.previous.TokenType
	line := c.previous.Line
	c.parsePrecedence(PrecUnary)
	switch opType {
	case token.SUB:
		c.emitOp(opcode.Negate, line)
	case token.BANG:
		c.emitOp(opcode.Not, line)
	}
}

func (c *Compiler) binary() {
	opType := c.previous.TokenType
	r := getRule(opType)
	c.parsePrecedence(r.Precedence + 1)
	line := c.previous.Line
	switch opType {
	case token.ADD:
		c.emitOp(opcode.Add, line)
	case token.SUB:
		c.emitOp(opcode.Sub, line)
	case token.MULT:
		c.emitOp(opcode.Mul, line)
	case token.DIV:
		c.emitOp(opcode.Div, line)
	case token.EQUAL_EQUAL:
		c.emitOp(opcode.Equal, line)
	case token.NOT_EQUAL:
		c.emitOp(opcode.NotEqual, line)
	case token.LARGER:
		c.emitOp(opcode.Greater, line)
	case token.LARGER_EQUAL:
		c.emitOp(opcode.GreaterEqual, line)
	case token.LESS:
		c.emitOp(opcode.Less, line)
	case token.LESS_EQUAL:
		c.emitOp(opcode.LessEqual, line)
	}
}

// and_ implements short-circuit &&: if the LHS (already on the stack)
// is falsy, skip the RHS and leave the LHS as the result.
func (c *Compiler) and_() {
	endJump := c.emitJump(opcode.JumpIfFalse)
	c.emitOp(opcode.Pop, c.line())
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

// or_ implements short-circuit ||: if the LHS is truthy, skip the RHS
// and leave the LHS as the result.
func (c *Compiler) or_() {
	elseJump := c.emitJump(opcode.JumpIfFalse)
	endJump := c.emitJump(opcode.Jump)
	c.patchJump(elseJump)
	c.emitOp(opcode.Pop, c.line())
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}
