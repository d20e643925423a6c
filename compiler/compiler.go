// Package compiler implements Titan's single-pass Pratt compiler: it
// walks the token stream exactly once, emitting bytecode directly with
// no intermediate AST. The parse-rule table in rules.go and the emit
// helpers in emit.go are this file's collaborators.
package compiler

import (
	"fmt"
	"os"

	"titan/opcode"
	"titan/program"
	"titan/scanner"
	"titan/token"
	"titan/value"
)

// Precedence orders the grammar's binding strengths, lowest to highest.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

// uninitializedDepth marks a local whose initializer is still being
// compiled, forbidding the initializer from referencing itself.
const uninitializedDepth = -1

// Local tracks one name bound inside a non-global scope: its source
// spelling and the scope depth it became visible at. Its stack slot is
// implicit — the local's index in the compiler's locals slice.
type Local struct {
	Name  string
	Depth int
}

// Compiler holds the transient state of one compile call: the scanner
// feeding it tokens, the Program it emits into, the current/previous
// token pair a Pratt parser needs, and the local-variable bookkeeping
// that backs lexical scoping.
type Compiler struct {
	scanner *scanner.Scanner
	prog    *program.Program

	previous token.Token
	current  token.Token

	hadError   bool
	panicMode  bool
	canAssign  bool
	errorCount int

	locals     []Local
	scopeDepth int
}

// New returns a Compiler ready to compile src.
func New(src string) *Compiler {
	return &Compiler{
		scanner: scanner.New(src),
		prog:    program.New(),
	}
}

// Compile compiles src in full and returns the resulting Program, or a
// *CompileError if one or more diagnostics were reported. Diagnostics
// are written to stderr as they occur.
func Compile(src string) (*program.Program, error) {
	c := New(src)
	c.advance()
	for !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.EOF, "expect end of expression")
	c.emitOp(opcode.Return, c.line())

	if c.hadError {
		return nil, &CompileError{Count: c.errorCount}
	}
	return c.prog, nil
}

// line returns the source line of the most recently consumed token,
// used when an emitted instruction has no more specific line to credit.
func (c *Compiler) line() int32 {
	return c.previous.Line
}

func (c *Compiler) check(t token.TokenType) bool {
	return c.current.TokenType == t
}

func (c *Compiler) match(t token.TokenType) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

// advance pulls the next non-error token from the scanner. ERROR tokens
// are reported immediately and skipped, matching the spec's "report and
// continue to the next token" rule.
func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.NextToken()
		if c.current.TokenType != token.ERROR {
			return
		}
		c.errorAtCurrent(fmt.Sprint(c.current.Lexeme))
	}
}

func (c *Compiler) consume(t token.TokenType, msg string) {
	if c.check(t) {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.previous, msg) }

func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true
	c.errorCount++
	where := ""
	if tok.TokenType == token.EOF {
		where = " at end"
	} else if tok.TokenType != token.ERROR {
		where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	fmt.Fprintf(os.Stderr, "[Line %d] Error%s: %s\n", tok.Line, where, msg)
}

// declaration dispatches on `var` vs. a plain statement, then
// synchronizes past the rest of the broken statement if an error fired.
func (c *Compiler) declaration() {
	if c.match(token.VAR) {
		c.varDeclaration()
	} else {
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

// synchronize consumes tokens until it sees a statement boundary, so one
// mistake doesn't cascade into a wall of spurious diagnostics.
func (c *Compiler) synchronize() {
	c.panicMode = false

	for c.current.TokenType != token.EOF {
		if c.previous.TokenType == token.SEMICOLON {
			return
		}
		switch c.current.TokenType {
		case token.CLASS, token.FUNC, token.VAR, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("expect variable name")

	if c.match(token.ASSIGN) {
		c.expression()
	} else {
		c.emitOp(opcode.Null, c.line())
	}
	c.consume(token.SEMICOLON, "expect ';' after variable declaration")
	c.defineVariable(global)
}

// parseVariable consumes the variable's name and declares it. For
// globals it returns the name's constant-pool index; for locals the
// return value is unused (defineVariable just marks it initialized).
func (c *Compiler) parseVariable(errMsg string) int {
	c.consume(token.IDENTIFIER, errMsg)
	name := c.previous
	c.declareVariable(name)
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

func (c *Compiler) identifierConstant(name token.Token) int {
	return c.prog.AddConstant(value.FromString(name.Lexeme))
}

// declareVariable records a local in the current scope, rejecting a
// redeclaration of the same name at the same depth. Globals are not
// tracked here — DefineGlobal's constant index is the only bookkeeping
// they need.
func (c *Compiler) declareVariable(name token.Token) {
	if c.scopeDepth == 0 {
		return
	}
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.Depth != uninitializedDepth && l.Depth < c.scopeDepth {
			break
		}
		if l.Name == name.Lexeme {
			c.errorAt(name, "already a variable with this name in this scope")
			return
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name token.Token) {
	c.locals = append(c.locals, Local{Name: name.Lexeme, Depth: uninitializedDepth})
}

func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].Depth = c.scopeDepth
}

func (c *Compiler) defineVariable(global int) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitIndexed(opcode.DefineGlobalFamily, global, c.line())
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.LCUR):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "expect ';' after value")
	c.emitOp(opcode.Print, c.line())
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "expect ';' after expression")
	c.emitOp(opcode.Pop, c.line())
}

func (c *Compiler) block() {
	for !c.check(token.RCUR) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RCUR, "expect '}' after block")
}

func (c *Compiler) beginScope() {
	c.scopeDepth++
}

// endScope discards every local declared at the scope being closed,
// emitting the minimal-encoding pop form: nothing for zero locals, Pop
// or Pop Pop for one or two, Pop_N(n) for three or more.
func (c *Compiler) endScope() {
	c.scopeDepth--

	count := 0
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].Depth > c.scopeDepth {
		c.locals = c.locals[:len(c.locals)-1]
		count++
	}

	switch {
	case count == 0:
	case count == 1:
		c.emitOp(opcode.Pop, c.line())
	case count == 2:
		c.emitOp(opcode.Pop, c.line())
		c.emitOp(opcode.Pop, c.line())
	default:
		if count > 0xFF {
			c.error("too many locals to discard at end of scope")
			return
		}
		c.emitOp(opcode.PopN, c.line())
		c.emitOperandBytes(count, 1, c.line())
	}
}

func (c *Compiler) ifStatement() {
	c.consume(token.LPA, "expect '(' after 'if'")
	c.expression()
	c.consume(token.RPA, "expect ')' after condition")

	thenJump := c.emitJump(opcode.JumpIfFalse)
	c.emitOp(opcode.Pop, c.line())
	c.statement()

	elseJump := c.emitJump(opcode.Jump)
	c.patchJump(thenJump)
	c.emitOp(opcode.Pop, c.line())

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := c.prog.Len()
	c.consume(token.LPA, "expect '(' after 'while'")
	c.expression()
	c.consume(token.RPA, "expect ')' after condition")

	exitJump := c.emitJump(opcode.JumpIfFalse)
	c.emitOp(opcode.Pop, c.line())
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(opcode.Pop, c.line())
}

func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPA, "expect '(' after 'for'")

	switch {
	case c.match(token.SEMICOLON):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := c.prog.Len()
	hasCondition := false
	var exitJump jumpSite

	if !c.match(token.SEMICOLON) {
		hasCondition = true
		c.expression()
		c.consume(token.SEMICOLON, "expect ';' after loop condition")
		exitJump = c.emitJump(opcode.JumpIfFalse)
		c.emitOp(opcode.Pop, c.line())
	}

	if !c.match(token.RPA) {
		bodyJump := c.emitJump(opcode.Jump)
		incrStart := c.prog.Len()
		c.expression()
		c.emitOp(opcode.Pop, c.line())
		c.consume(token.RPA, "expect ')' after for clauses")

		c.emitLoop(loopStart)
		loopStart = incrStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if hasCondition {
		c.patchJump(exitJump)
		c.emitOp(opcode.Pop, c.line())
	}
	c.endScope()
}

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

// parsePrecedence is the Pratt engine: consume a token and run its
// prefix rule, then keep consuming and running infix rules as long as
// the upcoming token binds at least as tightly as p.
func (c *Compiler) parsePrecedence(p Precedence) {
	c.advance()
	prefix := getRule(c.previous.TokenType).Prefix
	if prefix == nil {
		c.error("expect expression")
		return
	}

	c.canAssign = p <= PrecAssignment
	prefix(c)

	for p <= getRule(c.current.TokenType).Precedence {
		c.advance()
		infix := getRule(c.previous.TokenType).Infix
		infix(c)
	}

	if c.canAssign && c.match(token.ASSIGN) {
		c.error("invalid assignment target")
	}
}

func (c *Compiler) namedVariable(name token.Token) {
	var getFamily, setFamily opcode.Family
	arg := c.resolveLocal(name)
	if arg != -1 {
		getFamily, setFamily = opcode.GetLocalFamily, opcode.SetLocalFamily
	} else {
		arg = c.identifierConstant(name)
		getFamily, setFamily = opcode.GetGlobalFamily, opcode.SetGlobalFamily
	}

	if c.canAssign && c.match(token.ASSIGN) {
		c.expression()
		c.emitIndexed(setFamily, arg, name.Line)
	} else {
		c.emitIndexed(getFamily, arg, name.Line)
	}
}

func (c *Compiler) resolveLocal(name token.Token) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.Name == name.Lexeme {
			if l.Depth == uninitializedDepth {
				c.errorAt(name, "can't read local variable in its own initializer")
			}
			return i
		}
	}
	return -1
}
