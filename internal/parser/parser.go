package parser

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/RichardKnop/nacho/internal/nacho"
)

var (
	ErrSyntax                = errors.New("syntax error")
	ErrNegativeID            = errors.New("id must be positive")
	ErrStringTooLong         = errors.New("string is too long")
	ErrUnrecognizedStatement = errors.New("unrecognized keyword at start of statement")
)

type step int

const (
	stepBeginning step = iota + 1
	stepInsertID
	stepInsertUsername
	stepInsertEmail
	stepStatementEnd
)

type parser struct {
	nacho.Statement
	i      int // where we are in the statement
	sql    string
	step   step
	rawID  string
	logger *zap.Logger
}

func New(logger *zap.Logger) *parser {
	return &parser{logger: logger}
}

// Parse turns a single line of input into a statement for the engine.
// Keywords are case insensitive, tokens are separated by whitespace and
// text values are taken verbatim.
func (p *parser) Parse(ctx context.Context, sql string) (nacho.Statement, error) {
	p.reset()
	p.setSQL(sql)

	err := p.doParse()
	if err == nil {
		err = p.validate()
	}

	p.logError(err)
	if err != nil {
		return nacho.Statement{}, err
	}
	return p.Statement, nil
}

func (p *parser) setSQL(sql string) *parser {
	p.sql = strings.TrimSpace(sql)
	return p
}

func (p *parser) reset() {
	p.Statement = nacho.Statement{}
	p.sql = ""
	p.step = stepBeginning
	p.i = 0
	p.rawID = ""
}

func (p *parser) doParse() error {
	for p.i < len(p.sql) {
		switch p.step {
		case stepBeginning:
			switch strings.ToUpper(p.peek()) {
			case "INSERT":
				p.Kind = nacho.Insert
				p.pop()
				p.step = stepInsertID
			case "SELECT":
				p.Kind = nacho.Select
				p.pop()
				p.step = stepStatementEnd
			default:
				return ErrUnrecognizedStatement
			}
		case stepInsertID,
			stepInsertUsername,
			stepInsertEmail:
			p.doParseInsert()
		case stepStatementEnd:
			// Nothing may follow a complete statement
			return ErrSyntax
		}
	}
	return nil
}

func (p *parser) peek() string {
	peeked, _ := p.peekWithLength()
	return peeked
}

func (p *parser) pop() string {
	peeked, len := p.peekWithLength()
	p.i += len
	p.popWhitespace()
	return peeked
}

func (p *parser) popWhitespace() {
	for ; p.i < len(p.sql) && isWhitespace(p.sql[p.i]); p.i++ {
	}
}

func (p *parser) peekWithLength() (string, int) {
	if p.i >= len(p.sql) {
		return "", 0
	}
	for i := p.i; i < len(p.sql); i++ {
		if isWhitespace(p.sql[i]) {
			return p.sql[p.i:i], i - p.i
		}
	}
	return p.sql[p.i:], len(p.sql) - p.i
}

func (p *parser) validate() error {
	if p.Kind == 0 {
		return ErrUnrecognizedStatement
	}
	if p.Kind == nacho.Insert {
		return p.validateInsert()
	}
	return nil
}

func (p *parser) logError(err error) {
	if err == nil {
		return
	}
	p.logger.Debug(
		"failed to parse statement",
		zap.String("sql", p.sql),
		zap.Int("position", p.i),
		zap.Error(err),
	)
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
