package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/RichardKnop/nacho/internal/nacho"
)

func (p *parser) doParseInsert() {
	switch p.step {
	case stepInsertID:
		p.rawID = p.pop()
		p.step = stepInsertUsername
	case stepInsertUsername:
		p.Row.Username = p.pop()
		p.step = stepInsertEmail
	case stepInsertEmail:
		p.Row.Email = p.pop()
		p.step = stepStatementEnd
	}
}

// validateInsert checks a complete statement first, then the id sign,
// then text contents and lengths.
func (p *parser) validateInsert() error {
	if p.step != stepStatementEnd {
		return ErrSyntax
	}

	id, err := strconv.ParseInt(p.rawID, 10, 64)
	if err != nil {
		return ErrSyntax
	}
	if id < 0 {
		return ErrNegativeID
	}
	if id > math.MaxUint32 {
		return ErrSyntax
	}
	p.Row.ID = uint32(id)

	// a zero byte terminates text on disk, the value would not read back whole
	if strings.IndexByte(p.Row.Username, 0) >= 0 || strings.IndexByte(p.Row.Email, 0) >= 0 {
		return ErrSyntax
	}

	if len(p.Row.Username) > nacho.UsernameMaxLength {
		return ErrStringTooLong
	}
	if len(p.Row.Email) > nacho.EmailMaxLength {
		return ErrStringTooLong
	}

	return nil
}
