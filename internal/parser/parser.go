package parser

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/RichardKnop/minidb/internal/minidb"
)

var (
	ErrUnrecognizedStatement = errors.New("unrecognized keyword at start of statement")
	ErrSyntax                = errors.New("syntax error, could not parse statement")
	ErrNegativeID            = errors.New("id must be positive")
	ErrStringTooLong         = errors.New("string is too long")
)

type Parser struct{}

func New() *Parser {
	return new(Parser)
}

// Parse recognizes the two supported statements:
//
//	insert <id> <username> <email>
//	select
func (p *Parser) Parse(ctx context.Context, input string) (minidb.Statement, error) {
	input = strings.TrimSpace(input)

	if input == "select" {
		return minidb.Statement{Kind: minidb.Select}, nil
	}

	if strings.HasPrefix(input, "insert") {
		return p.parseInsert(input)
	}

	return minidb.Statement{}, fmt.Errorf("%w: '%s'", ErrUnrecognizedStatement, input)
}

func (p *Parser) parseInsert(input string) (minidb.Statement, error) {
	fields := strings.Fields(input)
	if len(fields) != 4 {
		return minidb.Statement{}, ErrSyntax
	}

	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return minidb.Statement{}, ErrSyntax
	}
	if id < 0 {
		return minidb.Statement{}, ErrNegativeID
	}
	if id > math.MaxUint32 {
		return minidb.Statement{}, ErrSyntax
	}

	username, email := fields[2], fields[3]
	if len(username) > minidb.UsernameSize || len(email) > minidb.EmailSize {
		return minidb.Statement{}, ErrStringTooLong
	}

	return minidb.Statement{
		Kind: minidb.Insert,
		Row: minidb.Row{
			ID:       uint32(id),
			Username: username,
			Email:    email,
		},
	}, nil
}
