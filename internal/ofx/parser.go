// Package ofx parses OFX/QFX bank exports into importable expense entries.
package ofx

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/mwalkowiak/spendlite/internal/date"
)

// Entry is one statement transaction reduced to the fields the expense
// recorder needs. OFX provides no category, so entries carry none; the
// import command supplies a default.
type Entry struct {
	Description string
	Date        date.Date
	Amount      float64
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocess fixes common formatting issues in OFX files.
func (p *Parser) preprocess(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Fix missing closing angle brackets in SGML-style OFX files
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// Parse reads an OFX/QFX document and returns its statement entries.
func (p *Parser) Parse(reader io.Reader) ([]Entry, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var entries []Entry
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if stmt.BankTranList == nil {
				continue
			}
			for _, tx := range stmt.BankTranList.Transactions {
				entries = append(entries, p.convert(tx))
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			if stmt.BankTranList == nil {
				continue
			}
			for _, tx := range stmt.BankTranList.Transactions {
				entries = append(entries, p.convert(tx))
			}
		}
	}

	slog.Info("parsed OFX file",
		"entries", len(entries),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return entries, nil
}

// convert reduces one OFX transaction to an importable entry.
func (p *Parser) convert(tx ofxgo.Transaction) Entry {
	amount, _ := tx.TrnAmt.Float64()

	description := strings.TrimSpace(string(tx.Name))
	if tx.Payee != nil && tx.Payee.Name != "" {
		description = strings.TrimSpace(string(tx.Payee.Name))
	}
	if description == "" {
		description = strings.TrimSpace(string(tx.Memo))
	}

	return Entry{
		Amount:      amount,
		Date:        date.FromTime(tx.DtPosted.Time),
		Description: description,
	}
}
