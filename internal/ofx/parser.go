// Package ofx turns OFX/QFX bank and credit card statements into expense candidates.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tag alone on a line with its closing bracket missing.
	unclosedTagRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Candidate is a debit from a statement that can become an expense.
type Candidate struct {
	Posted  time.Time
	Name    string
	FitID   string
	Account string
	Amount  float64
}

// Parser reads OFX/QFX statements.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// preprocessOFX fixes common formatting issues in exported OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return unclosedTagRegex.ReplaceAllString(content, "$1>")
}

// ParseFile returns the debits of every bank and credit card statement in
// the file, in statement order. Credits are skipped, and a FITID seen twice
// in the same file is kept once.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Candidate, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var lists []statement
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			lists = append(lists, statement{account: string(stmt.BankAcctFrom.AcctID), txns: stmt.BankTranList.Transactions})
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			lists = append(lists, statement{account: string(stmt.CCAcctFrom.AcctID), txns: stmt.BankTranList.Transactions})
		}
	}

	seen := make(map[string]struct{})
	var candidates []Candidate
	var skipped int
	for _, list := range lists {
		for _, tx := range list.txns {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			c, ok := p.candidate(tx, list.account)
			if !ok {
				skipped++
				continue
			}
			if c.FitID != "" {
				key := c.Account + "/" + c.FitID
				if _, dup := seen[key]; dup {
					skipped++
					continue
				}
				seen[key] = struct{}{}
			}
			candidates = append(candidates, c)
		}
	}

	p.logger.Info("Parsed OFX file",
		"statements", len(lists),
		"debits", len(candidates),
		"skipped", skipped)

	return candidates, nil
}

type statement struct {
	account string
	txns    []ofxgo.Transaction
}

// candidate converts a debit; credits and zero amounts report false.
func (p *Parser) candidate(tx ofxgo.Transaction, account string) (Candidate, bool) {
	amount, err := decimal.NewFromString(tx.TrnAmt.FloatString(2))
	if err != nil {
		p.logger.Warn("Skipping transaction with unreadable amount",
			"fitid", string(tx.FiTID),
			"error", err)
		return Candidate{}, false
	}
	if !amount.IsNegative() {
		return Candidate{}, false
	}

	return Candidate{
		Posted:  tx.DtPosted.Time,
		Name:    payeeName(tx),
		FitID:   string(tx.FiTID),
		Account: account,
		Amount:  amount.Abs().InexactFloat64(),
	}, true
}

var purchasePrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericNames = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// payeeName picks the most readable name for the expense.
func payeeName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && genericNames[strings.ToUpper(name)] {
		name = strings.TrimSpace(string(tx.Memo))
	}

	for _, prefix := range purchasePrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " posting dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	if name == "" {
		name = tx.TrnType.String()
	}
	return name
}
