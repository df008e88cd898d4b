// Package ofx reads account balances from OFX/QFX statement downloads.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/aclindsa/ofxgo"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser reads ledger balances from OFX files.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: common.ComponentLogger(logger, "ofx")}
}

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket of a bare opening tag.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile reads every bank and credit card statement in the file. Bank
// ledger balances are assets; credit card balances are liabilities.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (model.Holdings, error) {
	if err := ctx.Err(); err != nil {
		return model.Holdings{}, err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return model.Holdings{}, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return model.Holdings{}, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var h model.Holdings

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		balance, exact := stmt.BalAmt.Float64()
		if !exact {
			p.logger.Debug("Balance rounded", "account", mask(string(stmt.BankAcctFrom.AcctID)))
		}
		h.Accounts = append(h.Accounts, model.AccountBalance{
			Name:    bankAccountName(stmt.BankAcctFrom.AcctType),
			Mask:    mask(string(stmt.BankAcctFrom.AcctID)),
			Source:  "ofx",
			Class:   model.ClassAsset,
			Balance: balance,
		})
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		balance, _ := stmt.BalAmt.Float64()
		h.Accounts = append(h.Accounts, model.AccountBalance{
			Name:    "Card",
			Mask:    mask(string(stmt.CCAcctFrom.AcctID)),
			Source:  "ofx",
			Class:   model.ClassLiability,
			Balance: balance,
		})
	}

	if len(h.Accounts) == 0 {
		return model.Holdings{}, common.ErrNoBalances
	}

	p.logger.Info("Parsed OFX balances",
		"accounts", len(h.Accounts),
		"assets", h.TotalAssets())

	return h, nil
}

// bankAccountName labels a bank statement by its account type. ofxgo keeps
// the type itself unexported, so it is taken as a Stringer.
func bankAccountName(t fmt.Stringer) string {
	switch t {
	case ofxgo.AcctTypeChecking:
		return "Checking"
	case ofxgo.AcctTypeSavings:
		return "Savings"
	case ofxgo.AcctTypeMoneyMrkt:
		return "Money Market"
	case ofxgo.AcctTypeCD:
		return "Deposit"
	}
	return "Account"
}

// mask keeps the last four characters of an account number.
func mask(acctID string) string {
	acctID = strings.TrimSpace(acctID)
	if len(acctID) <= 4 {
		return acctID
	}
	return acctID[len(acctID)-4:]
}

// FileSource reads holdings from one or more OFX files.
type FileSource struct {
	Parser *Parser
	Paths  []string
}

// FetchHoldings parses every file and merges the balances.
func (s FileSource) FetchHoldings(ctx context.Context) (model.Holdings, error) {
	var merged model.Holdings
	for _, path := range s.Paths {
		f, err := os.Open(path) // #nosec G304
		if err != nil {
			return model.Holdings{}, fmt.Errorf("failed to open %s: %w", path, err)
		}
		h, err := s.Parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			return model.Holdings{}, fmt.Errorf("%s: %w", path, err)
		}
		merged.Accounts = append(merged.Accounts, h.Accounts...)
	}
	return merged, nil
}
