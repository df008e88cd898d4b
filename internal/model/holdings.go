package model

import "fmt"

// AccountClass says whether an imported balance counts toward assets or loans.
type AccountClass string

const (
	// ClassAsset balances add to total assets.
	ClassAsset AccountClass = "asset"
	// ClassLiability balances become loans.
	ClassLiability AccountClass = "liability"
)

// AccountBalance is one account's balance from an import source.
type AccountBalance struct {
	Name    string
	Mask    string
	Source  string
	Class   AccountClass
	Balance float64
}

// Label is the loan description used for liabilities, e.g. "Visa ****1234".
func (a AccountBalance) Label() string {
	if a.Mask == "" {
		return a.Name
	}
	return fmt.Sprintf("%s ****%s", a.Name, a.Mask)
}

// Holdings is the result of one balance import.
type Holdings struct {
	Accounts []AccountBalance
}

// TotalAssets sums asset balances.
func (h Holdings) TotalAssets() float64 {
	var total float64
	for _, a := range h.Accounts {
		if a.Class == ClassAsset {
			total += a.Balance
		}
	}
	return total
}

// Loans converts liability balances into unsaved loans. Balances are made positive.
func (h Holdings) Loans() []Entry {
	var loans []Entry
	for _, a := range h.Accounts {
		if a.Class != ClassLiability || a.Balance == 0 {
			continue
		}
		amount := a.Balance
		if amount < 0 {
			amount = -amount
		}
		loans = append(loans, NewLoan(a.Label(), amount, nil))
	}
	return loans
}
