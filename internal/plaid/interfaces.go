package plaid

import (
	"context"

	"github.com/Veraticus/life-sheet/internal/model"
)

// BalanceFetcher reads current account balances.
// It satisfies service.BalanceSource.
type BalanceFetcher interface {
	FetchHoldings(ctx context.Context) (model.Holdings, error)
}

// Linker runs the Plaid Link token exchange.
type Linker interface {
	CreateLinkToken(ctx context.Context) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (accessToken, itemID string, err error)
}
