// Package plaid imports account balances from the Plaid API.
package plaid

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/plaid/plaid-go/v20/plaid"
)

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
}

// ValidateCredentials checks everything except the access token.
func (c *Config) ValidateCredentials() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: plaid client ID is required", common.ErrMissingConfig)
	}
	if c.Secret == "" {
		return fmt.Errorf("%w: plaid secret is required", common.ErrMissingConfig)
	}
	if c.Environment == "" {
		return fmt.Errorf("%w: plaid environment is required", common.ErrMissingConfig)
	}
	if c.Environment != "sandbox" && c.Environment != "production" {
		return fmt.Errorf("%w: plaid environment must be sandbox or production", common.ErrInvalidConfig)
	}
	return nil
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if err := c.ValidateCredentials(); err != nil {
		return err
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: plaid access token is required", common.ErrMissingConfig)
	}
	return nil
}

// Client fetches balances and runs the Link token exchange.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	retryOpts   common.RetryOptions
	accessToken string
	environment string
}

// NewClient creates a Plaid client. The access token may be empty when the
// client is only used to link an account.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Environment {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	}

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		environment: cfg.Environment,
		logger:      common.ComponentLogger(logger, "plaid"),
		retryOpts: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// FetchHoldings reads current balances for every linked account.
func (c *Client) FetchHoldings(ctx context.Context) (model.Holdings, error) {
	if ctx == nil {
		return model.Holdings{}, fmt.Errorf("context cannot be nil")
	}
	if c.accessToken == "" {
		return model.Holdings{}, fmt.Errorf("%w: plaid access token is required", common.ErrMissingConfig)
	}

	c.logger.Info("Fetching balances from Plaid")

	var accounts []plaid.AccountBase
	retryErr := common.WithRetry(ctx, func() error {
		request := plaid.NewAccountsBalanceGetRequest(c.accessToken)
		resp, _, err := c.client.PlaidApi.AccountsBalanceGet(ctx).AccountsBalanceGetRequest(*request).Execute()
		if err != nil {
			return c.wrapError(err, "failed to fetch balances")
		}
		accounts = resp.GetAccounts()
		return nil
	}, c.retryOpts)
	if retryErr != nil {
		return model.Holdings{}, retryErr
	}

	holdings := MapAccounts(accounts)
	if len(holdings.Accounts) == 0 {
		return model.Holdings{}, common.ErrNoBalances
	}

	c.logger.Info("Fetched balances", "accounts", len(holdings.Accounts))
	return holdings, nil
}

// MapAccounts converts Plaid accounts into holdings. Depository, investment and
// brokerage accounts are assets; credit and loan accounts are liabilities.
// Other account types are skipped.
func MapAccounts(accounts []plaid.AccountBase) model.Holdings {
	var h model.Holdings
	for _, a := range accounts {
		class, ok := classify(a.GetType())
		if !ok {
			continue
		}
		balances := a.GetBalances()
		h.Accounts = append(h.Accounts, model.AccountBalance{
			Name:    a.GetName(),
			Mask:    a.GetMask(),
			Source:  "plaid",
			Class:   class,
			Balance: balances.GetCurrent(),
		})
	}
	return h
}

func classify(t plaid.AccountType) (model.AccountClass, bool) {
	switch t {
	case plaid.ACCOUNTTYPE_DEPOSITORY, plaid.ACCOUNTTYPE_INVESTMENT, plaid.ACCOUNTTYPE_BROKERAGE:
		return model.ClassAsset, true
	case plaid.ACCOUNTTYPE_CREDIT, plaid.ACCOUNTTYPE_LOAN:
		return model.ClassLiability, true
	}
	return "", false
}

// CreateLinkToken creates a Link token for Plaid Link initialization.
func (c *Client) CreateLinkToken(ctx context.Context) (string, error) {
	user := plaid.LinkTokenCreateRequestUser{
		ClientUserId: "lifesheet-user-" + time.Now().Format("20060102150405"),
	}

	request := plaid.NewLinkTokenCreateRequest(
		"Life Sheet",
		"en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US},
		user,
	)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})

	if c.environment == "production" {
		request.SetRedirectUri("https://localhost:8080/")
	}

	resp, _, err := c.client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		return "", c.wrapError(err, "failed to create link token")
	}

	return resp.GetLinkToken(), nil
}

// ExchangePublicToken exchanges a public token from Link for an access token.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	request := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	resp, _, err := c.client.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*request).Execute()
	if err != nil {
		return "", "", c.wrapError(err, "failed to exchange public token")
	}

	return resp.GetAccessToken(), resp.GetItemId(), nil
}

func (c *Client) wrapError(err error, msg string) error {
	plaidError := extractPlaidError(err)
	if plaidError == nil {
		return fmt.Errorf("%w: %s: %v", common.ErrPlaidConnection, msg, err)
	}
	if plaidError.ErrorCode == "RATE_LIMIT_EXCEEDED" {
		c.logger.Warn("Rate limit hit, will retry", "error", plaidError.ErrorMessage)
		return &common.RetryableError{
			Err:       fmt.Errorf("%w: %s", common.ErrPlaidRateLimit, plaidError.ErrorMessage),
			Retryable: true,
		}
	}
	return &common.RetryableError{
		Err:       fmt.Errorf("plaid API error: %s - %s", plaidError.ErrorCode, plaidError.ErrorMessage),
		Retryable: false,
	}
}

// extractPlaidError attempts to extract a Plaid error from a generic error.
func extractPlaidError(err error) *plaid.PlaidError {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return nil
	}
	return &plaidErr
}

var (
	_ BalanceFetcher = (*Client)(nil)
	_ Linker         = (*Client)(nil)
)
