package schwab

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// BaseURL is the Schwab Trader API root.
const BaseURL = "https://api.schwabapi.com/trader/v1"

// APIError is a failed upstream call: transport failure or a non-2xx reply.
// Calls are single-attempt; the error surfaces to the caller unretried.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schwab %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("schwab %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error { return e.Err }

// TokenSource yields a valid bearer token for a profile, refreshing it
// behind the scenes when needed.
type TokenSource interface {
	GetValidToken(ctx context.Context, profile string) (string, error)
}

// Client talks to the Schwab Trader API for one profile. Authentication is
// handled through the TokenSource on every call.
type Client struct {
	profile string
	tokens  TokenSource
	http    *resty.Client
	log     *slog.Logger
}

// NewClient returns a Client for the given profile.
func NewClient(profile string, tokens TokenSource) *Client {
	return &Client{
		profile: profile,
		tokens:  tokens,
		http: resty.New().
			SetBaseURL(BaseURL).
			SetTimeout(20 * time.Second),
		log: slog.Default(),
	}
}

// AccountNumber pairs a plain account number with the hashed identifier the
// API expects in paths.
type AccountNumber struct {
	AccountNumber string `json:"accountNumber"`
	HashValue     string `json:"hashValue"`
}

// AccountData is the subset of the account payload this tool reads.
type AccountData struct {
	SecuritiesAccount struct {
		AccountNumber   string `json:"accountNumber"`
		CurrentBalances struct {
			TotalCash float64 `json:"totalCash"`
		} `json:"currentBalances"`
		Positions []Position `json:"positions"`
	} `json:"securitiesAccount"`
	AggregatedBalance struct {
		LiquidationValue float64 `json:"liquidationValue"`
	} `json:"aggregatedBalance"`
}

// Position is one holding inside an account.
type Position struct {
	Instrument struct {
		Symbol    string `json:"symbol"`
		AssetType string `json:"assetType"`
		Cusip     string `json:"cusip,omitempty"`
	} `json:"instrument"`
	LongQuantity  float64 `json:"longQuantity"`
	ShortQuantity float64 `json:"shortQuantity"`
	MarketValue   float64 `json:"marketValue"`
}

// AccountValues is the simplified per-invocation snapshot used for status
// reporting: total liquidation value, cash, and per-symbol market values.
type AccountValues struct {
	Total     decimal.Decimal
	Cash      decimal.Decimal
	Positions map[string]decimal.Decimal
}

// get performs one authenticated GET, decoding the 2xx body into out.
func (c *Client) get(ctx context.Context, op, path string, query map[string]string, out any) error {
	token, err := c.tokens.GetValidToken(ctx, c.profile)
	if err != nil {
		return err
	}

	rid := ulid.Make().String()
	c.log.Debug("api request", "id", rid, "op", op, "path", path)

	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(out)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		return &APIError{Op: op, Err: err}
	}
	c.log.Debug("api response", "id", rid, "op", op, "status", resp.StatusCode())
	if resp.IsError() {
		return &APIError{Op: op, StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}

// GetAccountNumbers lists every account the authenticated user can see.
func (c *Client) GetAccountNumbers(ctx context.Context) ([]AccountNumber, error) {
	var numbers []AccountNumber
	if err := c.get(ctx, "accountNumbers", "/accounts/accountNumbers", nil, &numbers); err != nil {
		return nil, err
	}
	return numbers, nil
}

// GetAccountData fetches balances for one account, optionally with position
// details.
func (c *Client) GetAccountData(ctx context.Context, accountID string, includePositions bool) (*AccountData, error) {
	var query map[string]string
	if includePositions {
		query = map[string]string{"fields": "positions"}
	}
	data := &AccountData{}
	if err := c.get(ctx, "accountData", "/accounts/"+accountID, query, data); err != nil {
		return nil, err
	}
	return data, nil
}

// AccountValues fetches an account and reduces it to the values status
// reporting needs.
func (c *Client) AccountValues(ctx context.Context, accountID string) (*AccountValues, error) {
	data, err := c.GetAccountData(ctx, accountID, true)
	if err != nil {
		return nil, err
	}

	values := &AccountValues{
		Total:     decimal.NewFromFloat(data.AggregatedBalance.LiquidationValue),
		Cash:      decimal.NewFromFloat(data.SecuritiesAccount.CurrentBalances.TotalCash),
		Positions: make(map[string]decimal.Decimal, len(data.SecuritiesAccount.Positions)),
	}
	for _, pos := range data.SecuritiesAccount.Positions {
		values.Positions[pos.Instrument.Symbol] = decimal.NewFromFloat(pos.MarketValue)
	}
	return values, nil
}
