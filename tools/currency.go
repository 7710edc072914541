// Currency Conversion Tool backed by the Frankfurter exchange-rate API.
//
// Information Hiding:
// - Argument parsing of "amount|FROM|TO"
// - Rate lookup request format hidden

package tools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const frankfurterURL = "https://api.frankfurter.app/latest"

// CurrencyTool converts an amount between two ISO 4217 currencies.
type CurrencyTool struct {
	BaseTool
	api     *apiClient
	baseURL string
}

// NewCurrencyTool creates a currency tool using the public Frankfurter API.
func NewCurrencyTool(timeout time.Duration) *CurrencyTool {
	return &CurrencyTool{api: newAPIClient(timeout), baseURL: frankfurterURL}
}

// WithBaseURL points the tool at another endpoint.
func (t *CurrencyTool) WithBaseURL(u string) *CurrencyTool {
	t.baseURL = u
	return t
}

// Metadata returns the tool metadata.
func (t *CurrencyTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "currency_convert",
		Description: "Convert an amount of money from one currency to another using current exchange rates.",
		Usage:       "amount|FROM|TO, e.g. 100|USD|EUR",
	}
}

type frankfurterResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

// Execute performs the conversion.
func (t *CurrencyTool) Execute(ctx context.Context, input string) (ToolResult, error) {
	args, err := SplitArgs(input, 3)
	if err != nil {
		return FailureResult(fmt.Errorf("invalid input, want amount|FROM|TO: %w", err)), nil
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(args[0], ",", ""), 64)
	if err != nil || amount < 0 {
		return FailureResultf("invalid amount '%s'", args[0]), nil
	}
	from := strings.ToUpper(args[1])
	to := strings.ToUpper(args[2])
	if len(from) != 3 || len(to) != 3 {
		return FailureResultf("invalid currency codes '%s' and '%s', use 3-letter ISO codes", from, to), nil
	}
	if from == to {
		return SuccessResult(fmt.Sprintf("%.2f %s = %.2f %s", amount, from, amount, to)), nil
	}

	var resp frankfurterResponse
	err = t.api.getJSON(ctx, t.baseURL, url.Values{
		"amount": {strconv.FormatFloat(amount, 'f', -1, 64)},
		"from":   {from},
		"to":     {to},
	}, &resp)
	if err != nil {
		return FailureResult(fmt.Errorf("exchange rate lookup failed: %w", err)), nil
	}

	converted, ok := resp.Rates[to]
	if !ok {
		return FailureResultf("no rate available for %s to %s", from, to), nil
	}
	return SuccessResult(fmt.Sprintf("%.2f %s = %.2f %s (rate date %s)", amount, from, converted, to, resp.Date)), nil
}
