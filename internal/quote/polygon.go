package quote

import (
	"context"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/rxtech-lab/trade-journal/pkg/errors"
)

// PolygonClient interface abstracts the Polygon REST client for testing.
type PolygonClient interface {
	GetPreviousCloseAgg(ctx context.Context, params *models.GetPreviousCloseAggParams, opts ...models.RequestOption) (*models.GetPreviousCloseAggResponse, error)
}

// PolygonProvider serves previous-close prices from Polygon.io. Polygon's
// free tier has no real-time endpoint, so previous close is the freshest
// price available to every account.
type PolygonProvider struct {
	client PolygonClient
}

// NewPolygonProvider creates a provider backed by the live Polygon API.
func NewPolygonProvider(apiKey string) *PolygonProvider {
	return &PolygonProvider{client: polygon.New(apiKey)}
}

// NewPolygonProviderWithClient creates a provider with an injected client.
func NewPolygonProviderWithClient(client PolygonClient) *PolygonProvider {
	return &PolygonProvider{client: client}
}

// LatestPrice implements Provider.
func (p *PolygonProvider) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	params := &models.GetPreviousCloseAggParams{Ticker: symbol}

	resp, err := p.client.GetPreviousCloseAgg(ctx, params)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeQuoteFetchFailed, err, "failed to fetch polygon price for %s", symbol)
	}

	if len(resp.Results) == 0 {
		return 0, errors.Newf(errors.ErrCodeQuoteFetchFailed, "no polygon price for %s", symbol)
	}

	return float64(resp.Results[0].Close), nil
}
