package quote

import (
	"context"
	"strconv"

	"github.com/adshao/go-binance/v2"

	"github.com/rxtech-lab/trade-journal/pkg/errors"
)

// Service interfaces for mocking the Binance API

// ListPricesService interface for fetching symbol prices.
type ListPricesService interface {
	Symbol(symbol string) ListPricesService
	Do(ctx context.Context) ([]*binance.SymbolPrice, error)
}

// BinanceClient interface abstracts the Binance client for testing.
type BinanceClient interface {
	NewListPricesService() ListPricesService
}

// realBinanceClient wraps the actual binance.Client.
type realBinanceClient struct {
	client *binance.Client
}

func (r *realBinanceClient) NewListPricesService() ListPricesService {
	return &realListPricesService{service: r.client.NewListPricesService()}
}

type realListPricesService struct {
	service *binance.ListPricesService
}

func (r *realListPricesService) Symbol(symbol string) ListPricesService {
	r.service = r.service.Symbol(symbol)

	return r
}

func (r *realListPricesService) Do(ctx context.Context) ([]*binance.SymbolPrice, error) {
	return r.service.Do(ctx)
}

// BinanceProvider serves latest spot prices from Binance.
type BinanceProvider struct {
	client BinanceClient
}

// NewBinanceProvider creates a provider backed by the live Binance API.
func NewBinanceProvider(apiKey, apiSecret string) *BinanceProvider {
	return &BinanceProvider{
		client: &realBinanceClient{client: binance.NewClient(apiKey, apiSecret)},
	}
}

// NewBinanceProviderWithClient creates a provider with an injected client.
func NewBinanceProviderWithClient(client BinanceClient) *BinanceProvider {
	return &BinanceProvider{client: client}
}

// LatestPrice implements Provider.
func (p *BinanceProvider) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	prices, err := p.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeQuoteFetchFailed, err, "failed to fetch binance price for %s", symbol)
	}

	if len(prices) == 0 {
		return 0, errors.Newf(errors.ErrCodeQuoteFetchFailed, "no binance price for %s", symbol)
	}

	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeQuoteFetchFailed, err, "binance returned unparseable price %q for %s", prices[0].Price, symbol)
	}

	return price, nil
}
