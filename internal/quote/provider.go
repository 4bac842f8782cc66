// Package quote fetches current market prices for open-position valuation.
// Prices are advisory; every consumer must cope with a provider being
// unavailable.
package quote

import (
	"context"

	"github.com/rxtech-lab/trade-journal/pkg/errors"
)

// Provider returns the latest traded price for a symbol.
type Provider interface {
	// LatestPrice returns the most recent price for symbol.
	// Returns an ErrCodeQuoteFetchFailed error when the upstream call fails.
	LatestPrice(ctx context.Context, symbol string) (float64, error)
}

type ProviderType string

const (
	ProviderBinance ProviderType = "binance"
	ProviderPolygon ProviderType = "polygon"
)

// ProviderInfo describes a supported quote provider.
type ProviderInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

var providerRegistry = map[ProviderType]ProviderInfo{
	ProviderBinance: {
		Name:        string(ProviderBinance),
		DisplayName: "Binance",
		Description: "Binance spot market prices for cryptocurrency symbols",
	},
	ProviderPolygon: {
		Name:        string(ProviderPolygon),
		DisplayName: "Polygon.io",
		Description: "Polygon.io previous-close prices for stocks and options",
	},
}

// GetSupportedProviders returns the names of all registered providers.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	return providers
}

// GetProviderInfo returns metadata for a quote provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported quote provider: %s", providerName)
	}

	return info, nil
}

// NewProvider creates a quote provider of the given type.
func NewProvider(providerType ProviderType, apiKey, apiSecret string) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceProvider(apiKey, apiSecret), nil
	case ProviderPolygon:
		return NewPolygonProvider(apiKey), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported quote provider: %s", providerType)
	}
}
