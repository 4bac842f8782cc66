package mocks

//go:generate mockgen -destination=./mock_repository.go -package=mocks github.com/rxtech-lab/trade-journal/internal/repository TradeRepository,UserRepository
//go:generate mockgen -destination=./mock_quote.go -package=mocks github.com/rxtech-lab/trade-journal/internal/quote Provider
