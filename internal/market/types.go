package market

import "solana-momentum-lab/internal/domain"

// tokenListResponse is the provider's token list envelope.
type tokenListResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Tokens []tokenRecord `json:"tokens"`
	} `json:"data"`
}

// tokenRecord is one raw token record with the provider's field names.
// Numeric fields use pointers so a missing field maps to 0 instead of
// failing the whole batch.
type tokenRecord struct {
	Symbol            string   `json:"symbol"`
	Address           string   `json:"address"`
	Price             *float64 `json:"price"`
	Volume24hUSD      *float64 `json:"v24hUSD"`
	MarketCap         *float64 `json:"mc"`
	PriceChange24hPct *float64 `json:"priceChange24hPercent"`
	Liquidity         *float64 `json:"liquidity"`
}

// toSnapshot maps the provider record into the domain snapshot.
func (t tokenRecord) toSnapshot(observedAt int64) *domain.TokenSnapshot {
	return &domain.TokenSnapshot{
		Symbol:            t.Symbol,
		Address:           t.Address,
		PriceUSD:          deref(t.Price),
		Volume24hUSD:      deref(t.Volume24hUSD),
		MarketCapUSD:      deref(t.MarketCap),
		LiquidityUSD:      deref(t.Liquidity),
		PriceChange24hPct: deref(t.PriceChange24hPct),
		ObservedAt:        observedAt,
	}
}

// priceResponse is the provider's single-price envelope.
type priceResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Value float64 `json:"value"`
	} `json:"data"`
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
