package core

// Canonical synthetic asset identifiers.
const (
	AssetBTC = "cmBTC"
	AssetUSD = "cmUSD"
	AssetBRL = "cmBRL"
)

// DefaultAssets returns the canonical asset universe in fixed order.
func DefaultAssets() []string {
	return []string{AssetBTC, AssetUSD, AssetBRL}
}

// DefaultInitialPortfolio returns the seed portfolio balances in USD.
func DefaultInitialPortfolio() map[string]float64 {
	return map[string]float64{
		AssetBTC: 10_000_000,
		AssetUSD: 25_000_000,
		AssetBRL: 40_000_000,
	}
}
