package domain

// MintPair is one input row: two token mint addresses to process.
type MintPair struct {
	Mint1 string
	Mint2 string
}

// Pool is a liquidity pool returned by the market-metadata API.
// Corresponds to one row in a pool index destination.
type Pool struct {
	PoolID  string // pool account address, dedup key
	MintA   string
	SymbolA string
	MintB   string
	SymbolB string
}

// PairKey returns the direction-sensitive destination key for the pool's
// token pair, e.g. "SOL_USDC".
func (p *Pool) PairKey() string {
	return p.SymbolA + "_" + p.SymbolB
}

// SymbolByMint maps the pool's mint addresses to their token symbols.
func (p *Pool) SymbolByMint() map[string]string {
	return map[string]string{
		p.MintA: p.SymbolA,
		p.MintB: p.SymbolB,
	}
}

// Well-known stablecoin mints on Solana mainnet.
var StablecoinMints = map[string]string{
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": "USDC",
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": "USDT",
}
