package domain

// SignatureRecord is one transaction found at a pool account within the
// crawled slot range. Corresponds to one row in a signature index destination.
type SignatureRecord struct {
	Signature string // Solana transaction signature, natural dedup key
	Slot      int64  // slot the transaction landed in
	Account   string // pool account the signature was listed for
}

// BalanceDelta is the decoded two-leg balance change of a pool account for
// one transaction. Deltas are stored as absolute magnitudes; direction is
// reconstructed downstream from which leg increased.
type BalanceDelta struct {
	Signature   string
	TokenA      string  // symbol of the first leg
	TokenADelta float64 // absolute UI-amount change of the first leg
	TokenB      string  // symbol of the second leg
	TokenBDelta float64 // absolute UI-amount change of the second leg
	BlockTime   *int64  // Unix timestamp in seconds, nil if unavailable
}

// TokenChange is one leg of a balance change before classification.
type TokenChange struct {
	Mint   string
	Pre    float64
	Post   float64
	Change float64
}
