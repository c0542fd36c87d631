package core

// genesis.go – initial account allocation for a fresh chain.

import "fmt"

// GenesisAlloc maps addresses to their opening balances.
type GenesisAlloc map[Address]U256

// Apply writes every allocation into the store as one atomic batch. Nonces
// start at zero implicitly (absent cells decode to zero).
func (g GenesisAlloc) Apply(s StateStore) error {
	batch := make([]KV, 0, len(g))
	for addr, bal := range g {
		batch = append(batch, KV{Key: BalanceKey(addr), Value: encodeBalance(bal)})
	}
	if err := s.Commit(batch); err != nil {
		return fmt.Errorf("apply genesis: %w", err)
	}
	return nil
}
