// Package core implements the stableswap exchange: the invariant engine,
// per-pool state, the account ledger, and the top-level Exchange
// coordinator.
package core

import "strconv"

// AccountID identifies a caller: an LP, a trader, or the exchange owner.
// External token contracts and user wallets are both addressed this way.
type AccountID string

// TokenID identifies an external fungible-token contract. The exchange
// never holds these balances itself; TokenID is only ever used as a map
// key and as an argument to the outbound transfer instructions.
type TokenID string

// PoolID is a pool's index in the Exchange's pool list, assigned
// sequentially starting at 0 and stable for the pool's lifetime.
type PoolID uint32

// LPTokenID returns the textual multi-fungible token id for a pool's LP
// shares: ":<pool_id>".
func LPTokenID(pid PoolID) string {
	return ":" + strconv.FormatUint(uint64(pid), 10)
}
