package core

import (
	"time"

	"stableswap-network/pkg/fixedmath"
)

// PoolView is a read-only, JSON-friendly snapshot of a pool, used by the
// CLI and dexserver query surfaces. Amounts are rendered in raw (external
// token) precision as decimal strings.
type PoolView struct {
	ID           PoolID   `json:"id"`
	TokenIDs     []TokenID `json:"token_ids"`
	Decimals     []uint8  `json:"decimals"`
	Reserves     []string `json:"reserves"`
	ShareSupply  string   `json:"share_supply"`
	AdminFees    []string `json:"admin_fees"`
	TotalVolume  []string `json:"total_volume"`
	Amp          uint64   `json:"amp"`
	VirtualPrice string   `json:"virtual_price"`
}

// View returns a read-only snapshot of the pool as of now.
func (p *Pool) View(now time.Time) (PoolView, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	n := len(p.tokenIDs)
	reserves := make([]string, n)
	adminFees := make([]string, n)
	totalVolume := make([]string, n)
	for i := 0; i < n; i++ {
		raw, err := fixedmath.ToRaw(p.reserves[i], p.decimals[i])
		if err != nil {
			return PoolView{}, err
		}
		reserves[i] = raw.String()

		adminRaw, err := fixedmath.ToRaw(p.adminFees[i], p.decimals[i])
		if err != nil {
			return PoolView{}, err
		}
		adminFees[i] = adminRaw.String()

		volRaw, err := fixedmath.ToRaw(p.totalVolume[i], p.decimals[i])
		if err != nil {
			return PoolView{}, err
		}
		totalVolume[i] = volRaw.String()
	}

	amp := p.ampAt(now)
	vp := "0"
	if !p.shareSupply.IsZero() {
		D, err := ComputeD(p.reserves, amp)
		if err != nil {
			return PoolView{}, err
		}
		scaled, err := fixedmath.Mul(D, fixedmath.FromUint64(1e18))
		if err != nil {
			return PoolView{}, err
		}
		quotient, err := fixedmath.Div(scaled, p.shareSupply)
		if err != nil {
			return PoolView{}, err
		}
		vp = quotient.String()
	}

	return PoolView{
		ID:           p.id,
		TokenIDs:     append([]TokenID(nil), p.tokenIDs...),
		Decimals:     append([]uint8(nil), p.decimals...),
		Reserves:     reserves,
		ShareSupply:  p.shareSupply.String(),
		AdminFees:    adminFees,
		TotalVolume:  totalVolume,
		Amp:          amp,
		VirtualPrice: vp,
	}, nil
}

// SharesOf returns the LP shares an account holds in this pool.
func (p *Pool) SharesOf(account AccountID) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if s, ok := p.shares[account]; ok {
		return s.String()
	}
	return "0"
}
