package position

import (
	"sort"

	"solana-momentum-lab/internal/domain"
)

// ComputeStats recomputes WalletStats from scratch over the full ClosedTrade
// set for a wallet. The input is sorted deterministically first, so the
// recomputation is idempotent and order-insensitive: two runs over identical
// trade sets produce bit-identical results.
func ComputeStats(wallet string, trades []*domain.ClosedTrade, now int64) *domain.WalletStats {
	stats := &domain.WalletStats{
		Wallet:    wallet,
		UpdatedAt: now,
	}
	if len(trades) == 0 {
		return stats
	}

	sorted := make([]*domain.ClosedTrade, len(trades))
	copy(sorted, trades)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ClosedAt != sorted[j].ClosedAt {
			return sorted[i].ClosedAt < sorted[j].ClosedAt
		}
		return sorted[i].TokenMint < sorted[j].TokenMint
	})

	best := sorted[0].PnLUSD
	worst := sorted[0].PnLUSD
	for _, t := range sorted {
		stats.TotalTrades++
		if t.PnLUSD > 0 {
			stats.WinningTrades++
		}
		stats.TotalPnLUSD += t.PnLUSD
		if t.PnLUSD > best {
			best = t.PnLUSD
		}
		if t.PnLUSD < worst {
			worst = t.PnLUSD
		}
		if t.ClosedAt > stats.LastTradeAt {
			stats.LastTradeAt = t.ClosedAt
		}
	}
	stats.BestTradeUSD = best
	stats.WorstTradeUSD = worst
	stats.WinRate = float64(stats.WinningTrades) / float64(stats.TotalTrades) * 100

	return stats
}
