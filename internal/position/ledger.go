package position

import (
	"solana-momentum-lab/internal/domain"
)

// ledger maintains the open-lot queues for one wallet during a
// reconstruction pass. It is owned exclusively by that pass: lots are opened
// on classified buys and consumed oldest-first by later sells.
type ledger struct {
	wallet   string
	multiLot bool
	lots     map[string][]*domain.OpenLot // token mint -> FIFO queue
}

func newLedger(wallet string, multiLot bool) *ledger {
	return &ledger{
		wallet:   wallet,
		multiLot: multiLot,
		lots:     make(map[string][]*domain.OpenLot),
	}
}

// open appends a lot for a classified buy.
func (l *ledger) open(tx *domain.WalletTransaction) {
	l.lots[tx.TokenMint] = append(l.lots[tx.TokenMint], &domain.OpenLot{
		Wallet:        tx.Wallet,
		TokenMint:     tx.TokenMint,
		EntryValueUSD: tx.ValueUSD,
		EntryTime:     tx.Timestamp,
	})
}

// close matches a sell against the open lots for its mint and returns the
// resulting closed trades. A sell with no open lot is discarded (ok=false):
// truncated history means there is nothing to match against.
//
// With multiLot disabled (the reference behavior) the sell consumes exactly
// one lot: pnl = sellValue - lot.EntryValueUSD, and any value that would
// have closed further lots is dropped.
//
// With multiLot enabled the sell consumes the oldest lot plus every
// subsequent lot whose cumulative entry basis still fits inside the sell
// value. The sell value is then attributed across the matched lots pro-rata
// by entry basis, so the summed pnl equals sellValue - matched basis.
func (l *ledger) close(tx *domain.WalletTransaction) ([]*domain.ClosedTrade, bool) {
	queue := l.lots[tx.TokenMint]
	if len(queue) == 0 {
		return nil, false
	}

	if !l.multiLot {
		lot := queue[0]
		l.lots[tx.TokenMint] = queue[1:]
		return []*domain.ClosedTrade{closeTrade(lot, tx.ValueUSD, tx.Timestamp)}, true
	}

	// The oldest lot always matches, mirroring the single-lot behavior for
	// sells below basis. Further lots match only while their combined basis
	// fits inside the sell value.
	matched := 1
	basis := queue[0].EntryValueUSD
	for matched < len(queue) && basis+queue[matched].EntryValueUSD <= tx.ValueUSD {
		basis += queue[matched].EntryValueUSD
		matched++
	}

	trades := make([]*domain.ClosedTrade, 0, matched)
	for _, lot := range queue[:matched] {
		closeValue := tx.ValueUSD
		if basis > 0 {
			closeValue = tx.ValueUSD * lot.EntryValueUSD / basis
		} else if matched > 1 {
			closeValue = tx.ValueUSD / float64(matched)
		}
		trades = append(trades, closeTrade(lot, closeValue, tx.Timestamp))
	}
	l.lots[tx.TokenMint] = queue[matched:]
	return trades, true
}

// openLots returns all remaining lots across mints in queue order.
func (l *ledger) openLots() []*domain.OpenLot {
	var out []*domain.OpenLot
	for _, queue := range l.lots {
		out = append(out, queue...)
	}
	return out
}

// closeTrade builds the ClosedTrade for a consumed lot.
// A zero entry value reports 0% rather than dividing by zero.
func closeTrade(lot *domain.OpenLot, closeValue float64, closedAt int64) *domain.ClosedTrade {
	pnl := closeValue - lot.EntryValueUSD
	pct := 0.0
	if lot.EntryValueUSD != 0 {
		pct = pnl / lot.EntryValueUSD * 100
	}
	return &domain.ClosedTrade{
		Wallet:        lot.Wallet,
		TokenMint:     lot.TokenMint,
		EntryValueUSD: lot.EntryValueUSD,
		CloseValueUSD: closeValue,
		PnLUSD:        pnl,
		PnLPct:        pct,
		OpenedAt:      lot.EntryTime,
		ClosedAt:      closedAt,
	}
}
