package backtest

import (
	"math"

	"github.com/shopspring/decimal"
)

// profitEpsilon 未満の損益は表示対象外です。
const profitEpsilon = 1e-8

// Range は評価額の最小値と最大値を返します。空の場合はゼロです。
func Range(points []ValuePoint) (lo, hi decimal.Decimal) {
	if len(points) == 0 {
		return decimal.Zero, decimal.Zero
	}
	lo, hi = points[0].Value, points[0].Value
	for _, p := range points[1:] {
		lo = decimal.Min(lo, p.Value)
		hi = decimal.Max(hi, p.Value)
	}
	return lo, hi
}

// BuyAndHold は初期資金を最初の終値で全額投資した場合の評価額推移です。
func BuyAndHold(series []PricePoint, initial float64) []ValuePoint {
	if len(series) == 0 || series[0].Close == 0 {
		return []ValuePoint{}
	}
	base := decimal.NewFromFloat(series[0].Close)
	init := decimal.NewFromFloat(initial)
	out := make([]ValuePoint, 0, len(series))
	for _, p := range series {
		out = append(out, ValuePoint{
			Time:  p.Time,
			Value: init.Mul(decimal.NewFromFloat(p.Close)).Div(base),
		})
	}
	return out
}

// ClosedTrades は決済取引から買値・損益を復元します。
// 買値は 売値/(1+return_pct/100) で求め、損益が実質ゼロの取引は除きます。
func ClosedTrades(txs []Transaction, points []ValuePoint) []ClosedTrade {
	valueAt := make(map[int64]decimal.Decimal, len(points))
	for _, p := range points {
		valueAt[p.Time.UnixNano()] = p.Value
	}

	out := []ClosedTrade{}
	for _, tx := range txs {
		if tx.Shares == 0 {
			continue
		}
		sell := tx.Price
		buy := sell
		if tx.ReturnPct != nil {
			factor := decimal.NewFromFloat(1 + *tx.ReturnPct/100)
			if !factor.IsZero() {
				buy = sell.DivRound(factor, 8)
			}
		}
		shares := decimal.NewFromInt(tx.Shares)
		profit := sell.Sub(buy).Mul(shares)
		pf, _ := profit.Float64()
		if math.Abs(pf) < profitEpsilon {
			continue
		}
		var pct float64
		if cost := buy.Mul(shares); !cost.IsZero() {
			pct, _ = profit.Div(cost).Mul(decimal.NewFromInt(100)).Float64()
		}
		ct := ClosedTrade{
			Transaction: tx,
			BuyPrice:    buy,
			SellPrice:   sell,
			Shares:      tx.Shares,
			Profit:      profit,
			ProfitPct:   pct,
		}
		if v, ok := valueAt[tx.Time.UnixNano()]; ok {
			ct.PortfolioValue = &v
		}
		out = append(out, ct)
	}
	return out
}
