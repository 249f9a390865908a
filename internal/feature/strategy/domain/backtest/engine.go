package backtest

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Row は全銘柄の終値が揃った1時点です。
type Row struct {
	Time   time.Time
	Closes []float64 // symbolsと同じ順序
}

// JoinCloses は全銘柄に共通するタイムスタンプだけを残して時刻順に並べます。
func JoinCloses(series map[string][]PricePoint, symbols []string) []Row {
	if len(symbols) == 0 {
		return nil
	}
	byTime := make([]map[int64]float64, len(symbols))
	for i, s := range symbols {
		m := make(map[int64]float64, len(series[s]))
		for _, p := range series[s] {
			m[p.Time.UnixNano()] = p.Close
		}
		byTime[i] = m
	}

	var rows []Row
	for _, p := range series[symbols[0]] {
		key := p.Time.UnixNano()
		closes := make([]float64, len(symbols))
		complete := true
		for i := range symbols {
			c, ok := byTime[i][key]
			if !ok {
				complete = false
				break
			}
			closes[i] = c
		}
		if complete {
			rows = append(rows, Row{Time: p.Time, Closes: closes})
		}
	}
	slices.SortStableFunc(rows, func(a, b Row) int { return a.Time.Compare(b.Time) })
	return slices.CompactFunc(rows, func(a, b Row) bool { return a.Time.Equal(b.Time) })
}

// RowTimes returns the timestamps of rows.
func RowTimes(rows []Row) []time.Time {
	out := make([]time.Time, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Time)
	}
	return out
}

type position struct {
	cash     decimal.Decimal
	reserved decimal.Decimal
	shares   int64
	entry    decimal.Decimal // shares > 0 のときのみ有効
}

func (p *position) value(price decimal.Decimal) decimal.Decimal {
	return p.cash.Add(price.Mul(decimal.NewFromInt(p.shares))).Add(p.reserved)
}

// Backtest は各銘柄に資金を均等配分し、利確・損切り判定の後にセンチメントで売買します。
// 各時点の評価額は Σ(現金 + 保有株数×価格 + 予備資金) です。
func Backtest(series map[string][]PricePoint, symbols []string, p Params, signals SignalSource) Result {
	rows := JoinCloses(series, symbols)
	if len(rows) == 0 {
		return Result{Points: []ValuePoint{}, Transactions: []Transaction{}}
	}

	reserve := decimal.NewFromFloat(p.ReservePerAsset)
	shares := splitEvenly(decimal.NewFromFloat(p.InitialPortfolio), len(symbols))

	book := make([]*position, len(symbols))
	for i := range symbols {
		book[i] = &position{cash: shares[i].Sub(reserve), reserved: reserve}
	}

	res := Result{
		Points:       make([]ValuePoint, 0, len(rows)),
		Transactions: []Transaction{},
	}

	for _, row := range rows {
		prices := make([]decimal.Decimal, len(symbols))
		for i, c := range row.Closes {
			prices[i] = decimal.NewFromFloat(c)
		}

		// 利確・損切りはシグナルより先に判定する
		for i, sym := range symbols {
			pos := book[i]
			if pos.shares == 0 {
				continue
			}
			ret := returnOf(pos.entry, prices[i])
			switch {
			case ret >= p.TakeProfit:
				res.Transactions = append(res.Transactions, pos.exit(row.Time, sym, ActionTakeProfit, prices[i], ret))
			case ret <= -p.StopLoss:
				res.Transactions = append(res.Transactions, pos.exit(row.Time, sym, ActionStopLoss, prices[i], ret))
			}
		}

		for i, sym := range symbols {
			pos := book[i]
			s := signals.Sentiment(sym, row.Time)
			switch {
			case s > p.BullishThreshold && pos.shares == 0:
				if tx, ok := pos.buy(row.Time, sym, prices[i]); ok {
					res.Transactions = append(res.Transactions, tx)
				}
			case s < p.BearishThreshold && pos.shares > 0:
				ret := returnOf(pos.entry, prices[i])
				res.Transactions = append(res.Transactions, pos.exit(row.Time, sym, ActionSell, prices[i], ret))
			}
		}

		total := decimal.Zero
		for i, pos := range book {
			total = total.Add(pos.value(prices[i]))
		}
		res.Points = append(res.Points, ValuePoint{Time: row.Time, Value: total})
	}
	return res
}

// allocScale は銘柄ごとの配分額の小数桁数です。
const allocScale = 8

// splitEvenly はtotalをn等分します。端数は最後の要素に寄せ、合計は常にtotalと一致します。
func splitEvenly(total decimal.Decimal, n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	if n == 0 {
		return out
	}
	share := total.Div(decimal.NewFromInt(int64(n))).Truncate(allocScale)
	for i := range n - 1 {
		out[i] = share
	}
	out[n-1] = total.Sub(share.Mul(decimal.NewFromInt(int64(n - 1))))
	return out
}

func returnOf(entry, price decimal.Decimal) float64 {
	if entry.IsZero() {
		return 0
	}
	r, _ := price.Sub(entry).Div(entry).Float64()
	return r
}

func (p *position) buy(t time.Time, sym string, price decimal.Decimal) (Transaction, bool) {
	if !price.IsPositive() {
		return Transaction{}, false
	}
	shares := p.cash.Div(price).Floor().IntPart()
	if shares < 1 {
		return Transaction{}, false
	}
	cost := price.Mul(decimal.NewFromInt(shares))
	p.cash = p.cash.Sub(cost)
	p.shares = shares
	p.entry = price
	return Transaction{Time: t, Symbol: sym, Action: ActionBuy, Shares: shares, Price: price, Value: cost}, true
}

func (p *position) exit(t time.Time, sym string, action Action, price decimal.Decimal, ret float64) Transaction {
	proceeds := price.Mul(decimal.NewFromInt(p.shares))
	pct := ret * 100
	tx := Transaction{
		Time: t, Symbol: sym, Action: action,
		Shares: p.shares, Price: price, Value: proceeds, ReturnPct: &pct,
	}
	p.cash = p.cash.Add(proceeds)
	p.shares = 0
	p.entry = decimal.Zero
	return tx
}
