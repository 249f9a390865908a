// Package entity defines the domain models for the watchlist feature.
package entity

import "time"

// Symbol はウォッチリストに載る銘柄です。SortKeyの昇順で表示します。
type Symbol struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:20;not null;uniqueIndex"`
	Name      string    `gorm:"size:255;not null"`
	Market    string    `gorm:"size:100;not null"`
	IsActive  bool      `gorm:"not null;default:true"`
	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Symbol) TableName() string {
	return "watchlist_symbols"
}

// KnownNames は既定銘柄の表示名です。
var KnownNames = map[string]string{
	"SPY": "SPDR S&P 500 ETF",
	"GLD": "SPDR Gold Shares",
}

// DefaultMarket is the listing market of seeded symbols.
const DefaultMarket = "NYSE Arca"
