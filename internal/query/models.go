// Package query mirrors markets and positions into a local SQLite database
// via GORM, for off-chain reporting (open-interest dashboards, position
// history by user). It is read-model only: enginestate.Store remains the
// sole source of truth, and this package is rebuilt by replaying snapshots
// through Refresh* whenever it falls behind or is wiped. Amounts are stored
// as decimal strings since gorm has no native big.Int column type.
//
// Grounded on the teacher's services/otc-gateway/models package (gorm model
// shape, AutoMigrate-on-boot) and its server_test.go / reconciler_test.go
// use of github.com/glebarez/sqlite as the gorm dialector for local/test
// databases.
package query

import "time"

// MarketRow mirrors market.Data plus the handful of market.Config fields a
// dashboard needs (max_payout, for utilization).
type MarketRow struct {
	Asset              string `gorm:"primaryKey;size:64"`
	Enabled            bool   `gorm:"index"`
	LongCollateral     string
	LongNotionalSize   string
	ShortCollateral    string
	ShortNotionalSize  string
	LongInterestIndex  string
	ShortInterestIndex string
	MaxPayout          string
	LastUpdate         int64
	MirroredAt         time.Time
}

// PositionRow mirrors position.Position.
type PositionRow struct {
	ID            uint32 `gorm:"primaryKey"`
	User          string `gorm:"index;size:128"`
	Asset         string `gorm:"index;size:64"`
	IsLong        bool
	Status        uint8 `gorm:"index"`
	EntryPrice    string
	Collateral    string
	NotionalSize  string
	StopLoss      string
	TakeProfit    string
	InterestIndex string
	CreatedAt     int64
	MirroredAt    time.Time
}

// TableName overrides pin snake_case table names regardless of struct
// renames, matching the teacher's AutoMigrate call listing every model
// explicitly rather than relying on gorm's pluralizer alone.
func (MarketRow) TableName() string   { return "markets" }
func (PositionRow) TableName() string { return "positions" }
