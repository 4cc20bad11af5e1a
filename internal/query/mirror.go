package query

import (
	"math/big"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zenith-protocols/zenex-engine/market"
	"github.com/zenith-protocols/zenex-engine/position"
)

// Mirror is the GORM handle to the local read-model database.
type Mirror struct {
	db *gorm.DB
}

// Open opens (creating if absent) the sqlite file at dsn and migrates the
// mirror's schema. dsn follows glebarez/sqlite conventions, e.g.
// "file:zenex-query.db?cache=shared" or ":memory:" for tests.
func Open(dsn string) (*Mirror, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&MarketRow{}, &PositionRow{}); err != nil {
		return nil, err
	}
	return &Mirror{db: db}, nil
}

// RefreshMarket upserts one asset's mirrored row from live engine state.
func (m *Mirror) RefreshMarket(data *market.Data, cfg market.Config, now time.Time) error {
	row := MarketRow{
		Asset:              data.Asset,
		Enabled:            cfg.Enabled,
		LongCollateral:     data.LongCollateral.String(),
		LongNotionalSize:   data.LongNotionalSize.String(),
		ShortCollateral:    data.ShortCollateral.String(),
		ShortNotionalSize:  data.ShortNotionalSize.String(),
		LongInterestIndex:  data.LongInterestIndex.String(),
		ShortInterestIndex: data.ShortInterestIndex.String(),
		MaxPayout:          stringOrZero(cfg.MaxPayout),
		LastUpdate:         data.LastUpdate,
		MirroredAt:         now,
	}
	return m.db.Save(&row).Error
}

// RefreshPosition upserts one position's mirrored row.
func (m *Mirror) RefreshPosition(p *position.Position, now time.Time) error {
	row := PositionRow{
		ID:            p.ID,
		User:          p.User,
		Asset:         p.Asset,
		IsLong:        p.IsLong,
		Status:        uint8(p.Status),
		EntryPrice:    stringOrZero(p.EntryPrice),
		Collateral:    stringOrZero(p.Collateral),
		NotionalSize:  stringOrZero(p.NotionalSize),
		StopLoss:      stringOrZero(p.StopLoss),
		TakeProfit:    stringOrZero(p.TakeProfit),
		InterestIndex: stringOrZero(p.InterestIndex),
		CreatedAt:     p.CreatedAt,
		MirroredAt:    now,
	}
	return m.db.Save(&row).Error
}

// RemovePosition drops a position's mirrored row. enginectl calls it only
// for a position id that no longer exists in enginestate; closed positions
// stay in enginestate, so their rows are refreshed rather than removed.
func (m *Mirror) RemovePosition(id uint32) error {
	return m.db.Delete(&PositionRow{}, "id = ?", id).Error
}

// PositionsByUser returns every mirrored position for user, most recent
// first.
func (m *Mirror) PositionsByUser(user string) ([]PositionRow, error) {
	var rows []PositionRow
	err := m.db.Where("user = ?", user).Order("created_at desc").Find(&rows).Error
	return rows, err
}

// OpenInterest returns (long, short) notional for asset as parsed big.Int,
// or zero/zero if the asset has never been mirrored.
func (m *Mirror) OpenInterest(asset string) (*big.Int, *big.Int, error) {
	var row MarketRow
	err := m.db.First(&row, "asset = ?", asset).Error
	if err == gorm.ErrRecordNotFound {
		return big.NewInt(0), big.NewInt(0), nil
	}
	if err != nil {
		return nil, nil, err
	}
	long, ok1 := new(big.Int).SetString(row.LongNotionalSize, 10)
	short, ok2 := new(big.Int).SetString(row.ShortNotionalSize, 10)
	if !ok1 || !ok2 {
		return nil, nil, gorm.ErrInvalidData
	}
	return long, short, nil
}

// Markets returns every mirrored market row.
func (m *Mirror) Markets() ([]MarketRow, error) {
	var rows []MarketRow
	err := m.db.Order("asset").Find(&rows).Error
	return rows, err
}

func stringOrZero(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
