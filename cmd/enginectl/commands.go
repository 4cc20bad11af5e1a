package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zenith-protocols/zenex-engine/fixedpoint"
	"github.com/zenith-protocols/zenex-engine/internal/bootstrap"
	"github.com/zenith-protocols/zenex-engine/market"
	"github.com/zenith-protocols/zenex-engine/tradeconfig"
	"github.com/zenith-protocols/zenex-engine/trading"
)

const owner = "owner"

// cmdInit seeds GlobalConfig and every configured market from config.toml.
// Run once per fresh data directory; Setup status applies config and
// market changes immediately (TimelockDelay is zero there), so no separate
// queue/apply/wait cycle is needed for first-time setup.
func (a *App) cmdInit(args []string) error {
	rate, err := parseAmount(a.cfg.Global.CallerTakeRate)
	if err != nil {
		return fmt.Errorf("CallerTakeRate: %w", err)
	}
	maxUtil, err := parseAmount(a.cfg.Global.MaxUtilization)
	if err != nil {
		return fmt.Errorf("MaxUtilization: %w", err)
	}
	gcfg := tradeconfig.GlobalConfig{
		Oracle:         a.cfg.Global.Oracle,
		CallerTakeRate: rate,
		MaxPositions:   a.cfg.Global.MaxPositions,
		MaxUtilization: maxUtil,
	}
	if err := a.engine.Initialize(owner, "trading", "vault", gcfg); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	for _, m := range a.cfg.Markets {
		cfg, err := marketConfigFromSeed(m)
		if err != nil {
			return fmt.Errorf("market %s: %w", m.Asset, err)
		}
		if err := a.engine.QueueSetMarket(owner, m.Asset, cfg); err != nil {
			return fmt.Errorf("queue market %s: %w", m.Asset, err)
		}
		if err := a.engine.SetMarket(m.Asset); err != nil {
			return fmt.Errorf("set market %s: %w", m.Asset, err)
		}
		a.mirrorMarket(m.Asset)
	}
	if err := a.engine.SetStatus(owner, tradeconfig.StatusActive); err != nil {
		return fmt.Errorf("set status: %w", err)
	}

	fmt.Printf("initialized with %d market(s), status Active\n", len(a.cfg.Markets))
	return nil
}

func marketConfigFromSeed(m bootstrap.MarketSeed) (market.Config, error) {
	maxPayout, err := parseAmount(m.MaxPayout)
	if err != nil {
		return market.Config{}, fmt.Errorf("MaxPayout: %w", err)
	}
	minCollateral, err := parseAmount(m.MinCollateral)
	if err != nil {
		return market.Config{}, fmt.Errorf("MinCollateral: %w", err)
	}
	maxCollateral, err := parseAmount(m.MaxCollateral)
	if err != nil {
		return market.Config{}, fmt.Errorf("MaxCollateral: %w", err)
	}
	initMargin, err := parseAmount(m.InitMargin)
	if err != nil {
		return market.Config{}, fmt.Errorf("InitMargin: %w", err)
	}
	maintenanceMargin, err := parseAmount(m.MaintenanceMargin)
	if err != nil {
		return market.Config{}, fmt.Errorf("MaintenanceMargin: %w", err)
	}
	baseFee, err := parseAmount(m.BaseFee)
	if err != nil {
		return market.Config{}, fmt.Errorf("BaseFee: %w", err)
	}
	priceImpactScalar, err := parseAmount(m.PriceImpactScalar)
	if err != nil {
		return market.Config{}, fmt.Errorf("PriceImpactScalar: %w", err)
	}
	baseHourlyRate, err := parseAmount(m.BaseHourlyRate)
	if err != nil {
		return market.Config{}, fmt.Errorf("BaseHourlyRate: %w", err)
	}
	return market.Config{
		Enabled:           m.Enabled,
		MaxPayout:         maxPayout,
		MinCollateral:     minCollateral,
		MaxCollateral:     maxCollateral,
		InitMargin:        initMargin,
		MaintenanceMargin: maintenanceMargin,
		BaseFee:           baseFee,
		PriceImpactScalar: priceImpactScalar,
		BaseHourlyRate:    baseHourlyRate,
	}, nil
}

func (a *App) cmdSeedPrice(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: seed-price <asset> <price>")
	}
	price, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	a.oracle.SetPrice(args[0], price, a.clock.Now())
	fmt.Printf("%s price set to %s\n", args[0], formatAmount(price))
	return nil
}

func (a *App) cmdStatus(args []string) error {
	status, ok, err := a.store.GetStatus()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("engine not initialized")
		return nil
	}
	fmt.Printf("status: %s\n", status)
	return a.cmdMarkets(nil)
}

func (a *App) cmdOpen(args []string) error {
	if len(args) < 5 {
		return fmt.Errorf("usage: open <user> <asset> <collateral> <notional> <long|short> [entry] [tp] [sl]")
	}
	user, asset := args[0], args[1]
	collateral, err := parseAmount(args[2])
	if err != nil {
		return err
	}
	notional, err := parseAmount(args[3])
	if err != nil {
		return err
	}
	isLong, err := parseSide(args[4])
	if err != nil {
		return err
	}
	entry := fixedpoint.New(0)
	if len(args) > 5 {
		if entry, err = parseAmount(args[5]); err != nil {
			return err
		}
	}
	tp := fixedpoint.New(0)
	if len(args) > 6 {
		if tp, err = parseAmount(args[6]); err != nil {
			return err
		}
	}
	sl := fixedpoint.New(0)
	if len(args) > 7 {
		if sl, err = parseAmount(args[7]); err != nil {
			return err
		}
	}

	a.token.Mint(user, collateral)
	result, err := a.engine.OpenPosition(trading.OpenPositionParams{
		User: user, Asset: asset, Collateral: collateral, Notional: notional,
		IsLong: isLong, EntryPrice: entry, TakeProfit: tp, StopLoss: sl,
	})
	if err != nil {
		return err
	}
	fmt.Printf("opened position #%d, fee held %s\n", result.ID, formatAmount(result.OpenFee))
	a.mirrorMarket(asset)
	return a.mirrorPosition(result.ID)
}

func (a *App) cmdClose(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: close <position-id>")
	}
	id, err := parsePositionID(args[0])
	if err != nil {
		return err
	}
	pos, _, err := a.store.GetPosition(id)
	if err != nil {
		return err
	}
	result, err := a.engine.ClosePosition(id)
	if err != nil {
		return err
	}
	fmt.Printf("closed #%d: pnl %s, fee %s\n", id, formatAmount(result.PnL), formatAmount(result.Fee))
	if pos != nil {
		a.mirrorMarket(pos.Asset)
	}
	return a.mirrorPosition(id)
}

func (a *App) cmdExecute(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: execute <fill|stoploss|takeprofit|liquidate>:<id>[,<id>...]")
	}
	parts := strings.SplitN(args[0], ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("malformed batch entry %q", args[0])
	}
	reqType, err := parseRequestType(parts[0])
	if err != nil {
		return err
	}
	var requests []trading.ExecuteRequest
	for _, idStr := range strings.Split(parts[1], ",") {
		id, err := parsePositionID(idStr)
		if err != nil {
			return err
		}
		requests = append(requests, trading.ExecuteRequest{Type: reqType, PositionID: id})
	}
	results, err := a.engine.Execute("keeper", requests)
	if err != nil {
		return err
	}
	for i, code := range results {
		fmt.Printf("  position #%d -> result code %d\n", requests[i].PositionID, code)
		a.mirrorPosition(requests[i].PositionID)
	}
	return nil
}

func (a *App) cmdDeposit(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: deposit <user> <amount>")
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	a.token.Mint(args[0], amount)
	shares, err := a.vaultApp.Deposit(args[0], amount)
	if err != nil {
		return err
	}
	fmt.Printf("minted %s shares to %s\n", formatAmount(shares), args[0])
	return nil
}

func (a *App) cmdQueueWithdraw(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: queue-withdraw <user> <shares>")
	}
	shares, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	return a.vaultApp.QueueWithdraw(args[0], shares)
}

func (a *App) cmdWithdraw(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: withdraw <user>")
	}
	tokens, err := a.vaultApp.Withdraw(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("withdrew %s\n", formatAmount(tokens))
	return nil
}

func (a *App) cmdMarkets(args []string) error {
	rows, err := a.mirror.Markets()
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Printf("  %s  long=%s short=%s enabled=%v\n", r.Asset, r.LongNotionalSize, r.ShortNotionalSize, r.Enabled)
	}
	return nil
}

func (a *App) cmdPositions(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: positions <user>")
	}
	rows, err := a.mirror.PositionsByUser(args[0])
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Printf("  #%d %s collateral=%s notional=%s status=%d\n", r.ID, r.Asset, r.Collateral, r.NotionalSize, r.Status)
	}
	return nil
}

func parseSide(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "long":
		return true, nil
	case "short":
		return false, nil
	default:
		return false, fmt.Errorf("side must be long or short, got %q", s)
	}
}

func parseRequestType(s string) (trading.RequestType, error) {
	switch strings.ToLower(s) {
	case "fill":
		return trading.RequestFill, nil
	case "stoploss":
		return trading.RequestStopLoss, nil
	case "takeprofit":
		return trading.RequestTakeProfit, nil
	case "liquidate":
		return trading.RequestLiquidate, nil
	default:
		return 0, fmt.Errorf("unknown request type %q", s)
	}
}

func parsePositionID(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid position id %q", s)
	}
	return uint32(n), nil
}
