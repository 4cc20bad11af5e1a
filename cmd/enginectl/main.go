// Command enginectl is a local reference CLI that exercises the trading
// engine and vault end to end against the in-memory host (host/memhost):
// initialize, open/close positions, run a keeper batch, and inspect markets
// and positions through the SQLite read-model mirror. It is not a
// deployment artifact — a real host wires trading.Engine and vaultapp.App
// to its own chain's Token/Oracle/Authorizer/Clock instead.
//
// Grounded on the teacher's cmd/nhb-cli: a top-level switch in main
// dispatches on positional arguments; all commands live in commands.go.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	app, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "enginectl: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	code := dispatch(app, os.Args[1], os.Args[2:])
	os.Exit(code)
}

func dispatch(app *App, command string, args []string) int {
	var err error
	switch command {
	case "init":
		err = app.cmdInit(args)
	case "seed-price":
		err = app.cmdSeedPrice(args)
	case "status":
		err = app.cmdStatus(args)
	case "open":
		err = app.cmdOpen(args)
	case "close":
		err = app.cmdClose(args)
	case "execute":
		err = app.cmdExecute(args)
	case "deposit":
		err = app.cmdDeposit(args)
	case "queue-withdraw":
		err = app.cmdQueueWithdraw(args)
	case "withdraw":
		err = app.cmdWithdraw(args)
	case "markets":
		err = app.cmdMarkets(args)
	case "positions":
		err = app.cmdPositions(args)
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "enginectl: unknown command %q\n", command)
		printUsage()
		return 1
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "enginectl: %v\n", err)
		return 1
	}
	return 0
}

func printUsage() {
	fmt.Println(`Usage: enginectl <command> [arguments]

Commands:
  init                                   Initialize global config and seed markets from config.toml
  seed-price <asset> <price>             Set the in-memory oracle price for asset
  status                                 Print engine status and market summaries
  open <user> <asset> <collateral> <notional> <long|short> [entry] [tp] [sl]
                                          Open a position (entry 0 = market order)
  close <position-id>                    Close or cancel a position
  execute <fill|stoploss|takeprofit|liquidate>:<position-id>[,...]
                                          Run a permissionless keeper batch
  deposit <user> <amount>                Deposit into the vault
  queue-withdraw <user> <shares>         Queue a vault withdrawal
  withdraw <user>                        Complete a matured vault withdrawal
  markets                                List mirrored market aggregates
  positions <user>                       List a user's mirrored positions`)
}
