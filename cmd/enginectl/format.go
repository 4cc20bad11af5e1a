package main

import (
	"fmt"
	"math/big"

	"github.com/zenith-protocols/zenex-engine/fixedpoint"
)

// parseAmount parses a decimal string (e.g. "125.5") into an S7-scaled
// *big.Int, matching how an operator or trader would naturally type an
// amount on the command line.
func parseAmount(decimal string) (*big.Int, error) {
	r, ok := new(big.Rat).SetString(decimal)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", decimal)
	}
	r.Mul(r, new(big.Rat).SetInt(fixedpoint.S7))
	if !r.IsInt() {
		return nil, fmt.Errorf("amount %q has more precision than S7 supports", decimal)
	}
	return r.Num(), nil
}

// formatAmount renders an S7-scaled amount back to a decimal string for
// display.
func formatAmount(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	r := new(big.Rat).SetFrac(amount, fixedpoint.S7)
	return r.FloatString(7)
}

func mustParseAmount(decimal string) *big.Int {
	v, err := parseAmount(decimal)
	if err != nil {
		panic(err)
	}
	return v
}
