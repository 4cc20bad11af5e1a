package memhost

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenTransferMovesBalance(t *testing.T) {
	token := NewToken()
	token.Mint("alice", big.NewInt(100))

	require.NoError(t, token.Transfer("alice", "bob", big.NewInt(40)))
	require.Equal(t, big.NewInt(60), token.BalanceOf("alice"))
	require.Equal(t, big.NewInt(40), token.BalanceOf("bob"))
}

func TestTokenTransferRejectsInsufficientBalance(t *testing.T) {
	token := NewToken()
	token.Mint("alice", big.NewInt(10))
	err := token.Transfer("alice", "bob", big.NewInt(11))
	require.Error(t, err)
}

func TestTokenTransferRejectsNonPositiveAmount(t *testing.T) {
	token := NewToken()
	token.Mint("alice", big.NewInt(10))
	require.Error(t, token.Transfer("alice", "bob", big.NewInt(0)))
	require.Error(t, token.Transfer("alice", "bob", big.NewInt(-1)))
}

func TestTokenBalanceOfIsNotAliased(t *testing.T) {
	token := NewToken()
	token.Mint("alice", big.NewInt(10))
	bal := token.BalanceOf("alice")
	bal.Add(bal, big.NewInt(1000))
	require.Equal(t, big.NewInt(10), token.BalanceOf("alice"))
}

func TestShareTokenMintBurnTracksSupply(t *testing.T) {
	shares := NewShareToken()
	require.NoError(t, shares.Mint("alice", big.NewInt(100)))
	require.Equal(t, big.NewInt(100), shares.TotalSupply())

	require.NoError(t, shares.Burn("alice", big.NewInt(30)))
	require.Equal(t, big.NewInt(70), shares.TotalSupply())
	require.Equal(t, big.NewInt(70), shares.BalanceOf("alice"))
}

func TestShareTokenBurnRejectsInsufficientBalance(t *testing.T) {
	shares := NewShareToken()
	require.NoError(t, shares.Mint("alice", big.NewInt(10)))
	require.Error(t, shares.Burn("alice", big.NewInt(11)))
}

func TestShareTokenTransfer(t *testing.T) {
	shares := NewShareToken()
	require.NoError(t, shares.Mint("alice", big.NewInt(100)))
	require.NoError(t, shares.Transfer("alice", "bob", big.NewInt(40)))
	require.Equal(t, big.NewInt(60), shares.BalanceOf("alice"))
	require.Equal(t, big.NewInt(40), shares.BalanceOf("bob"))
}

func TestOracleSetAndLastPrice(t *testing.T) {
	o := NewOracle()
	_, _, ok := o.LastPrice("BTC")
	require.False(t, ok)

	o.SetPrice("BTC", big.NewInt(100), 1000)
	price, ts, ok := o.LastPrice("BTC")
	require.True(t, ok)
	require.Equal(t, big.NewInt(100), price)
	require.Equal(t, int64(1000), ts)
}

func TestOracleLastPriceIsNotAliased(t *testing.T) {
	o := NewOracle()
	o.SetPrice("BTC", big.NewInt(100), 0)
	price, _, _ := o.LastPrice("BTC")
	price.Add(price, big.NewInt(1))

	again, _, _ := o.LastPrice("BTC")
	require.Equal(t, big.NewInt(100), again)
}

func TestAuthorizerAlwaysAllows(t *testing.T) {
	require.NoError(t, Authorizer{}.RequireAuth("anyone"))
}

func TestClockSetAndAdvance(t *testing.T) {
	c := NewClock(1000)
	require.Equal(t, int64(1000), c.Now())

	c.Advance(500)
	require.Equal(t, int64(1500), c.Now())

	c.Set(0)
	require.Equal(t, int64(0), c.Now())
}
