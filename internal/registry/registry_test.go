package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapChains_PreservesOrderAndLength(t *testing.T) {
	reg := Default()

	chains, err := reg.MapChains([]string{"Base", "Ethereum", "Arbitrum"})
	require.NoError(t, err)
	require.Len(t, chains, 3)
	assert.Equal(t, int64(8453), chains[0].ChainID)
	assert.Equal(t, int64(1), chains[1].ChainID)
	assert.Equal(t, int64(42161), chains[2].ChainID)
}

func TestMapChains_CaseInsensitive(t *testing.T) {
	reg := Default()

	chains, err := reg.MapChains([]string{"ethereum", "POLYGON"})
	require.NoError(t, err)
	require.Len(t, chains, 2)
	assert.Equal(t, "Ethereum", chains[0].Name)
	assert.Equal(t, "Polygon", chains[1].Name)
}

func TestMapChains_UnknownChain(t *testing.T) {
	reg := Default()

	chains, err := reg.MapChains([]string{"Ethereum", "Dogechain"})
	require.Error(t, err)
	assert.Nil(t, chains)

	var unknown *UnknownChainError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Dogechain", unknown.Name)
}

func TestMapChains_TotalOverTable(t *testing.T) {
	reg := Default()

	names := make([]string, 0, len(reg.Chains()))
	for _, c := range reg.Chains() {
		names = append(names, c.Name)
	}

	chains, err := reg.MapChains(names)
	require.NoError(t, err)
	assert.Len(t, chains, len(names))
}

func TestMapMarkets_ResolvesAssetKeys(t *testing.T) {
	reg := Default()

	assets, err := reg.MapMarkets([]MarketSelection{
		{ChainID: 1, Address: "0xc3d688B66703497DAA19211EEdff47f25384cdc3"},
		{ChainID: 8453, Address: "0xb125e6687d4313864e53df431d5425969c15eb2f"},
	})
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "1_0xc3d688b66703497daa19211eedff47f25384cdc3", assets[0].ID)
	assert.Equal(t, "USDC", assets[0].Symbol)
	assert.Equal(t, int64(8453), assets[1].ChainID)
}

func TestMapMarkets_UnknownMarketIsErrorNotSkip(t *testing.T) {
	reg := Default()

	assets, err := reg.MapMarkets([]MarketSelection{
		{ChainID: 1, Address: "0xc3d688b66703497daa19211eedff47f25384cdc3"},
		{ChainID: 1, Address: "0x0000000000000000000000000000000000000000"},
	})
	require.Error(t, err)
	assert.Nil(t, assets)

	var unknown *UnknownMarketError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, int64(1), unknown.ChainID)
}

func TestMapMarkets_WrongChainForKnownAddress(t *testing.T) {
	reg := Default()

	_, err := reg.MapMarkets([]MarketSelection{
		{ChainID: 137, Address: "0xc3d688b66703497daa19211eedff47f25384cdc3"},
	})
	var unknown *UnknownMarketError
	require.ErrorAs(t, err, &unknown)
}
