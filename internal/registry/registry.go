// Package registry holds the static lookup tables for supported chains and
// Compound markets, and the mappers that resolve human-facing identifiers
// into persistence-layer keys.
package registry

import (
	"fmt"
	"strings"
)

type Chain struct {
	ChainID int64  `json:"chainId" db:"chain_id"`
	Name    string `json:"name" db:"name"`
}

type Asset struct {
	ID      string `json:"id" db:"id"`
	ChainID int64  `json:"chainId" db:"chain_id"`
	Address string `json:"address" db:"address"`
	Symbol  string `json:"symbol" db:"symbol"`
}

// MarketSelection is one chain+market-address pair from the wire payload.
type MarketSelection struct {
	ChainID int64  `json:"chainId"`
	Address string `json:"address"`
}

type UnknownChainError struct {
	Name string
}

func (e *UnknownChainError) Error() string {
	return fmt.Sprintf("unknown chain %q", e.Name)
}

type UnknownMarketError struct {
	ChainID int64
	Address string
}

func (e *UnknownMarketError) Error() string {
	return fmt.Sprintf("unknown market %s on chain %d", e.Address, e.ChainID)
}

// Registry is immutable after construction; build it once in main and inject
// it into the alert service.
type Registry struct {
	chains       []Chain
	assets       []Asset
	chainsByName map[string]Chain
	assetsByKey  map[string]Asset
}

func New(chains []Chain, assets []Asset) *Registry {
	r := &Registry{
		chains:       make([]Chain, 0, len(chains)),
		assets:       make([]Asset, 0, len(assets)),
		chainsByName: make(map[string]Chain, len(chains)),
		assetsByKey:  make(map[string]Asset, len(assets)),
	}
	for _, c := range chains {
		r.chains = append(r.chains, c)
		r.chainsByName[strings.ToLower(c.Name)] = c
	}
	for _, a := range assets {
		a.Address = strings.ToLower(a.Address)
		a.ID = AssetKey(a.ChainID, a.Address)
		r.assets = append(r.assets, a)
		r.assetsByKey[a.ID] = a
	}
	return r
}

// Chains returns a copy of the supported chain table.
func (r *Registry) Chains() []Chain {
	out := make([]Chain, len(r.chains))
	copy(out, r.chains)
	return out
}

// Assets returns a copy of the supported market table.
func (r *Registry) Assets() []Asset {
	out := make([]Asset, len(r.assets))
	copy(out, r.assets)
	return out
}

// AssetKey is the persistence-layer primary key for a market.
func AssetKey(chainID int64, address string) string {
	return fmt.Sprintf("%d_%s", chainID, strings.ToLower(address))
}

// MapChains resolves chain names to their canonical chain entries. Names are
// matched case-insensitively. Output preserves input order and output length
// equals input length; an unmatched name is an error, never a skip.
func (r *Registry) MapChains(names []string) ([]Chain, error) {
	chains := make([]Chain, 0, len(names))
	for _, name := range names {
		c, ok := r.chainsByName[strings.ToLower(name)]
		if !ok {
			return nil, &UnknownChainError{Name: name}
		}
		chains = append(chains, c)
	}
	return chains, nil
}

// MapMarkets resolves chain+address pairs to known market assets with the
// same order- and length-preserving contract as MapChains.
func (r *Registry) MapMarkets(selections []MarketSelection) ([]Asset, error) {
	assets := make([]Asset, 0, len(selections))
	for _, sel := range selections {
		a, ok := r.assetsByKey[AssetKey(sel.ChainID, sel.Address)]
		if !ok {
			return nil, &UnknownMarketError{ChainID: sel.ChainID, Address: sel.Address}
		}
		assets = append(assets, a)
	}
	return assets, nil
}

// Default returns the registry for the Compound v3 deployments the dashboard
// supports.
func Default() *Registry {
	chains := []Chain{
		{ChainID: 1, Name: "Ethereum"},
		{ChainID: 10, Name: "Optimism"},
		{ChainID: 137, Name: "Polygon"},
		{ChainID: 5000, Name: "Mantle"},
		{ChainID: 8453, Name: "Base"},
		{ChainID: 42161, Name: "Arbitrum"},
		{ChainID: 534352, Name: "Scroll"},
	}
	assets := []Asset{
		{ChainID: 1, Address: "0xc3d688b66703497daa19211eedff47f25384cdc3", Symbol: "USDC"},
		{ChainID: 1, Address: "0xa17581a9e3356d9a858b789d68b4d866e593ae94", Symbol: "WETH"},
		{ChainID: 1, Address: "0x3afdc9bca9213a35503b077a6072f3d0d5ab0840", Symbol: "USDT"},
		{ChainID: 10, Address: "0x2e44e174f7d53f0212823acc11c01a11d58c5bcb", Symbol: "USDC"},
		{ChainID: 10, Address: "0x995e394b8b2437ac8ce61ee0bc610d617962b214", Symbol: "USDT"},
		{ChainID: 137, Address: "0xf25212e676d1f7f89cd72ffee66158f541246445", Symbol: "USDC.e"},
		{ChainID: 137, Address: "0xaeb318360f27748acb200ce616e389a6c9409a07", Symbol: "USDT"},
		{ChainID: 5000, Address: "0x606174f62cd968d8e684c645080fa694c1d7786e", Symbol: "USDe"},
		{ChainID: 8453, Address: "0xb125e6687d4313864e53df431d5425969c15eb2f", Symbol: "USDC"},
		{ChainID: 8453, Address: "0x46e6b214b524310239732d51387075e0e70970bf", Symbol: "WETH"},
		{ChainID: 8453, Address: "0x9c4ec768c28520b50860ea7a15bd7213a9ff58bf", Symbol: "USDbC"},
		{ChainID: 42161, Address: "0x9c4ec768c28520b50860ea7a15bd7213a9ff58bf", Symbol: "USDC.e"},
		{ChainID: 42161, Address: "0xa5edbdd9646f8dff606d7448e414884c7d905dca", Symbol: "USDC"},
		{ChainID: 42161, Address: "0x6f7d514bbd4aff3bcd1140b7344b32f063dee486", Symbol: "WETH"},
		{ChainID: 534352, Address: "0xb2f97c1bd3bf02f5e74d13f02e3e26f93d77ce44", Symbol: "USDC"},
	}
	return New(chains, assets)
}
