package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_Summary(t *testing.T) {
	chain := Chain{
		Name:      "Goerli",
		Chain:     "ETH",
		ShortName: "gor",
		ChainID:   5,
		NetworkID: 5,
		Network:   NetworkTestnet,
		Currency:  Currency{Name: "Goerli Ether", Symbol: "ETH", Decimals: 18},
		InfoURL:   "https://goerli.net",
		RedFlags:  []string{"reusedChainId"},
		RPC:       []Endpoint{{URL: "https://rpc.goerli.mudit.blog", Transport: TransportHTTP}},
	}

	raw, err := json.Marshal(chain.Summary())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"chainId": 5,
		"name": "Goerli",
		"shortName": "gor",
		"rpcCount": 1,
		"chain": "ETH",
		"networkId": 5,
		"network": "testnet",
		"nativeCurrency": {"name": "Goerli Ether", "symbol": "ETH", "decimals": 18},
		"infoURL": "https://goerli.net",
		"redFlags": ["reusedChainId"]
	}`, string(raw))
}

func TestChain_SummaryOmitsBlankMetadata(t *testing.T) {
	raw, err := json.Marshal(Chain{Name: "Devnet", ShortName: "dev", ChainID: 1337}.Summary())
	require.NoError(t, err)
	assert.JSONEq(t, `{"chainId":1337,"name":"Devnet","shortName":"dev","rpcCount":0}`, string(raw))
}
