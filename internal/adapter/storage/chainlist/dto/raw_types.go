package chainlist_dto

import (
	"bytes"
	"encoding/json"
)

// NetworkTypeRaw defines the type for network classifications (e.g., mainnet, testnet) from raw data.
type NetworkTypeRaw string

// Constants for known network types from raw data.
const (
	NetworkMainnetRaw NetworkTypeRaw = "mainnet"
	NetworkTestnetRaw NetworkTypeRaw = "testnet"
)

// ChainRaw represents the data structure for a blockchain network as received from Chainlist.
// Fields the prober never reads (icons, explorers, faucets, ens, parent bridges) are not decoded.
type ChainRaw struct {
	Name      string         `json:"name"`
	Chain     string         `json:"chain"`
	RPC       []RPCRaw       `json:"rpc"`
	Currency  CurrencyRaw    `json:"nativeCurrency"`
	InfoURL   string         `json:"infoURL"`
	ShortName string         `json:"shortName"`
	ChainID   int64          `json:"chainId"`
	NetworkID int64          `json:"networkId"`
	Network   NetworkTypeRaw `json:"network,omitempty"`
	RedFlags  []string       `json:"redFlags,omitempty"`
}

// CurrencyRaw defines the native currency details of a chain from raw data.
type CurrencyRaw struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// RPCRaw is one entry of a chain's rpc list.
// chains.json publishes plain strings; the chainlist.org extras publish {"url": ..., "tracking": ...}.
type RPCRaw struct {
	URL      string `json:"url"`
	Tracking string `json:"tracking,omitempty"`
}

// UnmarshalJSON accepts both the string and the object form.
func (r *RPCRaw) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		return json.Unmarshal(data, &r.URL)
	}
	type plain RPCRaw
	return json.Unmarshal(data, (*plain)(r))
}
