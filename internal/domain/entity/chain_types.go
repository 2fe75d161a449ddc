package entity

// NetworkType defines the type for network classifications (e.g., mainnet, testnet).
type NetworkType string

// Constants for known network types.
const (
	NetworkMainnet NetworkType = "mainnet"
	NetworkTestnet NetworkType = "testnet"
)

// Chain represents the metadata of a blockchain network as published by chainlist.
type Chain struct {
	Name      string
	Chain     string
	RPC       []Endpoint
	Currency  Currency
	InfoURL   string
	ShortName string
	ChainID   int64
	NetworkID int64
	Network   NetworkType
	RedFlags  []string
}

// Currency defines the native currency details of a chain.
type Currency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// ChainSummary is the listing view of a chain. Metadata chainlist leaves blank is omitted.
type ChainSummary struct {
	ChainID        int64       `json:"chainId"`
	Name           string      `json:"name"`
	ShortName      string      `json:"shortName"`
	RPCCount       int         `json:"rpcCount"`
	Chain          string      `json:"chain,omitempty"`
	NetworkID      int64       `json:"networkId,omitempty"`
	Network        NetworkType `json:"network,omitempty"`
	NativeCurrency *Currency   `json:"nativeCurrency,omitempty"`
	InfoURL        string      `json:"infoURL,omitempty"`
	RedFlags       []string    `json:"redFlags,omitempty"`
}

// Summary returns the listing view of c.
func (c Chain) Summary() ChainSummary {
	summary := ChainSummary{
		ChainID:   c.ChainID,
		Name:      c.Name,
		ShortName: c.ShortName,
		RPCCount:  len(c.RPC),
		Chain:     c.Chain,
		NetworkID: c.NetworkID,
		Network:   c.Network,
		InfoURL:   c.InfoURL,
		RedFlags:  c.RedFlags,
	}
	if c.Currency != (Currency{}) {
		currency := c.Currency
		summary.NativeCurrency = &currency
	}
	return summary
}
