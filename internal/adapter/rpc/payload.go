package rpc

import "encoding/json"

// probePayload asks for the latest block header without transaction bodies.
// The same bytes go out over every transport.
var probePayload = []byte(`{"jsonrpc":"2.0","method":"eth_getBlockByNumber","params":["latest",false],"id":1}`)

// JSONRPCResponse defines the basic structure for a JSON-RPC response.
type JSONRPCResponse struct {
	ID      interface{}     `json:"id"`
	Jsonrpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError defines the structure for a JSON-RPC error.
type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// blockHeader is the part of an eth_getBlockByNumber result the prober cares about.
type blockHeader struct {
	Number *string `json:"number"`
}
