package rpc

import (
	"encoding/json"
	"strconv"
	"strings"

	"chainlist-rpcs/internal/domain/entity"
	domainService "chainlist-rpcs/internal/domain/service"
)

// Compile-time check
var _ domainService.ResultNormalizer = Normalizer{}

// Normalizer extracts block height and latency from probe outcomes.
//
// Any outcome counts as a working endpoint, even one whose payload carries no
// readable block number; such a result has neither height nor latency.
type Normalizer struct{}

// NewNormalizer creates a new result normalizer.
func NewNormalizer() Normalizer {
	return Normalizer{}
}

// Normalize builds the result record for endpoint.
func (Normalizer) Normalize(endpoint entity.Endpoint, outcome entity.ProbeOutcome, ok bool) entity.ProbeResult {
	result := entity.ProbeResult{Endpoint: endpoint}
	if !ok {
		return result
	}
	result.Success = true

	height, found := blockHeight(outcome.Payload)
	if !found {
		return result
	}
	latencyMs := outcome.Latency.Milliseconds()
	result.Height = &height
	result.LatencyMs = &latencyMs
	return result
}

func blockHeight(payload json.RawMessage) (uint64, bool) {
	var resp JSONRPCResponse
	if err := json.Unmarshal(payload, &resp); err != nil || len(resp.Result) == 0 {
		return 0, false
	}

	var header blockHeader
	if err := json.Unmarshal(resp.Result, &header); err != nil || header.Number == nil {
		return 0, false
	}
	return parseQuantity(*header.Number)
}

// parseQuantity parses a hex-encoded quantity such as "0x1a2b".
func parseQuantity(s string) (uint64, bool) {
	digits := strings.TrimSpace(s)
	if len(digits) >= 2 && (digits[:2] == "0x" || digits[:2] == "0X") {
		digits = digits[2:]
	}
	if digits == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
