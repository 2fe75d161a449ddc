package chainlist

import (
	dto "chainlist-rpcs/internal/adapter/storage/chainlist/dto"
	"chainlist-rpcs/internal/domain/entity"

	"go.uber.org/zap"
)

// mapNetworkType converts a raw DTO network type to its domain entity counterpart.
func mapNetworkType(rawType dto.NetworkTypeRaw) entity.NetworkType {
	switch rawType {
	case dto.NetworkMainnetRaw:
		return entity.NetworkMainnet
	case dto.NetworkTestnetRaw:
		return entity.NetworkTestnet
	default:
		return entity.NetworkType(rawType)
	}
}

// toDomainEndpoints resolves each raw RPC to an endpoint. Unsupported or malformed URLs are dropped,
// duplicates keep their first position. Placeholder URLs are kept so they show up as not working.
func toDomainEndpoints(chainID int64, rawRPCs []dto.RPCRaw, logger *zap.Logger) []entity.Endpoint {
	if rawRPCs == nil {
		return nil
	}
	endpoints := make([]entity.Endpoint, 0, len(rawRPCs))
	seen := make(map[entity.RPCURL]struct{}, len(rawRPCs))
	for _, raw := range rawRPCs {
		endpoint, err := entity.NewEndpoint(raw.URL)
		if err != nil {
			if logger != nil {
				logger.Warn("Skipping invalid RPC URL during mapping",
					zap.String("rawUrl", raw.URL),
					zap.Int64("chainId", chainID),
					zap.Error(err))
			}
			continue
		}
		if _, dup := seen[endpoint.URL]; dup {
			continue
		}
		seen[endpoint.URL] = struct{}{}
		endpoints = append(endpoints, endpoint)
	}
	return endpoints
}

// toDomainChains converts a slice of raw DTO chain representations to a slice of domain entity chains.
func toDomainChains(rawChains []dto.ChainRaw, logger *zap.Logger) []entity.Chain {
	if rawChains == nil {
		return nil
	}
	domainChains := make([]entity.Chain, 0, len(rawChains))
	for _, raw := range rawChains {
		domainChains = append(domainChains, entity.Chain{
			Name:  raw.Name,
			Chain: raw.Chain,
			RPC:   toDomainEndpoints(raw.ChainID, raw.RPC, logger),
			Currency: entity.Currency{
				Name:     raw.Currency.Name,
				Symbol:   raw.Currency.Symbol,
				Decimals: raw.Currency.Decimals,
			},
			InfoURL:   raw.InfoURL,
			ShortName: raw.ShortName,
			ChainID:   raw.ChainID,
			NetworkID: raw.NetworkID,
			Network:   mapNetworkType(raw.Network),
			RedFlags:  raw.RedFlags,
		})
	}
	return domainChains
}
