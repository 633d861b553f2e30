package provider

import (
	"context"

	"github.com/thoreinstein/cairn/internal/configfile"
	"github.com/thoreinstein/cairn/internal/errors"
)

var versionProperty = map[string]any{
	"type":        []any{"integer", "string"},
	"description": "Config version, managed by cairn",
}

func computePeersProperty() map[string]any {
	return map[string]any{
		"type":        "object",
		"description": "Compute peers by name",
		"additionalProperties": map[string]any{
			"type":                 "object",
			"required":             []any{"computeUnits"},
			"additionalProperties": false,
			"properties": map[string]any{
				"computeUnits": map[string]any{
					"type":        "integer",
					"minimum":     1,
					"description": "Compute units the peer provides",
				},
			},
		},
	}
}

func peerList() map[string]any {
	return map[string]any{
		"type":        "array",
		"minItems":    1,
		"uniqueItems": true,
		"items":       map[string]any{"type": "string"},
		"description": "Names of the compute peers serving the offer",
	}
}

func schemaV0() configfile.Schema {
	return configfile.Schema{
		Version: 0,
		Document: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []any{"version", "providerName", "computePeers", "offers"},
			"properties": map[string]any{
				"version":      versionProperty,
				"providerName": map[string]any{"type": "string"},
				"computePeers": computePeersProperty(),
				"offers": map[string]any{
					"type": "object",
					"additionalProperties": map[string]any{
						"type":                 "object",
						"additionalProperties": false,
						"required":             []any{"minPricePerWorkerEpoch", "maxCollateralPerWorker", "computePeers"},
						"properties": map[string]any{
							"minPricePerWorkerEpoch": map[string]any{"type": "number", "exclusiveMinimum": 0},
							"maxCollateralPerWorker": map[string]any{"type": "number", "exclusiveMinimum": 0},
							"computePeers":           peerList(),
						},
					},
				},
				"capacityCommitments": map[string]any{
					"type": "object",
					"additionalProperties": map[string]any{
						"type":                 "object",
						"additionalProperties": false,
						"required":             []any{"duration", "rewardDelegationRate"},
						"properties": map[string]any{
							"duration":             map[string]any{"type": "string"},
							"rewardDelegationRate": map[string]any{"type": "number", "minimum": 0, "maximum": 100},
						},
					},
				},
			},
		},
	}
}

func schemaV1() configfile.Schema {
	return configfile.Schema{
		Version: 1,
		Document: map[string]any{
			"$schema":              "http://json-schema.org/draft-07/schema#",
			"title":                "cairn provider config",
			"description":          "Defines the compute peers, offers and capacity commitments of a provider",
			"type":                 "object",
			"additionalProperties": false,
			"required":             []any{"version", "providerName", "computePeers", "offers"},
			"properties": map[string]any{
				"version": versionProperty,
				"providerName": map[string]any{
					"type":        "string",
					"minLength":   1,
					"description": "Provider name shown on the market",
				},
				"computePeers": computePeersProperty(),
				"offers": map[string]any{
					"type":        "object",
					"description": "Market offers by name",
					"additionalProperties": map[string]any{
						"type":                 "object",
						"additionalProperties": false,
						"required":             []any{"minPricePerCuPerEpoch", "maxCollateralPerWorker", "computePeers"},
						"properties": map[string]any{
							"minPricePerCuPerEpoch": map[string]any{
								"type":             "number",
								"exclusiveMinimum": 0,
								"description":      "Minimum price per compute unit per epoch",
							},
							"maxCollateralPerWorker": map[string]any{
								"type":             "number",
								"exclusiveMinimum": 0,
								"description":      "Maximum collateral per worker",
							},
							"computePeers": peerList(),
						},
					},
				},
				"capacityCommitments": map[string]any{
					"type":        "object",
					"description": "Capacity commitments by compute peer name",
					"additionalProperties": map[string]any{
						"type":                 "object",
						"additionalProperties": false,
						"required":             []any{"duration", "stakerReward"},
						"properties": map[string]any{
							"duration": map[string]any{
								"type":        "string",
								"description": "Commitment duration, e.g. 100 days",
							},
							"stakerReward": map[string]any{
								"type":        "number",
								"minimum":     0,
								"maximum":     100,
								"description": "Percentage of rewards paid to stakers",
							},
						},
					},
				},
			},
		},
	}
}

// migrateV0 prices offers per compute unit and turns the delegation rate
// into the staker's share.
func migrateV0(_ context.Context, cfg map[string]any) (map[string]any, error) {
	if offers, ok := cfg["offers"].(map[string]any); ok {
		for name, raw := range offers {
			offer, ok := raw.(map[string]any)
			if !ok {
				return nil, errors.Newf("offers.%s is not a mapping", name)
			}
			if price, ok := offer["minPricePerWorkerEpoch"]; ok {
				offer["minPricePerCuPerEpoch"] = price
				delete(offer, "minPricePerWorkerEpoch")
			}
		}
	}

	if commitments, ok := cfg["capacityCommitments"].(map[string]any); ok {
		for name, raw := range commitments {
			cc, ok := raw.(map[string]any)
			if !ok {
				return nil, errors.Newf("capacityCommitments.%s is not a mapping", name)
			}
			rate, ok := toFloat(cc["rewardDelegationRate"])
			if !ok {
				return nil, errors.Newf("capacityCommitments.%s.rewardDelegationRate is not a number", name)
			}
			delete(cc, "rewardDelegationRate")
			cc["stakerReward"] = 100 - rate
		}
	}

	return cfg, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
