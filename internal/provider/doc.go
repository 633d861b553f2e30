// Package provider manages the provider config file, provider.yaml.
//
// A provider config declares the compute peers a provider runs, the offers
// it publishes to the market and the capacity commitments of each peer:
//
//	version: 1
//	providerName: acme
//	computePeers:
//	  peer-0:
//	    computeUnits: 32
//	offers:
//	  default:
//	    minPricePerCuPerEpoch: 0.33
//	    maxCollateralPerWorker: 1
//	    computePeers: [peer-0]
//	capacityCommitments:
//	  peer-0:
//	    duration: 100 days
//	    stakerReward: 20
//
// Version 0 files priced offers per worker and stored the share of rewards
// the provider delegates; they are migrated on load.
package provider
