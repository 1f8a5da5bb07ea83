// Package networks holds the static directory of blockchain networks the
// transaction indexing service knows about. The registry is built once at
// startup and read-only afterwards; it is injected into the resolver and
// scanner rather than living as process-wide state.
package networks

import "fmt"

// Network describes one blockchain network and its indexing service endpoint.
type Network struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	Endpoint    string `json:"endpoint"`
}

// Registry is an immutable lookup table of networks.
type Registry struct {
	ordered  []Network
	byID     map[int64]Network
	byCode   map[string]Network
	excluded map[int64]bool
}

// serviceEndpoint builds the indexing service base URL for a network code.
func serviceEndpoint(code string) string {
	return fmt.Sprintf("https://safe-transaction-%s.safe.global", code)
}

// excludedNetworkIDs lists networks that are registered (so identities can
// reference them) but have no public indexing endpoint. They are skipped
// entirely during probing and scanning.
var excludedNetworkIDs = map[int64]bool{
	250:  true, // Fantom
	1284: true, // Moonbeam
}

// NewRegistry builds a registry from an explicit network list. Later entries
// with a duplicate ID are ignored; the first network registered for a code
// wins the code lookup, since codes need not be unique across networks that
// share a service family.
func NewRegistry(nets []Network, excluded map[int64]bool) *Registry {
	r := &Registry{
		byID:     make(map[int64]Network, len(nets)),
		byCode:   make(map[string]Network, len(nets)),
		excluded: make(map[int64]bool, len(excluded)),
	}

	for _, n := range nets {
		if _, exists := r.byID[n.ID]; exists {
			continue
		}
		r.byID[n.ID] = n
		r.ordered = append(r.ordered, n)
		if _, exists := r.byCode[n.Code]; !exists {
			r.byCode[n.Code] = n
		}
	}

	for id := range excluded {
		r.excluded[id] = true
	}

	return r
}

// DefaultRegistry returns the registry of all networks with a known instance
// of the transaction indexing service, plus the registered-but-unsupported
// networks in the exclusion list.
func DefaultRegistry() *Registry {
	return NewRegistry([]Network{
		{ID: 1, Code: "mainnet", DisplayName: "Ethereum", Endpoint: serviceEndpoint("mainnet")},
		{ID: 10, Code: "optimism", DisplayName: "Optimism", Endpoint: serviceEndpoint("optimism")},
		{ID: 56, Code: "bsc", DisplayName: "BNB Smart Chain", Endpoint: serviceEndpoint("bsc")},
		{ID: 100, Code: "gnosis-chain", DisplayName: "Gnosis Chain", Endpoint: serviceEndpoint("gnosis-chain")},
		{ID: 137, Code: "polygon", DisplayName: "Polygon", Endpoint: serviceEndpoint("polygon")},
		{ID: 250, Code: "fantom", DisplayName: "Fantom", Endpoint: ""},
		{ID: 324, Code: "zksync", DisplayName: "zkSync Era", Endpoint: serviceEndpoint("zksync")},
		{ID: 1284, Code: "moonbeam", DisplayName: "Moonbeam", Endpoint: ""},
		{ID: 8453, Code: "base", DisplayName: "Base", Endpoint: serviceEndpoint("base")},
		{ID: 42161, Code: "arbitrum", DisplayName: "Arbitrum One", Endpoint: serviceEndpoint("arbitrum")},
		{ID: 43114, Code: "avalanche", DisplayName: "Avalanche", Endpoint: serviceEndpoint("avalanche")},
		{ID: 42220, Code: "celo", DisplayName: "Celo", Endpoint: serviceEndpoint("celo")},
		{ID: 11155111, Code: "sepolia", DisplayName: "Sepolia", Endpoint: serviceEndpoint("sepolia")},
	}, excludedNetworkIDs)
}

// ByID looks up a network by chain identifier.
func (r *Registry) ByID(id int64) (Network, bool) {
	n, ok := r.byID[id]
	return n, ok
}

// ByCode looks up a network by its service URL code.
func (r *Registry) ByCode(code string) (Network, bool) {
	n, ok := r.byCode[code]
	return n, ok
}

// All returns every registered network in registration order.
func (r *Registry) All() []Network {
	out := make([]Network, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Probeable returns the networks eligible for probing and scanning:
// everything registered minus the exclusion list, in registration order.
func (r *Registry) Probeable() []Network {
	out := make([]Network, 0, len(r.ordered))
	for _, n := range r.ordered {
		if !r.excluded[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

// IsExcluded reports whether the network has no public indexing endpoint.
func (r *Registry) IsExcluded(id int64) bool {
	return r.excluded[id]
}
