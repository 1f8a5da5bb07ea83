package safes

import "github.com/blockgroot/signer-wallet-tool/internal/networks"

// ProbeOutcome summarizes what one network probe produced.
type ProbeOutcome int

const (
	// OutcomeFound means the network returned a valid result.
	OutcomeFound ProbeOutcome = iota
	// OutcomeAbsent means the network answered with an expected-absence
	// response (not found / not a wallet).
	OutcomeAbsent
	// OutcomeFault means the probe failed with an unexpected fault.
	OutcomeFault
)

func (o ProbeOutcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeAbsent:
		return "absent"
	case OutcomeFault:
		return "fault"
	default:
		return "unknown"
	}
}

// ProbeEvent is emitted before and after each network probe. Started events
// carry no outcome.
type ProbeEvent struct {
	Network networks.Network
	Index   int
	Total   int
	Started bool
	Outcome ProbeOutcome
	Err     error
}

// Observer receives probe events. It must not block; the resolver and
// scanner call it inline between probes.
type Observer func(ProbeEvent)

func notify(obs Observer, ev ProbeEvent) {
	if obs != nil {
		obs(ev)
	}
}
