package safes

import (
	"context"
	"fmt"
	"time"

	"github.com/blockgroot/signer-wallet-tool/internal/addresses"
	"github.com/blockgroot/signer-wallet-tool/internal/logger"
	"github.com/blockgroot/signer-wallet-tool/internal/models"
	"github.com/blockgroot/signer-wallet-tool/internal/networks"
	"github.com/blockgroot/signer-wallet-tool/internal/txservice"
)

// ScanResult maps each network where the owner controls at least one wallet
// to the wallets found there, in service order. Networks that faulted are
// reported separately so callers can tell "zero wallets here" from "this
// network was unreachable".
type ScanResult struct {
	Owned  map[int64][]models.OwnershipRecord `json:"owned"`
	Faults map[int64]error                    `json:"-"`
}

// Scanner answers "which wallets does this owner co-sign for" across
// networks.
type Scanner struct {
	client   *txservice.Client
	registry *networks.Registry
	// Shares the resolver's inter-request pacing so repeated scans of the
	// same owner stay under the service's rate limit.
	probeDelay time.Duration

	// Observer, when set, receives per-network probe events.
	Observer Observer
}

// NewScanner creates a reverse ownership scanner.
func NewScanner(client *txservice.Client, registry *networks.Registry, probeDelay time.Duration) *Scanner {
	return &Scanner{
		client:     client,
		registry:   registry,
		probeDelay: probeDelay,
	}
}

func ownedSafesURL(n networks.Network, owner string) string {
	return fmt.Sprintf("%s/api/v2/owners/%s/safes/", n.Endpoint, owner)
}

// Scan queries every network in scope sequentially for wallets owned by
// ownerAddress. A nil scope means every probeable registered network. One
// network's fault never aborts the scan of the rest; it is recorded in the
// result and the walk continues. ErrNoWalletsOwned is returned only when
// every network answered with an expected-absence outcome.
func (s *Scanner) Scan(ctx context.Context, ownerAddress string, scope []networks.Network) (*ScanResult, error) {
	owner, err := addresses.Checksum(ownerAddress)
	if err != nil {
		return nil, err
	}

	if scope == nil {
		scope = s.registry.Probeable()
	}

	result := &ScanResult{
		Owned:  make(map[int64][]models.OwnershipRecord),
		Faults: make(map[int64]error),
	}

	for i, n := range scope {
		if i > 0 && s.probeDelay > 0 {
			if err := sleep(ctx, s.probeDelay); err != nil {
				return nil, err
			}
		}

		notify(s.Observer, ProbeEvent{Network: n, Index: i, Total: len(scope), Started: true})
		records, err := s.fetch(ctx, n, owner)
		switch {
		case err == nil:
			notify(s.Observer, ProbeEvent{Network: n, Index: i, Total: len(scope), Outcome: OutcomeFound})
			logger.Debug("Owner %s controls %d wallets on %s", owner, len(records), n.DisplayName)
			result.Owned[n.ID] = records

		case txservice.IsConfiguration(err):
			// A missing credential cannot be fixed by scanning other
			// networks; abort the whole scan.
			return nil, err

		case txservice.IsExpectedAbsence(err):
			notify(s.Observer, ProbeEvent{Network: n, Index: i, Total: len(scope), Outcome: OutcomeAbsent})

		default:
			notify(s.Observer, ProbeEvent{Network: n, Index: i, Total: len(scope), Outcome: OutcomeFault, Err: err})
			logger.Warn("Scan of %s failed on %s: %v", owner, n.DisplayName, err)
			result.Faults[n.ID] = err
		}
	}

	if len(result.Owned) == 0 && len(result.Faults) == 0 {
		return result, ErrNoWalletsOwned
	}
	return result, nil
}

// fetch queries one network's owners endpoint, preserving the service's
// result order.
func (s *Scanner) fetch(ctx context.Context, n networks.Network, owner string) ([]models.OwnershipRecord, error) {
	var resp models.OwnedSafesResponse
	if err := s.client.GetJSON(ctx, ownedSafesURL(n, owner), &resp); err != nil {
		return nil, err
	}

	records := make([]models.OwnershipRecord, 0, len(resp.Results))
	for _, safe := range resp.Results {
		records = append(records, models.OwnershipRecord{
			WalletAddress: addresses.ChecksumOrOriginal(safe.Address),
			NetworkID:     n.ID,
			Threshold:     safe.Threshold,
			OwnerCount:    len(safe.Owners),
		})
	}
	return records, nil
}
