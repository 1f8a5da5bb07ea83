// Package safes resolves multisig wallet facts from the transaction indexing
// service across every registered network.
package safes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blockgroot/signer-wallet-tool/internal/addresses"
	"github.com/blockgroot/signer-wallet-tool/internal/logger"
	"github.com/blockgroot/signer-wallet-tool/internal/models"
	"github.com/blockgroot/signer-wallet-tool/internal/networks"
	"github.com/blockgroot/signer-wallet-tool/internal/txservice"
)

// ErrNoWalletFound is returned when every probed network answered with an
// expected-absence outcome: the address is not a known multisig wallet
// anywhere. Infrastructure faults are surfaced instead of this error, since
// they are the more actionable signal.
var ErrNoWalletFound = errors.New("no wallet found on any known network")

// ErrNoWalletsOwned is returned by the scanner when no in-scope network
// reported any owned wallet and no network faulted.
var ErrNoWalletsOwned = errors.New("address owns no wallets on any known network")

// ResolveOptions carries the optional known-chain hint. When the hint
// resolves to a registered network, that network is attempted first.
type ResolveOptions struct {
	NetworkID   int64
	NetworkCode string
}

// Resolver answers "which wallet is this address" across networks.
type Resolver struct {
	client     *txservice.Client
	registry   *networks.Registry
	probeDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error

	// Observer, when set, receives per-network probe events.
	Observer Observer
}

// NewResolver creates an ownership resolver. probeDelay is the pause between
// sequential network probes, keeping the aggregate request rate under the
// service's limit.
func NewResolver(client *txservice.Client, registry *networks.Registry, probeDelay time.Duration) *Resolver {
	return &Resolver{
		client:     client,
		registry:   registry,
		probeDelay: probeDelay,
		sleep:      sleep,
	}
}

func safeInfoURL(n networks.Network, address string) string {
	return fmt.Sprintf("%s/api/v1/safes/%s/", n.Endpoint, address)
}

// Resolve returns the wallet snapshot for address. A hinted network is tried
// first; on expected absence there, or with no hint at all, every probeable
// network is tried sequentially and the first valid snapshot wins.
func (r *Resolver) Resolve(ctx context.Context, address string, opts ResolveOptions) (*models.WalletSnapshot, error) {
	addr, err := addresses.Checksum(address)
	if err != nil {
		return nil, err
	}

	var hintedID int64
	if hinted, ok := r.hintNetwork(opts); ok {
		logger.Debug("Resolving %s on hinted network %s", addr, hinted.DisplayName)
		snapshot, err := r.fetch(ctx, hinted, addr)
		if err == nil {
			return snapshot, nil
		}
		if !txservice.IsExpectedAbsence(err) {
			// Unexpected faults on the hinted network propagate: probing
			// elsewhere cannot fix a bad credential or a rate-limit budget
			// that is already spent.
			return nil, err
		}
		hintedID = hinted.ID
	}

	return r.probe(ctx, addr, hintedID)
}

// hintNetwork maps the options to a registered network, preferring the
// numeric id. An unknown hint is treated as no hint.
func (r *Resolver) hintNetwork(opts ResolveOptions) (networks.Network, bool) {
	if opts.NetworkID != 0 {
		if n, ok := r.registry.ByID(opts.NetworkID); ok && !r.registry.IsExcluded(n.ID) {
			return n, true
		}
	}
	if opts.NetworkCode != "" {
		if n, ok := r.registry.ByCode(opts.NetworkCode); ok && !r.registry.IsExcluded(n.ID) {
			return n, true
		}
	}
	return networks.Network{}, false
}

// probe walks every probeable network in order, stopping at the first valid
// snapshot. Expected-absence outcomes keep the walk going; the first
// unexpected fault is remembered and surfaced if nothing succeeds.
func (r *Resolver) probe(ctx context.Context, addr string, skipID int64) (*models.WalletSnapshot, error) {
	scope := r.registry.Probeable()
	var firstFault error

	probed := 0
	for i, n := range scope {
		if n.ID == skipID {
			continue
		}
		// Pace strictly between the walk's own requests: no delay before the
		// first network actually probed, even when the skipped hint sat at
		// the front of the scope.
		if probed > 0 && r.probeDelay > 0 {
			if err := r.sleep(ctx, r.probeDelay); err != nil {
				return nil, err
			}
		}
		probed++

		notify(r.Observer, ProbeEvent{Network: n, Index: i, Total: len(scope), Started: true})
		snapshot, err := r.fetch(ctx, n, addr)
		if err == nil {
			notify(r.Observer, ProbeEvent{Network: n, Index: i, Total: len(scope), Outcome: OutcomeFound})
			logger.Info("Resolved wallet %s on %s (threshold %d/%d)",
				addr, n.DisplayName, snapshot.Threshold, snapshot.OwnerCount)
			return snapshot, nil
		}

		if txservice.IsConfiguration(err) {
			return nil, err
		}
		if txservice.IsExpectedAbsence(err) {
			notify(r.Observer, ProbeEvent{Network: n, Index: i, Total: len(scope), Outcome: OutcomeAbsent})
			continue
		}

		notify(r.Observer, ProbeEvent{Network: n, Index: i, Total: len(scope), Outcome: OutcomeFault, Err: err})
		logger.Warn("Probe of %s failed on %s: %v", addr, n.DisplayName, err)
		if firstFault == nil {
			firstFault = err
		}
	}

	if firstFault != nil {
		return nil, firstFault
	}
	return nil, ErrNoWalletFound
}

// fetch queries one network and converts the service payload into a
// snapshot with checksummed addresses.
func (r *Resolver) fetch(ctx context.Context, n networks.Network, addr string) (*models.WalletSnapshot, error) {
	var info models.SafeInfoResponse
	if err := r.client.GetJSON(ctx, safeInfoURL(n, addr), &info); err != nil {
		return nil, err
	}

	owners := make([]string, 0, len(info.Owners))
	for _, owner := range info.Owners {
		owners = append(owners, addresses.ChecksumOrOriginal(owner))
	}

	walletAddr := info.Address
	if walletAddr == "" {
		walletAddr = addr
	}

	return &models.WalletSnapshot{
		Address:    addresses.ChecksumOrOriginal(walletAddr),
		NetworkID:  n.ID,
		Threshold:  info.Threshold,
		OwnerCount: len(owners),
		Owners:     owners,
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
