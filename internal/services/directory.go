// Package services wires the core components together for the CLI: one
// composition root owning the config, query client, registry, resolver,
// scanner, label engine, and the caller-side scan cache.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/blockgroot/signer-wallet-tool/internal/config"
	"github.com/blockgroot/signer-wallet-tool/internal/labels"
	"github.com/blockgroot/signer-wallet-tool/internal/logger"
	"github.com/blockgroot/signer-wallet-tool/internal/models"
	"github.com/blockgroot/signer-wallet-tool/internal/networks"
	"github.com/blockgroot/signer-wallet-tool/internal/safes"
	"github.com/blockgroot/signer-wallet-tool/internal/storage"
	"github.com/blockgroot/signer-wallet-tool/internal/txservice"
)

// DirectoryService answers wallet, ownership, and labeling questions for the
// CLI layer.
type DirectoryService struct {
	cfg      *config.Config
	registry *networks.Registry
	resolver *safes.Resolver
	scanner  *safes.Scanner
	cache    *storage.ScanCache
}

// NewDirectoryService builds the service with all dependencies. A nil cache
// disables scan caching.
func NewDirectoryService(cfg *config.Config, cache *storage.ScanCache) *DirectoryService {
	registry := networks.DefaultRegistry()
	client := txservice.New(cfg, nil)

	return &DirectoryService{
		cfg:      cfg,
		registry: registry,
		resolver: safes.NewResolver(client, registry, cfg.ProbeDelay),
		scanner:  safes.NewScanner(client, registry, cfg.ProbeDelay),
		cache:    cache,
	}
}

// Registry exposes the network directory for listing commands.
func (s *DirectoryService) Registry() *networks.Registry {
	return s.registry
}

// SetObserver forwards probe events from both the resolver and the scanner,
// for the TUI monitor.
func (s *DirectoryService) SetObserver(obs safes.Observer) {
	s.resolver.Observer = obs
	s.scanner.Observer = obs
}

// ResolveWallet resolves one wallet address. networkHint may be empty, a
// numeric chain id, or a network code.
func (s *DirectoryService) ResolveWallet(ctx context.Context, address, networkHint string) (*models.WalletSnapshot, error) {
	opts := safes.ResolveOptions{}
	if networkHint != "" {
		if id, err := strconv.ParseInt(networkHint, 10, 64); err == nil {
			opts.NetworkID = id
		} else {
			opts.NetworkCode = networkHint
		}
	}

	return s.resolver.Resolve(ctx, address, opts)
}

// ScanOwner scans every probeable network for wallets co-signed by owner,
// consulting the cache first unless useCache is false. Only fault-free scans
// are cached, so a cached result never hides an unreachable network.
func (s *DirectoryService) ScanOwner(ctx context.Context, owner string, useCache bool) (*safes.ScanResult, error) {
	if useCache && s.cache != nil {
		if owned, ok := s.cache.Load(owner); ok {
			logger.Debug("Using cached scan result for %s", owner)
			return &safes.ScanResult{Owned: owned, Faults: map[int64]error{}}, nil
		}
	}

	result, err := s.scanner.Scan(ctx, owner, nil)
	if err != nil {
		return result, err
	}

	if s.cache != nil && len(result.Faults) == 0 {
		if err := s.cache.Save(owner, result.Owned); err != nil {
			logger.Warn("Failed to cache scan result for %s: %v", owner, err)
		}
	}

	return result, nil
}

// LabeledIdentity pairs an identity with its resolved labels.
type LabeledIdentity struct {
	Name   string                 `json:"name"`
	Labels []models.ResolvedLabel `json:"labels"`
}

// LabelIdentitiesFile runs the label engine over every identity in a JSON
// file of the persistence layer's export format.
func (s *DirectoryService) LabelIdentitiesFile(path string) ([]LabeledIdentity, error) {
	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read identities file: %w", err)
	}

	var identities []models.Identity
	if err := json.Unmarshal(fileData, &identities); err != nil {
		return nil, fmt.Errorf("failed to parse identities file: %w", err)
	}

	out := make([]LabeledIdentity, 0, len(identities))
	for _, identity := range identities {
		out = append(out, LabeledIdentity{
			Name:   identity.Name,
			Labels: labels.Assign(identity.Name, identity.Addresses),
		})
	}

	logger.Info("Assigned labels for %d identities", len(out))
	return out, nil
}
