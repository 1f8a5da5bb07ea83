package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blockgroot/signer-wallet-tool/internal/config"
	"github.com/blockgroot/signer-wallet-tool/internal/logger"
	"github.com/blockgroot/signer-wallet-tool/internal/models"
	"github.com/blockgroot/signer-wallet-tool/internal/safes"
	"github.com/blockgroot/signer-wallet-tool/internal/services"
	"github.com/blockgroot/signer-wallet-tool/internal/storage"
	"github.com/blockgroot/signer-wallet-tool/internal/tui"
)

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Fatal("Failed to encode output: %v", err)
	}
	fmt.Println(string(data))
}

func newScanCache(cfg *config.Config) *storage.ScanCache {
	dir, err := storage.GetAppDataDir()
	if err != nil {
		logger.Warn("Scan caching disabled: %v", err)
		return nil
	}
	return storage.NewScanCache(dir, cfg.CacheTTL)
}

// scanOutput is the printable form of a scan result, with faults rendered as
// strings.
type scanOutput struct {
	Owner  string                             `json:"owner"`
	Owned  map[int64][]models.OwnershipRecord `json:"owned"`
	Faults map[int64]string                   `json:"faults,omitempty"`
}

func toScanOutput(owner string, result *safes.ScanResult) scanOutput {
	out := scanOutput{Owner: owner, Owned: result.Owned}
	if len(result.Faults) > 0 {
		out.Faults = make(map[int64]string, len(result.Faults))
		for id, err := range result.Faults {
			out.Faults[id] = err.Error()
		}
	}
	return out
}

func main() {
	logger.Init()
	config.LoadEnvironment()

	cfg := config.NewConfig()
	cfg.LoadFromEnvironment()

	var (
		maxRetries int
		retryDelay int
		probeDelay int
	)

	rootCmd := &cobra.Command{
		Use:   "signerctl",
		Short: "Track multisig wallets and signer identities across networks",
		Long: `signerctl resolves multisig wallet ownership facts from the transaction
indexing service across every supported network and assigns stable display
labels to signer identities.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("max-retries") {
				cfg.MaxRetries = maxRetries
			}
			if cmd.Flags().Changed("retry-delay") {
				cfg.RetryDelay = millis(retryDelay)
			}
			if cmd.Flags().Changed("probe-delay") {
				cfg.ProbeDelay = millis(probeDelay)
			}
			return cfg.Validate()
		},
	}

	rootCmd.PersistentFlags().IntVarP(&maxRetries, "max-retries", "r", cfg.MaxRetries, "Maximum request attempts per network")
	rootCmd.PersistentFlags().IntVarP(&retryDelay, "retry-delay", "d", int(cfg.RetryDelay.Milliseconds()), "Base retry backoff in milliseconds")
	rootCmd.PersistentFlags().IntVarP(&probeDelay, "probe-delay", "p", int(cfg.ProbeDelay.Milliseconds()), "Delay between network probes in milliseconds")

	var networkHint string
	resolveCmd := &cobra.Command{
		Use:   "resolve <address>",
		Short: "Resolve a wallet's owners and threshold",
		Long: `Resolve a multisig wallet on its known network when a hint is given, or by
probing every supported network sequentially otherwise.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc := services.NewDirectoryService(cfg, nil)
			snapshot, err := svc.ResolveWallet(context.Background(), args[0], networkHint)
			if err != nil {
				if errors.Is(err, safes.ErrNoWalletFound) {
					logger.Info("No wallet found for %s on any known network", args[0])
					os.Exit(1)
				}
				logger.Fatal("Failed to resolve %s: %v", args[0], err)
			}
			printJSON(snapshot)
		},
	}
	resolveCmd.Flags().StringVarP(&networkHint, "network", "n", "", "Known network hint (chain id or code)")

	var (
		useMonitor bool
		noCache    bool
	)
	scanCmd := &cobra.Command{
		Use:   "scan <owner-address>",
		Short: "Find every wallet an owner address co-signs for",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			owner := args[0]
			svc := services.NewDirectoryService(cfg, newScanCache(cfg))

			if useMonitor {
				runMonitoredScan(svc, owner, !noCache)
				return
			}

			result, err := svc.ScanOwner(context.Background(), owner, !noCache)
			if err != nil {
				if errors.Is(err, safes.ErrNoWalletsOwned) {
					logger.Info("%s owns no wallets on any known network", owner)
					os.Exit(1)
				}
				logger.Fatal("Failed to scan %s: %v", owner, err)
			}
			printJSON(toScanOutput(owner, result))
		},
	}
	scanCmd.Flags().BoolVarP(&useMonitor, "monitor", "m", false, "Show a live per-network progress monitor")
	scanCmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the local scan cache")

	labelCmd := &cobra.Command{
		Use:   "label <identities.json>",
		Short: "Assign display labels to signer identities",
		Long: `Run the label engine over a JSON export of identities, producing a stable,
collision-free (name, type) pair for every owner address.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc := services.NewDirectoryService(cfg, nil)
			labeled, err := svc.LabelIdentitiesFile(args[0])
			if err != nil {
				logger.Fatal("Failed to label identities: %v", err)
			}
			printJSON(labeled)
		},
	}

	networksCmd := &cobra.Command{
		Use:   "networks",
		Short: "List supported networks",
		Run: func(cmd *cobra.Command, args []string) {
			svc := services.NewDirectoryService(cfg, nil)
			registry := svc.Registry()

			type networkRow struct {
				ID          int64  `json:"id"`
				Code        string `json:"code"`
				DisplayName string `json:"display_name"`
				Probeable   bool   `json:"probeable"`
			}
			rows := make([]networkRow, 0)
			for _, n := range registry.All() {
				rows = append(rows, networkRow{
					ID:          n.ID,
					Code:        n.Code,
					DisplayName: n.DisplayName,
					Probeable:   !registry.IsExcluded(n.ID),
				})
			}
			printJSON(rows)
		},
	}

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(labelCmd)
	rootCmd.AddCommand(networksCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Failed to execute command: %v", err)
	}
}

// monitorUI is the part of the probe monitor the scan loop drives.
type monitorUI interface {
	Run() error
	Complete(message string)
}

// scanUnderMonitor runs scan in the background while the monitor owns the
// terminal. It returns only after the scan goroutine has finished, so the
// result is never read while still being written; exiting the monitor early
// (quit key, or Run failing on a non-TTY) cancels the context and any probes
// still pending.
func scanUnderMonitor(ctx context.Context, monitor monitorUI, scan func(context.Context) (*safes.ScanResult, error)) (*safes.ScanResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		result  *safes.ScanResult
		scanErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, scanErr = scan(ctx)
		switch {
		case scanErr == nil:
			monitor.Complete(fmt.Sprintf("Scan finished: wallets on %d networks", len(result.Owned)))
		case errors.Is(scanErr, safes.ErrNoWalletsOwned):
			monitor.Complete("Scan finished: no wallets owned anywhere")
		default:
			monitor.Complete(fmt.Sprintf("Scan failed: %v", scanErr))
		}
	}()

	if err := monitor.Run(); err != nil {
		logger.Error("Monitor failed: %v", err)
	}
	cancel()
	<-done

	return result, scanErr
}

// runMonitoredScan drives the scan under the TUI monitor with file-only
// logging.
func runMonitoredScan(svc *services.DirectoryService, owner string, useCache bool) {
	if err := logger.InitFileOnly(); err != nil {
		logger.Fatal("Failed to switch logging to file-only mode: %v", err)
	}
	defer logger.Close()

	monitor := tui.NewProbeMonitor(owner, svc.Registry().Probeable())
	svc.SetObserver(monitor.Observer())

	result, scanErr := scanUnderMonitor(context.Background(), monitor, func(ctx context.Context) (*safes.ScanResult, error) {
		return svc.ScanOwner(ctx, owner, useCache)
	})

	switch {
	case scanErr == nil:
		printJSON(toScanOutput(owner, result))
	case errors.Is(scanErr, context.Canceled):
		logger.Info("Scan aborted before completion")
	case errors.Is(scanErr, safes.ErrNoWalletsOwned):
		logger.Info("%s owns no wallets on any known network", owner)
	default:
		logger.Fatal("Failed to scan %s: %v", owner, scanErr)
	}
}

func millis(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
