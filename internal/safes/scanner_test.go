package safes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/blockgroot/signer-wallet-tool/internal/config"
	"github.com/blockgroot/signer-wallet-tool/internal/txservice"
)

func ownedSafesBody(safes ...string) string {
	entries := make([]string, len(safes))
	for i, s := range safes {
		entries[i] = fmt.Sprintf(`{"address":%q,"threshold":2,"owners":[%q,%q]}`, s, ownerOne, ownerTwo)
	}
	return fmt.Sprintf(`{"results":[%s]}`, strings.Join(entries, ","))
}

func TestScan_OwnerOnTwoNetworks(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		switch r.URL.Host {
		case "n1":
			return response(200, ownedSafesBody(walletAddr)), nil
		case "n3":
			return response(200, ownedSafesBody(ownerTwo)), nil
		default:
			return response(404, ""), nil
		}
	})

	scanner := NewScanner(client, testRegistry(), 0)
	result, err := scanner.Scan(context.Background(), ownerOne, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Owned) != 2 {
		t.Fatalf("expected exactly two networks in the result, got %d", len(result.Owned))
	}
	if len(result.Owned[1]) != 1 || len(result.Owned[3]) != 1 {
		t.Errorf("expected one record per network, got %+v", result.Owned)
	}
	if result.Owned[1][0].WalletAddress != walletAddr {
		t.Errorf("unexpected wallet on network 1: %s", result.Owned[1][0].WalletAddress)
	}
	if result.Owned[1][0].Threshold != 2 || result.Owned[1][0].OwnerCount != 2 {
		t.Errorf("unexpected record: %+v", result.Owned[1][0])
	}
	if len(result.Faults) != 0 {
		t.Errorf("expected no faults, got %v", result.Faults)
	}
}

func TestScan_NothingOwnedAnywhere(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		return response(404, ""), nil
	})

	scanner := NewScanner(client, testRegistry(), 0)
	result, err := scanner.Scan(context.Background(), ownerOne, nil)
	if !errors.Is(err, ErrNoWalletsOwned) {
		t.Fatalf("expected ErrNoWalletsOwned, got %v", err)
	}
	if result == nil || len(result.Owned) != 0 {
		t.Errorf("expected an empty result, got %+v", result)
	}
}

func TestScan_FaultOnOneNetworkDoesNotAbort(t *testing.T) {
	var hosts []string
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		hosts = append(hosts, r.URL.Host)
		switch r.URL.Host {
		case "n2":
			return response(500, "boom"), nil
		case "n4":
			return response(200, ownedSafesBody(walletAddr)), nil
		default:
			return response(404, ""), nil
		}
	})

	scanner := NewScanner(client, testRegistry(), 0)
	result, err := scanner.Scan(context.Background(), ownerOne, nil)
	if err != nil {
		t.Fatalf("a single-network fault must not fail the scan: %v", err)
	}

	if len(hosts) != 4 {
		t.Errorf("every probeable network must be visited, got %v", hosts)
	}
	if _, ok := result.Owned[4]; !ok {
		t.Error("network after the faulting one must still be collected")
	}
	faultErr, ok := result.Faults[2]
	if !ok {
		t.Fatal("faulting network must be reported in the fault map")
	}
	if k, _ := txservice.KindOf(faultErr); k != txservice.KindExhausted {
		t.Errorf("expected exhausted fault for network 2, got %v", faultErr)
	}
	if _, ok := result.Owned[2]; ok {
		t.Error("faulting network must not appear in the ownership map")
	}
}

func TestScan_ScopeRestrictsNetworks(t *testing.T) {
	var hosts []string
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		hosts = append(hosts, r.URL.Host)
		return response(200, ownedSafesBody(walletAddr)), nil
	})

	registry := testRegistry()
	scanner := NewScanner(client, registry, 0)
	scope := registry.Probeable()[:2]

	result, err := scanner.Scan(context.Background(), ownerOne, scope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hosts) != 2 {
		t.Errorf("scan must honor the given scope, visited %v", hosts)
	}
	if len(result.Owned) != 2 {
		t.Errorf("expected two networks in the result, got %d", len(result.Owned))
	}
}

func TestScan_PreservesServiceOrder(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		if r.URL.Host == "n1" {
			return response(200, ownedSafesBody(walletAddr, ownerTwo, ownerOne)), nil
		}
		return response(404, ""), nil
	})

	scanner := NewScanner(client, testRegistry(), 0)
	result, err := scanner.Scan(context.Background(), ownerOne, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := result.Owned[1]
	want := []string{walletAddr, ownerTwo, ownerOne}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i, r := range records {
		if r.WalletAddress != want[i] {
			t.Errorf("record %d = %s, want %s (service order must be preserved)", i, r.WalletAddress, want[i])
		}
	}
}

func TestScan_ConfigurationFaultAborts(t *testing.T) {
	calls := 0
	cfg := config.NewConfig()
	client := txservice.New(cfg, &http.Client{Transport: rtFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return response(200, "{}"), nil
	})})

	scanner := NewScanner(client, testRegistry(), 0)
	_, err := scanner.Scan(context.Background(), ownerOne, nil)
	if !txservice.IsConfiguration(err) {
		t.Fatalf("expected configuration fault, got %v", err)
	}
	if calls != 0 {
		t.Errorf("missing credential must abort before any request, got %d calls", calls)
	}
}

func TestScan_InvalidOwnerAddress(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		t.Error("no request should be made for an invalid owner address")
		return response(200, "{}"), nil
	})

	scanner := NewScanner(client, testRegistry(), 0)
	if _, err := scanner.Scan(context.Background(), "nonsense", nil); err == nil {
		t.Fatal("expected an error for a malformed owner address")
	}
}
