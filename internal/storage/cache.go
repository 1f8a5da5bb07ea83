// Package storage is the caller-side scan cache: repeated scans of the same
// owner within the TTL reuse the stored result instead of re-walking every
// network. The core resolver and scanner never touch it.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blockgroot/signer-wallet-tool/internal/models"
)

// cachedScan is the on-disk structure for one owner's scan result.
type cachedScan struct {
	Owner     string                             `json:"owner"`
	Owned     map[int64][]models.OwnershipRecord `json:"owned"`
	UpdatedAt int64                              `json:"updated_at"`
}

// ScanCache stores scan results as JSON files under a data directory, one
// file per owner address.
type ScanCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// GetAppDataDir returns the application data directory, creating it if
// needed.
func GetAppDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	appDataDir := filepath.Join(homeDir, ".signerctl")
	if err := os.MkdirAll(appDataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create app data directory: %w", err)
	}

	return appDataDir, nil
}

// NewScanCache creates a cache rooted at dir with the given TTL.
func NewScanCache(dir string, ttl time.Duration) *ScanCache {
	return &ScanCache{dir: dir, ttl: ttl, now: time.Now}
}

func (c *ScanCache) filePath(owner string) string {
	return filepath.Join(c.dir, fmt.Sprintf("scan_%s.json", strings.ToLower(owner)))
}

// Save stores one owner's scan result, overwriting any previous entry.
func (c *ScanCache) Save(owner string, owned map[int64][]models.OwnershipRecord) error {
	data := cachedScan{
		Owner:     owner,
		Owned:     owned,
		UpdatedAt: c.now().Unix(),
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal scan cache entry: %w", err)
	}

	if err := os.WriteFile(c.filePath(owner), jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write scan cache file: %w", err)
	}

	return nil
}

// Load returns the cached result for owner when a fresh entry exists. The
// second return is false for a missing, expired, or unreadable entry.
func (c *ScanCache) Load(owner string) (map[int64][]models.OwnershipRecord, bool) {
	fileData, err := os.ReadFile(c.filePath(owner))
	if err != nil {
		return nil, false
	}

	var data cachedScan
	if err := json.Unmarshal(fileData, &data); err != nil {
		return nil, false
	}

	if c.ttl > 0 && c.now().Sub(time.Unix(data.UpdatedAt, 0)) > c.ttl {
		return nil, false
	}

	return data.Owned, true
}
