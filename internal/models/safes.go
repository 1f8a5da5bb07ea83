package models

// SafeInfoResponse is the transaction service payload for
// GET /api/v1/safes/{address}/.
type SafeInfoResponse struct {
	Address         string   `json:"address"`
	Nonce           int64    `json:"nonce"`
	Threshold       int      `json:"threshold"`
	Owners          []string `json:"owners"`
	MasterCopy      string   `json:"masterCopy,omitempty"`
	FallbackHandler string   `json:"fallbackHandler,omitempty"`
	Guard           string   `json:"guard,omitempty"`
	Version         string   `json:"version,omitempty"`
}

// OwnedSafe is one wallet entry in the v2 owners endpoint response.
type OwnedSafe struct {
	Address   string   `json:"address"`
	Threshold int      `json:"threshold"`
	Owners    []string `json:"owners"`
}

// OwnedSafesResponse is the transaction service payload for
// GET /api/v2/owners/{address}/safes/.
type OwnedSafesResponse struct {
	Results []OwnedSafe `json:"results"`
}

// WalletSnapshot is the resolved state of one multisig wallet on one network.
// Produced fresh on every resolution; never persisted by the core. All
// addresses are checksummed.
type WalletSnapshot struct {
	Address    string   `json:"address"`
	NetworkID  int64    `json:"network_id"`
	Threshold  int      `json:"threshold"`
	OwnerCount int      `json:"owner_count"`
	Owners     []string `json:"owners"`
}

// OwnershipRecord is one wallet found for a scanned owner address. The owner
// itself is implicit context of the scan, not embedded here.
type OwnershipRecord struct {
	WalletAddress string `json:"wallet_address"`
	NetworkID     int64  `json:"network_id"`
	Threshold     int    `json:"threshold"`
	OwnerCount    int    `json:"owner_count"`
}
