package models

// IdentityAddress is one owner address belonging to an identity, with the
// optional free-text label carried over from the source data.
type IdentityAddress struct {
	ID       string `json:"id"`
	Address  string `json:"address"`
	RawLabel string `json:"label,omitempty"`
}

// ResolvedLabel is the display name and type assigned to one identity
// address. Within one identity no two records share a case-insensitive-equal
// (DisplayName, DisplayType) pair.
type ResolvedLabel struct {
	ID          string `json:"id"`
	Address     string `json:"address"`
	DisplayName string `json:"display_name"`
	DisplayType string `json:"display_type"`
}

// Identity is a human or organizational entity controlling one or more owner
// addresses, as stored by the (out of scope) persistence layer.
type Identity struct {
	Name      string            `json:"name"`
	Addresses []IdentityAddress `json:"addresses"`
}
