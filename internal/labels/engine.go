// Package labels assigns deterministic, collision-free display labels to the
// owner addresses of one identity. Free-text labels in the source data are
// noisy (mixed casing, underscores, parenthetical qualifiers, embedded
// account numbers); the engine normalizes them without ever collapsing two
// different addresses into the same displayed name-plus-role.
package labels

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/blockgroot/signer-wallet-tool/internal/addresses"
	"github.com/blockgroot/signer-wallet-tool/internal/models"
)

// typeKeywords is the priority-ordered extractor table. Multiple keywords can
// co-occur in one noisy label ("Ledger account 2"); only the first match
// wins. The account pattern has no display form because account numbers are
// assigned sequentially by the engine, never inherited from the label.
var typeKeywords = []struct {
	re      *regexp.Regexp
	display string
	account bool
}{
	{re: regexp.MustCompile(`(?i)hot[\s_-]*wallet`), display: "Hot Wallet"},
	{re: regexp.MustCompile(`(?i)hardware[\s_-]*wallet`), display: "Hardware Wallet"},
	{re: regexp.MustCompile(`(?i)ledger`), display: "Ledger"},
	{re: regexp.MustCompile(`(?i)account[\s_-]*\d+`), account: true},
	{re: regexp.MustCompile(`(?i)operator`), display: "Operator"},
	{re: regexp.MustCompile(`(?i)proposer`), display: "Proposer"},
}

type extraction struct {
	name      string
	typ       string
	isAccount bool
}

// extract pulls the highest-priority keyword out of a free-text label. The
// remainder, with separators stripped and whitespace collapsed, becomes the
// candidate name.
func extract(s string) extraction {
	for _, kw := range typeKeywords {
		loc := kw.re.FindStringIndex(s)
		if loc == nil {
			continue
		}
		return extraction{
			name:      cleanName(s[:loc[0]] + " " + s[loc[1]:]),
			typ:       kw.display,
			isAccount: kw.account,
		}
	}
	return extraction{name: cleanName(s)}
}

// cleanName strips separator characters left behind by keyword removal and
// collapses runs of whitespace.
func cleanName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '(', ')', '[', ']', ',', ':':
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

type candidate struct {
	id      string
	address string
	name    string
	typ     string // non-account explicit type, empty for group B
}

// Assign produces one ResolvedLabel per input address. It is total (never
// fails, for any input), deterministic, and guarantees that no two outputs
// for one identity share a case-insensitive-equal (DisplayName, DisplayType)
// pair. Output is ordered by address ascending.
func Assign(identityBaseName string, addrs []models.IdentityAddress) []models.ResolvedLabel {
	base := extract(identityBaseName)
	baseName := base.name
	if baseName == "" {
		baseName = strings.Join(strings.Fields(identityBaseName), " ")
	}
	// An account-number match on the identity's own base name carries no
	// type: sequence numbers are the engine's to assign.
	baseType := ""
	if !base.isAccount {
		baseType = base.typ
	}

	var explicit, sequential []candidate
	for _, a := range addrs {
		c := candidate{
			id:      a.ID,
			address: addresses.ChecksumOrOriginal(a.Address),
			name:    baseName,
			typ:     baseType,
		}

		if strings.TrimSpace(a.RawLabel) != "" {
			ext := extract(a.RawLabel)
			if ext.name != "" {
				c.name = ext.name
			}
			if ext.isAccount {
				// The label's own type wins over the base type even when it
				// is an account number, which sends the address to the
				// sequential group.
				c.typ = ""
			} else if ext.typ != "" {
				c.typ = ext.typ
			}
		}

		if c.typ != "" {
			explicit = append(explicit, c)
		} else {
			sequential = append(sequential, c)
		}
	}

	// Ordering is plain byte order over the canonicalized address, so the
	// checksum casing is part of the sort and sequence numbers never depend
	// on how the caller happened to case the input.
	sort.Slice(explicit, func(i, j int) bool { return explicit[i].address < explicit[j].address })
	sort.Slice(sequential, func(i, j int) bool { return sequential[i].address < sequential[j].address })

	taken := make(map[string]bool, len(addrs))
	pairKey := func(name, typ string) string {
		return strings.ToLower(name) + "\x00" + strings.ToLower(typ)
	}
	counter := 1
	nextSeq := func() int {
		n := counter
		counter++
		return n
	}

	out := make([]models.ResolvedLabel, 0, len(addrs))

	// Explicitly typed addresses keep their type; duplicates within the
	// identity are disambiguated with the shared, monotonic sequence
	// counter.
	for _, c := range explicit {
		typ := c.typ
		for taken[pairKey(c.name, typ)] {
			typ = fmt.Sprintf("%s Account %d", c.typ, nextSeq())
		}
		taken[pairKey(c.name, typ)] = true
		out = append(out, models.ResolvedLabel{
			ID:          c.id,
			Address:     c.address,
			DisplayName: c.name,
			DisplayType: typ,
		})
	}

	// Everything else gets the next free sequence number.
	for _, c := range sequential {
		var typ string
		for {
			typ = fmt.Sprintf("Account %d", nextSeq())
			if !taken[pairKey(c.name, typ)] {
				break
			}
		}
		taken[pairKey(c.name, typ)] = true
		out = append(out, models.ResolvedLabel{
			ID:          c.id,
			Address:     c.address,
			DisplayName: c.name,
			DisplayType: typ,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}
