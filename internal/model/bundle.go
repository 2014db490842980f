package model

import "fmt"

// Bundle is a purchase option that fixes ticket type, price and how many
// exhibitions must be selected.
type Bundle struct {
	Code       string     `json:"code"`
	Label      string     `json:"label"`
	Type       TicketType `json:"ticket_type"`
	Price      float64    `json:"price"`
	Selections int        `json:"selections"`
}

// Bundles lists the purchase options in display order.
var Bundles = []Bundle{
	{Code: "one_exhibition", Label: "1 Exhibition (200 AED)", Type: ExhibitionPass, Price: 200, Selections: 1},
	{Code: "two_exhibitions", Label: "2 Exhibitions (400 AED)", Type: ExhibitionPass, Price: 400, Selections: 2},
	{Code: "all_access", Label: "All-Access (500 AED)", Type: AllAccessPass, Price: AllAccessPrice, Selections: 0},
}

// ExhibitionUpgradePrice is charged per exhibition added to a pass.
const ExhibitionUpgradePrice = 200.0

// LookupBundle finds a bundle by code.
func LookupBundle(code string) (Bundle, bool) {
	for _, b := range Bundles {
		if b.Code == code {
			return b, true
		}
	}
	return Bundle{}, false
}

// CheckSelection verifies the selection shape for the bundle: the right
// number of distinct exhibitions, each known to the catalog.
func (b Bundle) CheckSelection(selected []string, known func(string) bool) error {
	if b.Type == AllAccessPass {
		return nil
	}
	seen := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		if !known(s) {
			return fmt.Errorf("unknown exhibition %q", s)
		}
		seen[s] = struct{}{}
	}
	if len(seen) != b.Selections || len(selected) != b.Selections {
		return fmt.Errorf("select exactly %d exhibition(s)", b.Selections)
	}
	return nil
}

// UpgradeCost quotes an upgrade: all-access costs the difference to the
// all-access price, otherwise each added exhibition costs a flat fee.
func UpgradeCost(current Ticket, toAllAccess bool, added int) float64 {
	if toAllAccess {
		return AllAccessPrice - current.Price
	}
	return ExhibitionUpgradePrice * float64(added)
}
