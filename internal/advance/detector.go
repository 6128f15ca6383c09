package advance

import "strings"

// NeedsAdvance reports whether a funding allocation requires an
// inter-organization cash advance: true when the organization funding the
// allocation differs from the employee's home organization. Pure, no I/O.
func NeedsAdvance(homeOrg, funderOrg string) bool {
	home := strings.TrimSpace(homeOrg)
	funder := strings.TrimSpace(funderOrg)
	if home == "" || funder == "" {
		return false
	}
	return !strings.EqualFold(home, funder)
}
