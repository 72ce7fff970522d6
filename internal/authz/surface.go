package authz

import "strings"

// portalEquivalents maps back-office paths to their portal counterparts.
var portalEquivalents = map[string]string{
	PathBackOfficeRoot: PathPortalRoot,
	"/tickets":         "/portal/tickets",
	"/tickets/new":     "/portal/tickets/new",
	"/catalog":         "/portal/catalog",
	"/knowledge":       "/portal/knowledge",
}

// PortalEquivalent translates a back-office path into the portal surface.
// Ticket detail paths keep their id. Paths that already belong to the
// portal, and back-office-only areas with no portal counterpart, return
// false.
func PortalEquivalent(path string) (string, bool) {
	if strings.HasPrefix(path, PathPortalRoot) {
		return "", false
	}
	if target, ok := portalEquivalents[path]; ok {
		return target, true
	}
	// only ticket detail pages carry over; aggregate views such as stats
	// and nested resources have no portal counterpart
	if rest, ok := strings.CutPrefix(path, "/tickets/"); ok && rest != "" && rest != "stats" && !strings.Contains(rest, "/") {
		return "/portal/tickets/" + rest, true
	}
	return "", false
}
