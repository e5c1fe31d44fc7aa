package identity

import (
	"strings"
)

// Identity is the authenticated subject extracted from a session token.
// Groups carries platform-level group claims; tenant-level authorization
// never travels in the token, it lives in membership records.
type Identity struct {
	Subject string
	Email   string
	Groups  []string
}

// HasGroup reports whether the identity carries a group claim matching
// name. Group names from the provider are not normalized, so the
// comparison is case-insensitive.
func (i *Identity) HasGroup(name string) bool {
	for _, g := range i.Groups {
		if strings.EqualFold(strings.TrimSpace(g), name) {
			return true
		}
	}
	return false
}
