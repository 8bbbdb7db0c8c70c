package types

import "github.com/ferretex/storefront-client/pkg/enums"

// User is the authenticated identity carried by the client. Role is always
// normalized to the canonical set at the API boundary.
type User struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  enums.Role `json:"role"`
}
