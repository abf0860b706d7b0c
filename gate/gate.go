// Package gate provides the administrative capability check restricting who
// may submit delegated (signed) operations to a registry.
//
// The gate is injected at construction rather than being ambient authority,
// so registries can be composed with different administrators or opened up
// entirely in tests. Transfer and renouncement of the administrator role are
// out of scope.
package gate

import (
	"xdao.co/anchorauth/identity"
	"xdao.co/anchorauth/model"
)

// Gate authorizes a caller for gated operations.
type Gate interface {
	Authorize(caller identity.Address) error
}

// Admin admits exactly one designated administrator identity.
type Admin struct {
	Addr identity.Address
}

func (g Admin) Authorize(caller identity.Address) error {
	if caller != g.Addr {
		return model.NewErrorf(model.ErrUnauthorized, "caller %s is not the administrator", caller)
	}
	return nil
}

// Deny rejects every caller. It is the default when no gate is configured.
type Deny struct{}

func (Deny) Authorize(caller identity.Address) error {
	return model.NewError(model.ErrUnauthorized, "no administrator configured")
}
