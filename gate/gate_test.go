package gate

import (
	"testing"

	"xdao.co/anchorauth/identity"
	"xdao.co/anchorauth/model"
)

func TestAdmin_AdmitsOnlyDesignatedCaller(t *testing.T) {
	var admin, other identity.Address
	admin[0] = 0xAD
	other[0] = 0x01

	g := Admin{Addr: admin}
	if err := g.Authorize(admin); err != nil {
		t.Fatalf("administrator rejected: %v", err)
	}
	if err := g.Authorize(other); !model.IsCode(err, model.ErrUnauthorized) {
		t.Fatalf("got %v, want UNAUTHORIZED", err)
	}
}

func TestDeny_RejectsEveryone(t *testing.T) {
	var caller identity.Address
	if err := (Deny{}).Authorize(caller); !model.IsCode(err, model.ErrUnauthorized) {
		t.Fatalf("got %v, want UNAUTHORIZED", err)
	}
}
