package authz

import (
	"bytes"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"

	"xdao.co/anchorauth/anchor"
	"xdao.co/anchorauth/eventlog"
	"xdao.co/anchorauth/gate"
	"xdao.co/anchorauth/hashutil"
	"xdao.co/anchorauth/identity"
	"xdao.co/anchorauth/model"
)

func addr(b byte) identity.Address {
	var a identity.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func mustKey(t *testing.T, seedByte byte) (*btcec.PrivateKey, identity.Address) {
	t.Helper()
	priv, err := identity.PrivateKeyFromBytes(bytes.Repeat([]byte{seedByte}, 32))
	if err != nil {
		t.Fatalf("PrivateKeyFromBytes: %v", err)
	}
	return priv, identity.AddressOf(priv)
}

func sha(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}

// clock is a manually advanced time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

// fixture wires an anchor registry and an authorization registry sharing a
// clock and an event log.
type fixture struct {
	anchors *anchor.Registry
	authz   *Registry
	log     *eventlog.Log
	clk     *clock
	source  identity.Address
	admin   identity.Address
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := &clock{t: time.Unix(1700000000, 0)}
	log := eventlog.New()
	admin := addr(0xAD)
	source := addr(0xA0)
	anchors := anchor.New(source, anchor.Options{
		Gate:   gate.Admin{Addr: admin},
		Events: log,
		Now:    clk.now,
	})
	az := New(addr(0xB0), anchors, Options{
		Gate:   gate.Admin{Addr: admin},
		Events: log,
		Now:    clk.now,
	})
	return &fixture{anchors: anchors, authz: az, log: log, clk: clk, source: source, admin: admin}
}

func (f *fixture) mustAnchor(t *testing.T, owner identity.Address, digest []byte) {
	t.Helper()
	if _, err := f.anchors.Submit(owner, 1, "sha256", digest, nil); err != nil {
		t.Fatalf("anchor Submit: %v", err)
	}
}

func (f *fixture) signFor(t *testing.T, priv *btcec.PrivateKey, owner identity.Address, digest []byte, recipient identity.Address) []byte {
	t.Helper()
	sig, err := identity.Sign(f.authz.MessageHash(owner, digest, recipient), priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return sig
}

func TestAdd_RequiresAnchoredSource(t *testing.T) {
	f := newFixture(t)
	owner, recipient := addr(1), addr(2)
	digest := sha("never-anchored")

	_, err := f.authz.Add(owner, f.source, digest, recipient, "c", f.clk.t.Add(time.Hour))
	if !model.IsCode(err, model.ErrMissingAuthorizationSource) {
		t.Fatalf("got %v, want MISSING_AUTHORIZATION_SOURCE", err)
	}
	if f.authz.CountForOwner(owner) != 0 {
		t.Fatalf("failed add must not mutate state")
	}
}

func TestAdd_DuplicateTripleRejected(t *testing.T) {
	f := newFixture(t)
	owner, r1, r2 := addr(1), addr(2), addr(3)
	digest := sha("doc")
	f.mustAnchor(t, owner, digest)

	if _, err := f.authz.Add(owner, f.source, digest, r1, "first", f.clk.t.Add(time.Hour)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := f.authz.Add(owner, f.source, digest, r1, "again", f.clk.t.Add(time.Hour)); !model.IsCode(err, model.ErrDuplicateAuthorization) {
		t.Fatalf("got %v, want DUPLICATE_AUTHORIZATION", err)
	}

	// A different recipient succeeds independently and leaves the first
	// record untouched.
	if _, err := f.authz.Add(owner, f.source, digest, r2, "other", f.clk.t.Add(time.Hour)); err != nil {
		t.Fatalf("Add second recipient: %v", err)
	}
	if got := f.authz.ForOwnerAt(owner, 0).Comment; got != "first" {
		t.Fatalf("first record mutated: comment %q", got)
	}
	if f.authz.CountForOwner(owner) != 2 {
		t.Fatalf("CountForOwner = %d, want 2", f.authz.CountForOwner(owner))
	}
}

func TestAdd_PopulatesAllIndices(t *testing.T) {
	f := newFixture(t)
	owner, recipient := addr(1), addr(2)
	digest := sha("indexed")
	f.mustAnchor(t, owner, digest)

	global, err := f.authz.Add(owner, f.source, digest, recipient, "c", f.clk.t.Add(time.Hour))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if global != 0 {
		t.Fatalf("global = %d, want 0", global)
	}

	if f.authz.CountForOwner(owner) != 1 {
		t.Fatalf("owner index miss")
	}
	if f.authz.CountForRecipient(recipient) != 1 {
		t.Fatalf("recipient index miss")
	}
	if f.authz.CountForSource(owner, digest) != 1 {
		t.Fatalf("source index miss")
	}
	if !f.authz.HasExisted(owner, recipient, digest) {
		t.Fatalf("uniqueness index miss")
	}

	rec := f.authz.ForRecipientAt(recipient, 0)
	if rec.Owner != owner || rec.Recipient != recipient || rec.Source != f.source {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestQueries_OutOfRangeSentinels(t *testing.T) {
	f := newFixture(t)
	owner, recipient := addr(1), addr(2)
	digest := sha("bounds")

	if !f.authz.ForOwnerAt(owner, 0).IsZero() {
		t.Fatalf("ForOwnerAt on empty index should be the sentinel")
	}
	if !f.authz.ForRecipientAt(recipient, -1).IsZero() {
		t.Fatalf("negative index should be the sentinel")
	}
	if !f.authz.ForSourceAt(owner, digest, 5).IsZero() {
		t.Fatalf("past-end index should be the sentinel")
	}
	if f.authz.HasExisted(owner, recipient, digest) {
		t.Fatalf("HasExisted should be false with no record")
	}
	if f.authz.Validated(owner, recipient, digest) {
		t.Fatalf("Validated should be false with no record")
	}
}

func TestUpdate_MutatesInPlace(t *testing.T) {
	f := newFixture(t)
	owner, recipient := addr(1), addr(2)
	digest := sha("update-me")
	f.mustAnchor(t, owner, digest)

	if _, err := f.authz.Add(owner, f.source, digest, recipient, "before", f.clk.t.Add(time.Hour)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	countBefore := f.authz.CountForOwner(owner)

	newDeadline := f.clk.t.Add(48 * time.Hour)
	if err := f.authz.Update(owner, digest, recipient, "after", newDeadline); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if f.authz.CountForOwner(owner) != countBefore {
		t.Fatalf("Update changed the owner count")
	}
	rec := f.authz.ForOwnerAt(owner, 0)
	if rec.Comment != "after" || !rec.ValidUntil.Equal(newDeadline) {
		t.Fatalf("record not updated in place: %+v", rec)
	}
}

func TestUpdate_MissingTriple(t *testing.T) {
	f := newFixture(t)
	err := f.authz.Update(addr(1), sha("nothing"), addr(2), "c", f.clk.t)
	if !model.IsCode(err, model.ErrAuthorizationNotFound) {
		t.Fatalf("got %v, want AUTHORIZATION_NOT_FOUND", err)
	}
}

func TestRevoke_ImmediatelyInvalidates(t *testing.T) {
	f := newFixture(t)
	owner, recipient := addr(1), addr(2)
	digest := sha("revoke-me")
	f.mustAnchor(t, owner, digest)

	if _, err := f.authz.Add(owner, f.source, digest, recipient, "contract", f.clk.t.Add(time.Hour)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !f.authz.Validated(owner, recipient, digest) {
		t.Fatalf("grant should be active before revocation")
	}

	f.clk.advance(10 * time.Second)
	if err := f.authz.Revoke(owner, digest, recipient, "terminated"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	// The deadline is now, which is not strictly in the future.
	if f.authz.Validated(owner, recipient, digest) {
		t.Fatalf("grant still validated after revocation")
	}
	rec := f.authz.ForOwnerAt(owner, 0)
	if rec.Comment != "terminated" {
		t.Fatalf("revoke comment not applied: %q", rec.Comment)
	}
	if !rec.ValidUntil.Equal(f.clk.t) {
		t.Fatalf("ValidUntil = %v, want revocation time %v", rec.ValidUntil, f.clk.t)
	}
	if f.authz.CountForOwner(owner) != 1 {
		t.Fatalf("revocation must not delete the record")
	}
}

func TestValidated_ExpiresByTimePassing(t *testing.T) {
	f := newFixture(t)
	owner, recipient := addr(1), addr(2)
	digest := sha("expiring")
	f.mustAnchor(t, owner, digest)

	if _, err := f.authz.Add(owner, f.source, digest, recipient, "c", f.clk.t.Add(3600*time.Second)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !f.authz.Validated(owner, recipient, digest) {
		t.Fatalf("grant should be active")
	}

	// No operation in between: validity flips purely by time passing.
	f.clk.advance(3601 * time.Second)
	if f.authz.Validated(owner, recipient, digest) {
		t.Fatalf("grant should have expired")
	}
}

func TestAddSigned_AdvancesNonceAndRejectsReplay(t *testing.T) {
	f := newFixture(t)
	priv, owner := mustKey(t, 0x11)
	recipient := addr(2)
	digest := sha("signed-grant")
	f.mustAnchor(t, owner, digest)

	if f.authz.Nonce(owner) != 0 {
		t.Fatalf("nonce should start at zero")
	}
	sig := f.signFor(t, priv, owner, digest, recipient)

	if _, err := f.authz.AddSigned(f.admin, f.source, owner, digest, recipient, "c", f.clk.t.Add(time.Hour), sig); err != nil {
		t.Fatalf("AddSigned: %v", err)
	}
	if f.authz.Nonce(owner) != 1 {
		t.Fatalf("nonce = %d, want 1", f.authz.Nonce(owner))
	}

	// The identical signature still encodes nonce 0; the preimage now embeds
	// nonce 1, so recovery yields a different address.
	err := f.authz.UpdateSigned(f.admin, owner, digest, recipient, "replay", f.clk.t.Add(time.Hour), sig)
	if !model.IsCode(err, model.ErrSignatureMismatch) {
		t.Fatalf("replay: got %v, want SIGNATURE_MISMATCH", err)
	}
	if f.authz.Nonce(owner) != 1 {
		t.Fatalf("rejected operation advanced the nonce")
	}
}

func TestAddSigned_RequiresStatedOwnerSignature(t *testing.T) {
	f := newFixture(t)
	privMallory, _ := mustKey(t, 0x66)
	_, owner := mustKey(t, 0x11)
	recipient := addr(2)
	digest := sha("forged")
	f.mustAnchor(t, owner, digest)

	sig := f.signFor(t, privMallory, owner, digest, recipient)
	_, err := f.authz.AddSigned(f.admin, f.source, owner, digest, recipient, "c", f.clk.t.Add(time.Hour), sig)
	if !model.IsCode(err, model.ErrSignatureMismatch) {
		t.Fatalf("got %v, want SIGNATURE_MISMATCH", err)
	}
	if f.authz.Nonce(owner) != 0 {
		t.Fatalf("rejected operation advanced the nonce")
	}
}

func TestAddSigned_ExistenceCheckedAgainstStatedOwner(t *testing.T) {
	f := newFixture(t)
	priv, owner := mustKey(t, 0x11)
	recipient := addr(2)
	digest := sha("unanchored-by-owner")
	// Anchored by someone else entirely.
	f.mustAnchor(t, addr(9), digest)

	sig := f.signFor(t, priv, owner, digest, recipient)
	_, err := f.authz.AddSigned(f.admin, f.source, owner, digest, recipient, "c", f.clk.t.Add(time.Hour), sig)
	if !model.IsCode(err, model.ErrMissingAuthorizationSource) {
		t.Fatalf("got %v, want MISSING_AUTHORIZATION_SOURCE", err)
	}
}

func TestSigned_GateRejectsNonAdmin(t *testing.T) {
	f := newFixture(t)
	priv, owner := mustKey(t, 0x11)
	recipient := addr(2)
	digest := sha("gated")
	f.mustAnchor(t, owner, digest)

	sig := f.signFor(t, priv, owner, digest, recipient)
	if _, err := f.authz.AddSigned(addr(0x01), f.source, owner, digest, recipient, "c", f.clk.t.Add(time.Hour), sig); !model.IsCode(err, model.ErrUnauthorized) {
		t.Fatalf("AddSigned: got %v, want UNAUTHORIZED", err)
	}
	if err := f.authz.UpdateSigned(addr(0x01), owner, digest, recipient, "c", f.clk.t, sig); !model.IsCode(err, model.ErrUnauthorized) {
		t.Fatalf("UpdateSigned: got %v, want UNAUTHORIZED", err)
	}
	if err := f.authz.RevokeSigned(addr(0x01), owner, digest, recipient, "c", sig); !model.IsCode(err, model.ErrUnauthorized) {
		t.Fatalf("RevokeSigned: got %v, want UNAUTHORIZED", err)
	}
}

func TestUpdateSignedRevokeSigned_FullDelegatedLifecycle(t *testing.T) {
	f := newFixture(t)
	priv, owner := mustKey(t, 0x33)
	recipient := addr(2)
	digest := sha("lifecycle")
	f.mustAnchor(t, owner, digest)

	sig := f.signFor(t, priv, owner, digest, recipient)
	if _, err := f.authz.AddSigned(f.admin, f.source, owner, digest, recipient, "granted", f.clk.t.Add(time.Hour), sig); err != nil {
		t.Fatalf("AddSigned: %v", err)
	}

	sig = f.signFor(t, priv, owner, digest, recipient)
	if err := f.authz.UpdateSigned(f.admin, owner, digest, recipient, "extended", f.clk.t.Add(2*time.Hour), sig); err != nil {
		t.Fatalf("UpdateSigned: %v", err)
	}
	if got := f.authz.ForOwnerAt(owner, 0).Comment; got != "extended" {
		t.Fatalf("comment = %q, want extended", got)
	}

	sig = f.signFor(t, priv, owner, digest, recipient)
	if err := f.authz.RevokeSigned(f.admin, owner, digest, recipient, "done", sig); err != nil {
		t.Fatalf("RevokeSigned: %v", err)
	}
	if f.authz.Validated(owner, recipient, digest) {
		t.Fatalf("grant still validated after signed revocation")
	}
	if f.authz.Nonce(owner) != 3 {
		t.Fatalf("nonce = %d, want 3 after three accepted operations", f.authz.Nonce(owner))
	}
}

func TestMessageHash_MatchesHashutilLayout(t *testing.T) {
	f := newFixture(t)
	owner, recipient := addr(1), addr(2)
	digest := sha("layout")

	want := hashutil.AuthorizationMessageHash(f.authz.ID().Bytes(), digest, recipient.Bytes(), 0)
	got := f.authz.MessageHash(owner, digest, recipient)
	if !bytes.Equal(got, want) {
		t.Fatalf("MessageHash layout mismatch")
	}
}

func TestEvents_AddedAndUpdatedInOrder(t *testing.T) {
	f := newFixture(t)
	owner, recipient := addr(1), addr(2)
	digest := sha("events")
	f.mustAnchor(t, owner, digest)
	base := f.log.Len()

	if _, err := f.authz.Add(owner, f.source, digest, recipient, "c", f.clk.t.Add(time.Hour)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := f.authz.Update(owner, digest, recipient, "c2", f.clk.t.Add(time.Hour)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := f.authz.Revoke(owner, digest, recipient, "c3"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	events := f.log.Tail(base)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	added, ok := events[0].(eventlog.AuthorizationAdded)
	if !ok {
		t.Fatalf("event 0: unexpected type %T", events[0])
	}
	if added.Owner != owner || added.GlobalIndex != 0 || added.OwnerIndexPos != 0 || added.RecipientIndexPos != 0 {
		t.Fatalf("unexpected AuthorizationAdded %+v", added)
	}
	for i := 1; i < 3; i++ {
		upd, ok := events[i].(eventlog.AuthorizationUpdated)
		if !ok {
			t.Fatalf("event %d: unexpected type %T", i, events[i])
		}
		if upd.Owner != owner || upd.GlobalIndex != 0 {
			t.Fatalf("unexpected AuthorizationUpdated %+v", upd)
		}
	}
}

// TestScenario_EndToEnd walks the documented flow: anchor, grant, natural
// expiry, revocation.
func TestScenario_EndToEnd(t *testing.T) {
	f := newFixture(t)
	owner, recipient := addr(1), addr(2)
	t0 := f.clk.t
	h1 := sha("H1")
	c1 := []byte("C1")

	if _, err := f.anchors.Submit(owner, 1, "sha256", h1, c1); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.anchors.Count(owner) != 1 {
		t.Fatalf("anchor count = %d, want 1", f.anchors.Count(owner))
	}
	rec := f.anchors.At(owner, 0)
	if rec.Category != 1 || rec.HashAlg != "sha256" || !bytes.Equal(rec.Digest, h1) || !bytes.Equal(rec.Content, c1) || !rec.CreatedAt.Equal(t0) {
		t.Fatalf("unexpected anchor record %+v", rec)
	}

	if _, err := f.authz.Add(owner, f.source, h1, recipient, "contract", t0.Add(3600*time.Second)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if f.authz.CountForOwner(owner) != 1 {
		t.Fatalf("authorization count = %d, want 1", f.authz.CountForOwner(owner))
	}
	if !f.authz.Validated(owner, recipient, h1) {
		t.Fatalf("grant should be active at t0")
	}

	f.clk.advance(10 * time.Second)
	if err := f.authz.Revoke(owner, h1, recipient, "terminated"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if f.authz.Validated(owner, recipient, h1) {
		t.Fatalf("grant should be invalid immediately after revocation")
	}
	got := f.authz.ForOwnerAt(owner, 0)
	if got.Comment != "terminated" || !got.ValidUntil.Equal(t0.Add(10*time.Second)) {
		t.Fatalf("unexpected record after revocation: %+v", got)
	}

	f.clk.t = t0.Add(3601 * time.Second)
	if f.authz.Validated(owner, recipient, h1) {
		t.Fatalf("grant should remain invalid at t0+3601")
	}
}
