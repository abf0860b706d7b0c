package grpcregistry

import (
	"context"
	"encoding/hex"
	"strconv"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"xdao.co/anchorauth/anchor"
	"xdao.co/anchorauth/authz"
	"xdao.co/anchorauth/identity"
	"xdao.co/anchorauth/model"
)

// Server serves the Registry gRPC service over a pair of in-process
// registries. The daemon's own identity is used as the submitting caller for
// every delegated mutation, so the registries' gates should admit it.
type Server struct {
	UnimplementedRegistryServer

	Anchors *anchor.Registry
	Authz   *authz.Registry

	// Caller is the identity delegated mutations are submitted under.
	Caller identity.Address
}

// Wire conventions shared by every method: binary fields are lowercase hex
// (addresses with the 0x prefix), timestamps are unix seconds, and nonces are
// decimal strings so they survive the float64 value type exactly.

func field(in *structpb.Struct, key string) (*structpb.Value, bool) {
	if in == nil {
		return nil, false
	}
	v, ok := in.GetFields()[key]
	return v, ok
}

func stringField(in *structpb.Struct, key string) (string, error) {
	v, ok := field(in, key)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "missing field %q", key)
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "field %q is not a string", key)
	}
	return s.StringValue, nil
}

func optStringField(in *structpb.Struct, key string) string {
	v, ok := field(in, key)
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

func numberField(in *structpb.Struct, key string) (float64, error) {
	v, ok := field(in, key)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "missing field %q", key)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "field %q is not a number", key)
	}
	return n.NumberValue, nil
}

func hexField(in *structpb.Struct, key string) ([]byte, error) {
	s, err := stringField(in, key)
	if err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "field %q is not hex: %v", key, err)
	}
	return b, nil
}

func optHexField(in *structpb.Struct, key string) ([]byte, error) {
	if _, ok := field(in, key); !ok {
		return nil, nil
	}
	return hexField(in, key)
}

func addrField(in *structpb.Struct, key string) (identity.Address, error) {
	s, err := stringField(in, key)
	if err != nil {
		return identity.Zero, err
	}
	a, err := identity.ParseAddress(s)
	if err != nil {
		return identity.Zero, status.Errorf(codes.InvalidArgument, "field %q: %v", key, err)
	}
	return a, nil
}

func timeField(in *structpb.Struct, key string) (time.Time, error) {
	n, err := numberField(in, key)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(n), 0), nil
}

func unixOrZero(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.Unix())
}

// mapErr converts registry errors to gRPC statuses. The status message keeps
// the "CODE: message" rendering so clients can reconstruct the typed error.
func mapErr(err error) error {
	code := codes.Internal
	switch model.Code(err) {
	case model.ErrInvalidInput:
		code = codes.InvalidArgument
	case model.ErrDuplicateAnchor, model.ErrDuplicateAuthorization:
		code = codes.AlreadyExists
	case model.ErrMissingAuthorizationSource:
		code = codes.FailedPrecondition
	case model.ErrAuthorizationNotFound:
		code = codes.NotFound
	case model.ErrSignatureMismatch:
		code = codes.Unauthenticated
	case model.ErrOwnershipMismatch, model.ErrRecipientMismatch, model.ErrUnauthorized:
		code = codes.PermissionDenied
	}
	return status.Error(code, err.Error())
}

func respond(fields map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return out, nil
}

func anchorRecordFields(rec model.AnchorRecord) map[string]interface{} {
	return map[string]interface{}{
		"category":  float64(rec.Category),
		"hashAlg":   rec.HashAlg,
		"digest":    hex.EncodeToString(rec.Digest),
		"content":   hex.EncodeToString(rec.Content),
		"createdAt": unixOrZero(rec.CreatedAt),
	}
}

func authorizationRecordFields(rec model.AuthorizationRecord) map[string]interface{} {
	return map[string]interface{}{
		"source":     rec.Source.Hex(),
		"digest":     hex.EncodeToString(rec.Digest),
		"owner":      rec.Owner.Hex(),
		"recipient":  rec.Recipient.Hex(),
		"comment":    rec.Comment,
		"createdAt":  unixOrZero(rec.CreatedAt),
		"validUntil": unixOrZero(rec.ValidUntil),
	}
}

func (s *Server) SubmitAnchorSigned(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	category, err := numberField(in, "category")
	if err != nil {
		return nil, err
	}
	hashAlg, err := stringField(in, "hashAlg")
	if err != nil {
		return nil, err
	}
	digest, err := hexField(in, "digest")
	if err != nil {
		return nil, err
	}
	content, err := optHexField(in, "content")
	if err != nil {
		return nil, err
	}
	sig, err := hexField(in, "signature")
	if err != nil {
		return nil, err
	}

	idx, err := s.Anchors.SubmitSigned(s.Caller, int(category), hashAlg, digest, content, sig)
	if err != nil {
		return nil, mapErr(err)
	}
	return respond(map[string]interface{}{"index": float64(idx)})
}

func (s *Server) AnchorCount(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	owner, err := addrField(in, "owner")
	if err != nil {
		return nil, err
	}
	return respond(map[string]interface{}{"count": float64(s.Anchors.Count(owner))})
}

func (s *Server) AnchorAt(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	owner, err := addrField(in, "owner")
	if err != nil {
		return nil, err
	}
	index, err := numberField(in, "index")
	if err != nil {
		return nil, err
	}
	return respond(anchorRecordFields(s.Anchors.At(owner, int(index))))
}

func (s *Server) AnchorHasExisted(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	owner, err := addrField(in, "owner")
	if err != nil {
		return nil, err
	}
	digest, err := hexField(in, "digest")
	if err != nil {
		return nil, err
	}
	return respond(map[string]interface{}{"exists": s.Anchors.HasExisted(owner, digest)})
}

func (s *Server) AddAuthorizationSigned(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	source, err := addrField(in, "source")
	if err != nil {
		return nil, err
	}
	owner, err := addrField(in, "owner")
	if err != nil {
		return nil, err
	}
	digest, err := hexField(in, "digest")
	if err != nil {
		return nil, err
	}
	recipient, err := addrField(in, "recipient")
	if err != nil {
		return nil, err
	}
	validUntil, err := timeField(in, "validUntil")
	if err != nil {
		return nil, err
	}
	sig, err := hexField(in, "signature")
	if err != nil {
		return nil, err
	}

	global, err := s.Authz.AddSigned(s.Caller, source, owner, digest, recipient, optStringField(in, "comment"), validUntil, sig)
	if err != nil {
		return nil, mapErr(err)
	}
	return respond(map[string]interface{}{"index": float64(global)})
}

func (s *Server) UpdateAuthorizationSigned(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	owner, err := addrField(in, "owner")
	if err != nil {
		return nil, err
	}
	digest, err := hexField(in, "digest")
	if err != nil {
		return nil, err
	}
	recipient, err := addrField(in, "recipient")
	if err != nil {
		return nil, err
	}
	validUntil, err := timeField(in, "validUntil")
	if err != nil {
		return nil, err
	}
	sig, err := hexField(in, "signature")
	if err != nil {
		return nil, err
	}

	if err := s.Authz.UpdateSigned(s.Caller, owner, digest, recipient, optStringField(in, "comment"), validUntil, sig); err != nil {
		return nil, mapErr(err)
	}
	return respond(map[string]interface{}{})
}

func (s *Server) RevokeAuthorizationSigned(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	owner, err := addrField(in, "owner")
	if err != nil {
		return nil, err
	}
	digest, err := hexField(in, "digest")
	if err != nil {
		return nil, err
	}
	recipient, err := addrField(in, "recipient")
	if err != nil {
		return nil, err
	}
	sig, err := hexField(in, "signature")
	if err != nil {
		return nil, err
	}

	if err := s.Authz.RevokeSigned(s.Caller, owner, digest, recipient, optStringField(in, "comment"), sig); err != nil {
		return nil, mapErr(err)
	}
	return respond(map[string]interface{}{})
}

func (s *Server) AuthorizationCountForOwner(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	owner, err := addrField(in, "owner")
	if err != nil {
		return nil, err
	}
	return respond(map[string]interface{}{"count": float64(s.Authz.CountForOwner(owner))})
}

func (s *Server) AuthorizationForOwnerAt(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	owner, err := addrField(in, "owner")
	if err != nil {
		return nil, err
	}
	index, err := numberField(in, "index")
	if err != nil {
		return nil, err
	}
	return respond(authorizationRecordFields(s.Authz.ForOwnerAt(owner, int(index))))
}

func (s *Server) AuthorizationCountForRecipient(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	recipient, err := addrField(in, "recipient")
	if err != nil {
		return nil, err
	}
	return respond(map[string]interface{}{"count": float64(s.Authz.CountForRecipient(recipient))})
}

func (s *Server) AuthorizationForRecipientAt(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	recipient, err := addrField(in, "recipient")
	if err != nil {
		return nil, err
	}
	index, err := numberField(in, "index")
	if err != nil {
		return nil, err
	}
	return respond(authorizationRecordFields(s.Authz.ForRecipientAt(recipient, int(index))))
}

func (s *Server) AuthorizationCountForSource(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	owner, err := addrField(in, "owner")
	if err != nil {
		return nil, err
	}
	digest, err := hexField(in, "digest")
	if err != nil {
		return nil, err
	}
	return respond(map[string]interface{}{"count": float64(s.Authz.CountForSource(owner, digest))})
}

func (s *Server) AuthorizationForSourceAt(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	owner, err := addrField(in, "owner")
	if err != nil {
		return nil, err
	}
	digest, err := hexField(in, "digest")
	if err != nil {
		return nil, err
	}
	index, err := numberField(in, "index")
	if err != nil {
		return nil, err
	}
	return respond(authorizationRecordFields(s.Authz.ForSourceAt(owner, digest, int(index))))
}

func (s *Server) AuthorizationHasExisted(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	owner, err := addrField(in, "owner")
	if err != nil {
		return nil, err
	}
	recipient, err := addrField(in, "recipient")
	if err != nil {
		return nil, err
	}
	digest, err := hexField(in, "digest")
	if err != nil {
		return nil, err
	}
	return respond(map[string]interface{}{"exists": s.Authz.HasExisted(owner, recipient, digest)})
}

func (s *Server) AuthorizationValidated(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	owner, err := addrField(in, "owner")
	if err != nil {
		return nil, err
	}
	recipient, err := addrField(in, "recipient")
	if err != nil {
		return nil, err
	}
	digest, err := hexField(in, "digest")
	if err != nil {
		return nil, err
	}
	return respond(map[string]interface{}{"valid": s.Authz.Validated(owner, recipient, digest)})
}

func (s *Server) AuthorizationNonce(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	owner, err := addrField(in, "owner")
	if err != nil {
		return nil, err
	}
	return respond(map[string]interface{}{"nonce": strconv.FormatUint(s.Authz.Nonce(owner), 10)})
}
