package grpcregistry

import (
	"context"
	"encoding/hex"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"xdao.co/anchorauth/identity"
	"xdao.co/anchorauth/model"
)

// Client is a typed wrapper around the Registry gRPC service. It hides the
// structpb wire shape behind the same signatures the in-process registries
// offer, minus the caller argument (the remote daemon supplies its own).
type Client struct {
	rc   RegistryClient
	conn *grpc.ClientConn

	// Timeout bounds each call. Zero means no deadline.
	Timeout time.Duration
}

// Dial connects to a registry daemon at addr (plaintext).
func Dial(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &Client{rc: NewRegistryClient(conn), conn: conn, Timeout: 30 * time.Second}, nil
}

// NewClient wraps an existing connection, e.g. a bufconn in tests.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{rc: NewRegistryClient(cc)}
}

// Close tears down the underlying connection, if the client owns one.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.Background(), func() {}
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}

// unwrapErr recovers the registry's typed error from a gRPC status, falling
// back to the transport error when the message is not a coded rendering.
func unwrapErr(err error) error {
	if err == nil {
		return nil
	}
	if coded := model.ParseError(status.Convert(err).Message()); coded != nil {
		return coded
	}
	return err
}

func request(fields map[string]interface{}) (*structpb.Struct, error) {
	return structpb.NewStruct(fields)
}

func respNumber(out *structpb.Struct, key string) int {
	return int(out.GetFields()[key].GetNumberValue())
}

func respBool(out *structpb.Struct, key string) bool {
	return out.GetFields()[key].GetBoolValue()
}

func respHex(out *structpb.Struct, key string) ([]byte, error) {
	s := out.GetFields()[key].GetStringValue()
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}

func respAddr(out *structpb.Struct, key string) (identity.Address, error) {
	s := out.GetFields()[key].GetStringValue()
	if s == "" {
		return identity.Zero, nil
	}
	return identity.ParseAddress(s)
}

func respTime(out *structpb.Struct, key string) time.Time {
	n := int64(out.GetFields()[key].GetNumberValue())
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(n, 0)
}

func decodeAnchorRecord(out *structpb.Struct) (model.AnchorRecord, error) {
	digest, err := respHex(out, "digest")
	if err != nil {
		return model.AnchorRecord{}, err
	}
	content, err := respHex(out, "content")
	if err != nil {
		return model.AnchorRecord{}, err
	}
	return model.AnchorRecord{
		Category:  respNumber(out, "category"),
		HashAlg:   out.GetFields()["hashAlg"].GetStringValue(),
		Digest:    digest,
		Content:   content,
		CreatedAt: respTime(out, "createdAt"),
	}, nil
}

func decodeAuthorizationRecord(out *structpb.Struct) (model.AuthorizationRecord, error) {
	source, err := respAddr(out, "source")
	if err != nil {
		return model.AuthorizationRecord{}, err
	}
	owner, err := respAddr(out, "owner")
	if err != nil {
		return model.AuthorizationRecord{}, err
	}
	recipient, err := respAddr(out, "recipient")
	if err != nil {
		return model.AuthorizationRecord{}, err
	}
	digest, err := respHex(out, "digest")
	if err != nil {
		return model.AuthorizationRecord{}, err
	}
	return model.AuthorizationRecord{
		Source:     source,
		Digest:     digest,
		Owner:      owner,
		Recipient:  recipient,
		Comment:    out.GetFields()["comment"].GetStringValue(),
		CreatedAt:  respTime(out, "createdAt"),
		ValidUntil: respTime(out, "validUntil"),
	}, nil
}

// SubmitAnchorSigned relays a client-signed anchor submission. It returns the
// new record's index within the recovered signer's log.
func (c *Client) SubmitAnchorSigned(category int, hashAlg string, digest, content, sig []byte) (int, error) {
	in, err := request(map[string]interface{}{
		"category":  float64(category),
		"hashAlg":   hashAlg,
		"digest":    hex.EncodeToString(digest),
		"content":   hex.EncodeToString(content),
		"signature": hex.EncodeToString(sig),
	})
	if err != nil {
		return 0, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	out, err := c.rc.SubmitAnchorSigned(ctx, in)
	if err != nil {
		return 0, unwrapErr(err)
	}
	return respNumber(out, "index"), nil
}

func (c *Client) AnchorCount(owner identity.Address) (int, error) {
	in, err := request(map[string]interface{}{"owner": owner.Hex()})
	if err != nil {
		return 0, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	out, err := c.rc.AnchorCount(ctx, in)
	if err != nil {
		return 0, unwrapErr(err)
	}
	return respNumber(out, "count"), nil
}

func (c *Client) AnchorAt(owner identity.Address, i int) (model.AnchorRecord, error) {
	in, err := request(map[string]interface{}{"owner": owner.Hex(), "index": float64(i)})
	if err != nil {
		return model.AnchorRecord{}, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	out, err := c.rc.AnchorAt(ctx, in)
	if err != nil {
		return model.AnchorRecord{}, unwrapErr(err)
	}
	return decodeAnchorRecord(out)
}

func (c *Client) AnchorHasExisted(owner identity.Address, digest []byte) (bool, error) {
	in, err := request(map[string]interface{}{"owner": owner.Hex(), "digest": hex.EncodeToString(digest)})
	if err != nil {
		return false, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	out, err := c.rc.AnchorHasExisted(ctx, in)
	if err != nil {
		return false, unwrapErr(err)
	}
	return respBool(out, "exists"), nil
}

// AddAuthorizationSigned relays an owner-signed grant. It returns the new
// record's global identifier.
func (c *Client) AddAuthorizationSigned(source, owner identity.Address, digest []byte, recipient identity.Address, comment string, validUntil time.Time, sig []byte) (int, error) {
	in, err := request(map[string]interface{}{
		"source":     source.Hex(),
		"owner":      owner.Hex(),
		"digest":     hex.EncodeToString(digest),
		"recipient":  recipient.Hex(),
		"comment":    comment,
		"validUntil": unixOrZero(validUntil),
		"signature":  hex.EncodeToString(sig),
	})
	if err != nil {
		return 0, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	out, err := c.rc.AddAuthorizationSigned(ctx, in)
	if err != nil {
		return 0, unwrapErr(err)
	}
	return respNumber(out, "index"), nil
}

func (c *Client) UpdateAuthorizationSigned(owner identity.Address, digest []byte, recipient identity.Address, comment string, validUntil time.Time, sig []byte) error {
	in, err := request(map[string]interface{}{
		"owner":      owner.Hex(),
		"digest":     hex.EncodeToString(digest),
		"recipient":  recipient.Hex(),
		"comment":    comment,
		"validUntil": unixOrZero(validUntil),
		"signature":  hex.EncodeToString(sig),
	})
	if err != nil {
		return err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	_, err = c.rc.UpdateAuthorizationSigned(ctx, in)
	return unwrapErr(err)
}

func (c *Client) RevokeAuthorizationSigned(owner identity.Address, digest []byte, recipient identity.Address, comment string, sig []byte) error {
	in, err := request(map[string]interface{}{
		"owner":     owner.Hex(),
		"digest":    hex.EncodeToString(digest),
		"recipient": recipient.Hex(),
		"comment":   comment,
		"signature": hex.EncodeToString(sig),
	})
	if err != nil {
		return err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	_, err = c.rc.RevokeAuthorizationSigned(ctx, in)
	return unwrapErr(err)
}

func (c *Client) AuthorizationCountForOwner(owner identity.Address) (int, error) {
	in, err := request(map[string]interface{}{"owner": owner.Hex()})
	if err != nil {
		return 0, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	out, err := c.rc.AuthorizationCountForOwner(ctx, in)
	if err != nil {
		return 0, unwrapErr(err)
	}
	return respNumber(out, "count"), nil
}

func (c *Client) AuthorizationForOwnerAt(owner identity.Address, i int) (model.AuthorizationRecord, error) {
	in, err := request(map[string]interface{}{"owner": owner.Hex(), "index": float64(i)})
	if err != nil {
		return model.AuthorizationRecord{}, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	out, err := c.rc.AuthorizationForOwnerAt(ctx, in)
	if err != nil {
		return model.AuthorizationRecord{}, unwrapErr(err)
	}
	return decodeAuthorizationRecord(out)
}

func (c *Client) AuthorizationCountForRecipient(recipient identity.Address) (int, error) {
	in, err := request(map[string]interface{}{"recipient": recipient.Hex()})
	if err != nil {
		return 0, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	out, err := c.rc.AuthorizationCountForRecipient(ctx, in)
	if err != nil {
		return 0, unwrapErr(err)
	}
	return respNumber(out, "count"), nil
}

func (c *Client) AuthorizationForRecipientAt(recipient identity.Address, i int) (model.AuthorizationRecord, error) {
	in, err := request(map[string]interface{}{"recipient": recipient.Hex(), "index": float64(i)})
	if err != nil {
		return model.AuthorizationRecord{}, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	out, err := c.rc.AuthorizationForRecipientAt(ctx, in)
	if err != nil {
		return model.AuthorizationRecord{}, unwrapErr(err)
	}
	return decodeAuthorizationRecord(out)
}

func (c *Client) AuthorizationCountForSource(owner identity.Address, digest []byte) (int, error) {
	in, err := request(map[string]interface{}{"owner": owner.Hex(), "digest": hex.EncodeToString(digest)})
	if err != nil {
		return 0, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	out, err := c.rc.AuthorizationCountForSource(ctx, in)
	if err != nil {
		return 0, unwrapErr(err)
	}
	return respNumber(out, "count"), nil
}

func (c *Client) AuthorizationForSourceAt(owner identity.Address, digest []byte, i int) (model.AuthorizationRecord, error) {
	in, err := request(map[string]interface{}{
		"owner":  owner.Hex(),
		"digest": hex.EncodeToString(digest),
		"index":  float64(i),
	})
	if err != nil {
		return model.AuthorizationRecord{}, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	out, err := c.rc.AuthorizationForSourceAt(ctx, in)
	if err != nil {
		return model.AuthorizationRecord{}, unwrapErr(err)
	}
	return decodeAuthorizationRecord(out)
}

func (c *Client) AuthorizationHasExisted(owner, recipient identity.Address, digest []byte) (bool, error) {
	in, err := request(map[string]interface{}{
		"owner":     owner.Hex(),
		"recipient": recipient.Hex(),
		"digest":    hex.EncodeToString(digest),
	})
	if err != nil {
		return false, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	out, err := c.rc.AuthorizationHasExisted(ctx, in)
	if err != nil {
		return false, unwrapErr(err)
	}
	return respBool(out, "exists"), nil
}

func (c *Client) AuthorizationValidated(owner, recipient identity.Address, digest []byte) (bool, error) {
	in, err := request(map[string]interface{}{
		"owner":     owner.Hex(),
		"recipient": recipient.Hex(),
		"digest":    hex.EncodeToString(digest),
	})
	if err != nil {
		return false, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	out, err := c.rc.AuthorizationValidated(ctx, in)
	if err != nil {
		return false, unwrapErr(err)
	}
	return respBool(out, "valid"), nil
}

// AuthorizationNonce returns owner's current replay nonce. Off-chain signers
// embed it in the next preimage they sign.
func (c *Client) AuthorizationNonce(owner identity.Address) (uint64, error) {
	in, err := request(map[string]interface{}{"owner": owner.Hex()})
	if err != nil {
		return 0, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	out, err := c.rc.AuthorizationNonce(ctx, in)
	if err != nil {
		return 0, unwrapErr(err)
	}
	return strconv.ParseUint(out.GetFields()["nonce"].GetStringValue(), 10, 64)
}
