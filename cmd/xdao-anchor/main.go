package main

import (
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"xdao.co/anchorauth/grpcregistry"
	"xdao.co/anchorauth/hashutil"
	"xdao.co/anchorauth/identity"
	"xdao.co/anchorauth/keys"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "digest":
		return cmdDigest(args[1:], out, errOut)
	case "hash-key":
		return cmdHashKey(args[1:], out, errOut)
	case "content-cid":
		return cmdContentCID(args[1:], out, errOut)
	case "anchor":
		return cmdAnchor(args[1:], out, errOut)
	case "auth":
		return cmdAuth(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "xdao-anchor: anchor/authorization registry CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xdao-anchor key init --name <name> [--key-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  xdao-anchor key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  xdao-anchor key list")
	fmt.Fprintln(w, "  xdao-anchor key address --name <name> [--role <role>]")
	fmt.Fprintln(w, "  xdao-anchor digest <file>")
	fmt.Fprintln(w, "  xdao-anchor hash-key <file>")
	fmt.Fprintln(w, "  xdao-anchor content-cid <file>")
	fmt.Fprintln(w, "  xdao-anchor anchor sign --registry-id <addr> (--digest <hex> | --file <path>) [--content-file <path>] <signer>")
	fmt.Fprintln(w, "  xdao-anchor anchor submit --daemon <addr> --registry-id <addr> (--digest <hex> | --file <path>) [--content-file <path>] [--category <n>] [--hash-alg <alg>] <signer>")
	fmt.Fprintln(w, "  xdao-anchor anchor count --daemon <addr> --owner <addr>")
	fmt.Fprintln(w, "  xdao-anchor anchor get --daemon <addr> --owner <addr> --index <n>")
	fmt.Fprintln(w, "  xdao-anchor anchor exists --daemon <addr> --owner <addr> --digest <hex>")
	fmt.Fprintln(w, "  xdao-anchor auth grant --daemon <addr> --registry-id <addr> --digest <hex> --recipient <addr> [--source <addr>] [--comment <text>] --valid-until <RFC3339|duration> <signer>")
	fmt.Fprintln(w, "  xdao-anchor auth update --daemon <addr> --registry-id <addr> --digest <hex> --recipient <addr> [--comment <text>] --valid-until <RFC3339|duration> <signer>")
	fmt.Fprintln(w, "  xdao-anchor auth revoke --daemon <addr> --registry-id <addr> --digest <hex> --recipient <addr> [--comment <text>] <signer>")
	fmt.Fprintln(w, "  xdao-anchor auth nonce --daemon <addr> --owner <addr>")
	fmt.Fprintln(w, "  xdao-anchor auth show --daemon <addr> --owner <addr> --index <n>")
	fmt.Fprintln(w, "  xdao-anchor auth validated --daemon <addr> --owner <addr> --recipient <addr> --digest <hex>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Signer flags:  --key-hex <64hex> | --signer <name> [--signer-role <role>] | --key-file <path>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - keys are 32-byte secp256k1 scalars stored under ~/.anchorauth/keys/<name> (0600 key files)")
	fmt.Fprintln(w, "  - --registry-id is the registry instance address signatures are bound to")
	fmt.Fprintln(w, "  - --valid-until accepts an RFC3339 timestamp or a duration from now (e.g. 720h)")
	fmt.Fprintln(w, "  - auth grant/update/revoke fetch the owner's current nonce from the daemon before signing")
}

// signerFlags holds the shared key-resolution flags.
type signerFlags struct {
	keyHex     string
	signerName string
	signerRole string
	keyFile    string
	storeDir   string
}

func (sf *signerFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&sf.keyHex, "key-hex", "", "Literal 32-byte private key (hex)")
	fs.StringVar(&sf.signerName, "signer", "", "Key store entry name")
	fs.StringVar(&sf.signerRole, "signer-role", "", "Key store role under --signer")
	fs.StringVar(&sf.keyFile, "key-file", "", "Path to a key file")
	fs.StringVar(&sf.storeDir, "key-dir", "", "Key store directory (default ~/.anchorauth/keys)")
}

func (sf *signerFlags) load() (identity.Address, []byte, error) {
	ks, err := keys.CreateKeyStore(sf.storeDir)
	if err != nil {
		return identity.Zero, nil, err
	}
	raw, err := ks.LoadKey(sf.keyHex, sf.signerName, sf.signerRole, sf.keyFile)
	if err != nil {
		return identity.Zero, nil, err
	}
	priv, err := identity.PrivateKeyFromBytes(raw)
	if err != nil {
		return identity.Zero, nil, err
	}
	return identity.AddressOf(priv), raw, nil
}

func signDigest(raw []byte, msg []byte) ([]byte, error) {
	priv, err := identity.PrivateKeyFromBytes(raw)
	if err != nil {
		return nil, err
	}
	return identity.Sign(msg, priv)
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: xdao-anchor key <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: init, derive, list, address")
		return 2
	}
	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("key init", flag.ContinueOnError)
		fs.SetOutput(errOut)
		var name, keyHex, dir string
		var force bool
		fs.StringVar(&name, "name", "", "Key entry name")
		fs.StringVar(&keyHex, "key-hex", "", "Literal 32-byte private key (hex); generated when empty")
		fs.StringVar(&dir, "key-dir", "", "Key store directory")
		fs.BoolVar(&force, "force", false, "Overwrite an existing key")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if name == "" {
			fmt.Fprintln(errOut, "usage: xdao-anchor key init --name <name> [--key-hex <64hex>] [--force]")
			return 2
		}
		var raw []byte
		if keyHex != "" {
			var err error
			raw, err = keys.ParseKeyHex(keyHex)
			if err != nil {
				fmt.Fprintf(errOut, "parse --key-hex: %v\n", err)
				return 1
			}
		} else {
			priv, err := identity.GenerateKey()
			if err != nil {
				fmt.Fprintf(errOut, "generate key: %v\n", err)
				return 1
			}
			raw = priv.Serialize()
		}
		ks, err := keys.CreateKeyStore(dir)
		if err != nil {
			fmt.Fprintf(errOut, "open key store: %v\n", err)
			return 1
		}
		addr, path, err := ks.InitializeRootKey(name, raw, force)
		if err != nil {
			fmt.Fprintf(errOut, "init key: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "address: %s\nfile: %s\n", addr, path)
		return 0
	case "derive":
		fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
		fs.SetOutput(errOut)
		var from, role, dir string
		var force bool
		fs.StringVar(&from, "from", "", "Root key entry name")
		fs.StringVar(&role, "role", "", "Role to derive")
		fs.StringVar(&dir, "key-dir", "", "Key store directory")
		fs.BoolVar(&force, "force", false, "Overwrite an existing role key")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if from == "" || role == "" {
			fmt.Fprintln(errOut, "usage: xdao-anchor key derive --from <name> --role <role> [--force]")
			return 2
		}
		ks, err := keys.CreateKeyStore(dir)
		if err != nil {
			fmt.Fprintf(errOut, "open key store: %v\n", err)
			return 1
		}
		addr, path, err := ks.DeriveKeyFromRole(from, role, force)
		if err != nil {
			fmt.Fprintf(errOut, "derive key: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "address: %s\nfile: %s\n", addr, path)
		return 0
	case "list":
		fs := flag.NewFlagSet("key list", flag.ContinueOnError)
		fs.SetOutput(errOut)
		var dir string
		fs.StringVar(&dir, "key-dir", "", "Key store directory")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		ks, err := keys.CreateKeyStore(dir)
		if err != nil {
			fmt.Fprintf(errOut, "open key store: %v\n", err)
			return 1
		}
		entries, err := ks.ListKeys()
		if err != nil {
			fmt.Fprintf(errOut, "list keys: %v\n", err)
			return 1
		}
		for _, e := range entries {
			if len(e.Roles) == 0 {
				fmt.Fprintln(out, e.Identifier)
				continue
			}
			fmt.Fprintf(out, "%s\t%s\n", e.Identifier, strings.Join(e.Roles, ","))
		}
		return 0
	case "address":
		fs := flag.NewFlagSet("key address", flag.ContinueOnError)
		fs.SetOutput(errOut)
		var name, role, dir string
		fs.StringVar(&name, "name", "", "Key entry name")
		fs.StringVar(&role, "role", "", "Role under --name")
		fs.StringVar(&dir, "key-dir", "", "Key store directory")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if name == "" {
			fmt.Fprintln(errOut, "usage: xdao-anchor key address --name <name> [--role <role>]")
			return 2
		}
		ks, err := keys.CreateKeyStore(dir)
		if err != nil {
			fmt.Fprintf(errOut, "open key store: %v\n", err)
			return 1
		}
		addr, err := ks.ExportAddress(name, role)
		if err != nil {
			fmt.Fprintf(errOut, "export address: %v\n", err)
			return 1
		}
		fmt.Fprintln(out, addr)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n", args[0])
		return 2
	}
}

func cmdDigest(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("digest", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-anchor digest <file>")
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read file: %v\n", err)
		return 1
	}
	sum := sha256.Sum256(b)
	fmt.Fprintln(out, hex.EncodeToString(sum[:]))
	return 0
}

func cmdHashKey(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("hash-key", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-anchor hash-key <file>")
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read file: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, hex.EncodeToString(hashutil.HashKey(b)))
	return 0
}

func cmdContentCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("content-cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-anchor content-cid <file>")
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read file: %v\n", err)
		return 1
	}
	s := hashutil.ContentCIDString(b)
	if s == "" {
		fmt.Fprintln(errOut, "compute cid failed")
		return 1
	}
	fmt.Fprintln(out, s)
	return 0
}

func dial(daemon string, errOut io.Writer) (*grpcregistry.Client, bool) {
	if daemon == "" {
		fmt.Fprintln(errOut, "missing --daemon address")
		return nil, false
	}
	client, err := grpcregistry.Dial(daemon)
	if err != nil {
		fmt.Fprintf(errOut, "dial daemon: %v\n", err)
		return nil, false
	}
	return client, true
}

func parseAddrFlag(s, name string, errOut io.Writer) (identity.Address, bool) {
	a, err := identity.ParseAddress(s)
	if err != nil {
		fmt.Fprintf(errOut, "parse %s: %v\n", name, err)
		return identity.Zero, false
	}
	return a, true
}

func parseHexFlag(s, name string, errOut io.Writer) ([]byte, bool) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		fmt.Fprintf(errOut, "parse %s: %v\n", name, err)
		return nil, false
	}
	return b, true
}

// parseDeadline accepts an RFC3339 timestamp or a duration relative to now.
func parseDeadline(s string) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().Add(d), nil
	}
	return time.Parse(time.RFC3339, s)
}

func cmdAnchor(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: xdao-anchor anchor <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: sign, submit, count, get, exists")
		return 2
	}
	switch args[0] {
	case "sign":
		return cmdAnchorSign(args[1:], out, errOut)
	case "submit":
		return cmdAnchorSubmit(args[1:], out, errOut)
	case "count":
		fs := flag.NewFlagSet("anchor count", flag.ContinueOnError)
		fs.SetOutput(errOut)
		var daemon, owner string
		fs.StringVar(&daemon, "daemon", "", "Daemon address")
		fs.StringVar(&owner, "owner", "", "Owner address")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		ownerAddr, ok := parseAddrFlag(owner, "--owner", errOut)
		if !ok {
			return 2
		}
		client, ok := dial(daemon, errOut)
		if !ok {
			return 1
		}
		defer client.Close()
		n, err := client.AnchorCount(ownerAddr)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		fmt.Fprintln(out, n)
		return 0
	case "get":
		fs := flag.NewFlagSet("anchor get", flag.ContinueOnError)
		fs.SetOutput(errOut)
		var daemon, owner string
		var index int
		fs.StringVar(&daemon, "daemon", "", "Daemon address")
		fs.StringVar(&owner, "owner", "", "Owner address")
		fs.IntVar(&index, "index", 0, "Record index in the owner's log")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		ownerAddr, ok := parseAddrFlag(owner, "--owner", errOut)
		if !ok {
			return 2
		}
		client, ok := dial(daemon, errOut)
		if !ok {
			return 1
		}
		defer client.Close()
		rec, err := client.AnchorAt(ownerAddr, index)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		if rec.IsZero() {
			fmt.Fprintln(errOut, "no record at that index")
			return 1
		}
		fmt.Fprintf(out, "category: %d\nhash-alg: %s\ndigest: %s\ncreated-at: %s\n",
			rec.Category, rec.HashAlg, hex.EncodeToString(rec.Digest), rec.CreatedAt.Format(time.RFC3339))
		if len(rec.Content) > 0 {
			fmt.Fprintf(out, "content: %s\n", hex.EncodeToString(rec.Content))
		}
		return 0
	case "exists":
		fs := flag.NewFlagSet("anchor exists", flag.ContinueOnError)
		fs.SetOutput(errOut)
		var daemon, owner, digest string
		fs.StringVar(&daemon, "daemon", "", "Daemon address")
		fs.StringVar(&owner, "owner", "", "Owner address")
		fs.StringVar(&digest, "digest", "", "Digest (hex)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		ownerAddr, ok := parseAddrFlag(owner, "--owner", errOut)
		if !ok {
			return 2
		}
		digestBytes, ok := parseHexFlag(digest, "--digest", errOut)
		if !ok {
			return 2
		}
		client, ok := dial(daemon, errOut)
		if !ok {
			return 1
		}
		defer client.Close()
		exists, err := client.AnchorHasExisted(ownerAddr, digestBytes)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		fmt.Fprintln(out, exists)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown anchor subcommand: %s\n", args[0])
		return 2
	}
}

// cmdAnchorSign computes the instance-bound preimage and signature without
// contacting a daemon, for air-gapped signing flows.
func cmdAnchorSign(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("anchor sign", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var registryID, digest, file, contentFile string
	var sf signerFlags
	fs.StringVar(&registryID, "registry-id", "", "Anchor registry instance address")
	fs.StringVar(&digest, "digest", "", "Digest to anchor (hex)")
	fs.StringVar(&file, "file", "", "File to digest with sha256 instead of --digest")
	fs.StringVar(&contentFile, "content-file", "", "Optional payload to anchor alongside the digest")
	sf.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	regAddr, ok := parseAddrFlag(registryID, "--registry-id", errOut)
	if !ok {
		return 2
	}
	var digestBytes []byte
	switch {
	case digest != "":
		digestBytes, ok = parseHexFlag(digest, "--digest", errOut)
		if !ok {
			return 2
		}
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(errOut, "read --file: %v\n", err)
			return 1
		}
		sum := sha256.Sum256(b)
		digestBytes = sum[:]
	default:
		fmt.Fprintln(errOut, "one of --digest or --file is required")
		return 2
	}
	var content []byte
	if contentFile != "" {
		var err error
		content, err = os.ReadFile(contentFile)
		if err != nil {
			fmt.Fprintf(errOut, "read --content-file: %v\n", err)
			return 1
		}
	}

	signer, raw, err := sf.load()
	if err != nil {
		fmt.Fprintf(errOut, "load signer: %v\n", err)
		return 1
	}
	msg := hashutil.AnchorMessageHash(regAddr.Bytes(), digestBytes, content)
	sig, err := signDigest(raw, msg)
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "signer: %s\nmessage-hash: %s\nsignature: %s\n",
		signer, hex.EncodeToString(msg), hex.EncodeToString(sig))
	return 0
}

func cmdAnchorSubmit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("anchor submit", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var daemon, registryID, digest, file, contentFile, hashAlg string
	var category int
	var sf signerFlags
	fs.StringVar(&daemon, "daemon", "", "Daemon address")
	fs.StringVar(&registryID, "registry-id", "", "Anchor registry instance address")
	fs.StringVar(&digest, "digest", "", "Digest to anchor (hex)")
	fs.StringVar(&file, "file", "", "File to digest with --hash-alg instead of --digest")
	fs.StringVar(&contentFile, "content-file", "", "Optional payload to anchor alongside the digest")
	fs.StringVar(&hashAlg, "hash-alg", "sha256", "Hash algorithm label")
	fs.IntVar(&category, "category", 0, "Record category")
	sf.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	regAddr, ok := parseAddrFlag(registryID, "--registry-id", errOut)
	if !ok {
		return 2
	}
	var digestBytes []byte
	switch {
	case digest != "":
		digestBytes, ok = parseHexFlag(digest, "--digest", errOut)
		if !ok {
			return 2
		}
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(errOut, "read --file: %v\n", err)
			return 1
		}
		sum := sha256.Sum256(b)
		digestBytes = sum[:]
	default:
		fmt.Fprintln(errOut, "one of --digest or --file is required")
		return 2
	}
	var content []byte
	if contentFile != "" {
		var err error
		content, err = os.ReadFile(contentFile)
		if err != nil {
			fmt.Fprintf(errOut, "read --content-file: %v\n", err)
			return 1
		}
	}

	signerAddr, raw, err := sf.load()
	if err != nil {
		fmt.Fprintf(errOut, "load signer: %v\n", err)
		return 1
	}
	msg := hashutil.AnchorMessageHash(regAddr.Bytes(), digestBytes, content)
	sig, err := signDigest(raw, msg)
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}

	client, ok := dial(daemon, errOut)
	if !ok {
		return 1
	}
	defer client.Close()
	index, err := client.SubmitAnchorSigned(category, hashAlg, digestBytes, content, sig)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintf(out, "owner: %s\nindex: %d\n", signerAddr, index)
	return 0
}

func cmdAuth(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: xdao-anchor auth <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: grant, update, revoke, nonce, show, validated")
		return 2
	}
	switch args[0] {
	case "grant", "update", "revoke":
		return cmdAuthMutate(args[0], args[1:], out, errOut)
	case "nonce":
		fs := flag.NewFlagSet("auth nonce", flag.ContinueOnError)
		fs.SetOutput(errOut)
		var daemon, owner string
		fs.StringVar(&daemon, "daemon", "", "Daemon address")
		fs.StringVar(&owner, "owner", "", "Owner address")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		ownerAddr, ok := parseAddrFlag(owner, "--owner", errOut)
		if !ok {
			return 2
		}
		client, ok := dial(daemon, errOut)
		if !ok {
			return 1
		}
		defer client.Close()
		nonce, err := client.AuthorizationNonce(ownerAddr)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		fmt.Fprintln(out, nonce)
		return 0
	case "show":
		fs := flag.NewFlagSet("auth show", flag.ContinueOnError)
		fs.SetOutput(errOut)
		var daemon, owner string
		var index int
		fs.StringVar(&daemon, "daemon", "", "Daemon address")
		fs.StringVar(&owner, "owner", "", "Owner address")
		fs.IntVar(&index, "index", 0, "Position in the owner's grant index")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		ownerAddr, ok := parseAddrFlag(owner, "--owner", errOut)
		if !ok {
			return 2
		}
		client, ok := dial(daemon, errOut)
		if !ok {
			return 1
		}
		defer client.Close()
		rec, err := client.AuthorizationForOwnerAt(ownerAddr, index)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		if rec.IsZero() {
			fmt.Fprintln(errOut, "no grant at that index")
			return 1
		}
		fmt.Fprintf(out, "source: %s\nowner: %s\nrecipient: %s\ndigest: %s\ncomment: %s\ncreated-at: %s\nvalid-until: %s\n",
			rec.Source, rec.Owner, rec.Recipient, hex.EncodeToString(rec.Digest), rec.Comment,
			rec.CreatedAt.Format(time.RFC3339), rec.ValidUntil.Format(time.RFC3339))
		return 0
	case "validated":
		fs := flag.NewFlagSet("auth validated", flag.ContinueOnError)
		fs.SetOutput(errOut)
		var daemon, owner, recipient, digest string
		fs.StringVar(&daemon, "daemon", "", "Daemon address")
		fs.StringVar(&owner, "owner", "", "Owner address")
		fs.StringVar(&recipient, "recipient", "", "Recipient address")
		fs.StringVar(&digest, "digest", "", "Digest (hex)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		ownerAddr, ok := parseAddrFlag(owner, "--owner", errOut)
		if !ok {
			return 2
		}
		recipientAddr, ok := parseAddrFlag(recipient, "--recipient", errOut)
		if !ok {
			return 2
		}
		digestBytes, ok := parseHexFlag(digest, "--digest", errOut)
		if !ok {
			return 2
		}
		client, ok := dial(daemon, errOut)
		if !ok {
			return 1
		}
		defer client.Close()
		valid, err := client.AuthorizationValidated(ownerAddr, recipientAddr, digestBytes)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		fmt.Fprintln(out, valid)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown auth subcommand: %s\n", args[0])
		return 2
	}
}

func cmdAuthMutate(verb string, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("auth "+verb, flag.ContinueOnError)
	fs.SetOutput(errOut)
	var daemon, registryID, digest, recipient, source, comment, validUntil string
	var sf signerFlags
	fs.StringVar(&daemon, "daemon", "", "Daemon address")
	fs.StringVar(&registryID, "registry-id", "", "Authorization registry instance address")
	fs.StringVar(&digest, "digest", "", "Anchored digest (hex)")
	fs.StringVar(&recipient, "recipient", "", "Recipient address")
	fs.StringVar(&comment, "comment", "", "Free-form comment")
	if verb == "grant" {
		fs.StringVar(&source, "source", "", "Source address recorded on the grant (defaults to the signer)")
	}
	if verb != "revoke" {
		fs.StringVar(&validUntil, "valid-until", "", "Validity deadline (RFC3339 or duration from now)")
	}
	sf.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	regAddr, ok := parseAddrFlag(registryID, "--registry-id", errOut)
	if !ok {
		return 2
	}
	digestBytes, ok := parseHexFlag(digest, "--digest", errOut)
	if !ok {
		return 2
	}
	recipientAddr, ok := parseAddrFlag(recipient, "--recipient", errOut)
	if !ok {
		return 2
	}

	owner, raw, err := sf.load()
	if err != nil {
		fmt.Fprintf(errOut, "load signer: %v\n", err)
		return 1
	}

	var deadline time.Time
	if verb != "revoke" {
		if validUntil == "" {
			fmt.Fprintln(errOut, "missing --valid-until")
			return 2
		}
		deadline, err = parseDeadline(validUntil)
		if err != nil {
			fmt.Fprintf(errOut, "parse --valid-until: %v\n", err)
			return 1
		}
	}

	client, ok := dial(daemon, errOut)
	if !ok {
		return 1
	}
	defer client.Close()

	// The signature must embed the owner's current nonce, so fetch it first.
	nonce, err := client.AuthorizationNonce(owner)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	msg := hashutil.AuthorizationMessageHash(regAddr.Bytes(), digestBytes, recipientAddr.Bytes(), nonce)
	sig, err := signDigest(raw, msg)
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}

	switch verb {
	case "grant":
		sourceAddr := owner
		if source != "" {
			sourceAddr, ok = parseAddrFlag(source, "--source", errOut)
			if !ok {
				return 2
			}
		}
		index, err := client.AddAuthorizationSigned(sourceAddr, owner, digestBytes, recipientAddr, comment, deadline, sig)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		fmt.Fprintf(out, "owner: %s\nindex: %d\n", owner, index)
	case "update":
		if err := client.UpdateAuthorizationSigned(owner, digestBytes, recipientAddr, comment, deadline, sig); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		fmt.Fprintln(out, "OK")
	case "revoke":
		if err := client.RevokeAuthorizationSigned(owner, digestBytes, recipientAddr, comment, sig); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		fmt.Fprintln(out, "OK")
	}
	return 0
}
