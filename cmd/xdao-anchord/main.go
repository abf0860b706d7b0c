package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"xdao.co/anchorauth/anchor"
	"xdao.co/anchorauth/authz"
	"xdao.co/anchorauth/eventlog"
	"xdao.co/anchorauth/gate"
	"xdao.co/anchorauth/grpcregistry"
	"xdao.co/anchorauth/identity"
	"xdao.co/anchorauth/storage/archiveregistry"

	_ "xdao.co/anchorauth/storage/localfs"
)

func main() {
	fs := flag.NewFlagSet("xdao-anchord", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7878", "listen address")
	backend := fs.String("backend", "localfs", "content archive backend name")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")
	admin := fs.String("admin", "", "administrator address admitted by the registry gates (required)")
	anchorID := fs.String("anchor-id", "", "anchor registry instance address (required)")
	authzID := fs.String("authz-id", "", "authorization registry instance address (required)")
	printEvents := fs.Bool("print-events", false, "Print registry events to stderr")

	archiveregistry.RegisterFlags(fs)

	_ = fs.Parse(os.Args[1:])
	if *listBackends {
		for _, b := range archiveregistry.List() {
			if b.Description == "" {
				_, _ = fmt.Fprintf(os.Stdout, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s\t%s\n", b.Name, b.Description)
		}
		return
	}

	adminAddr, err := identity.ParseAddress(*admin)
	if err != nil || adminAddr.IsZero() {
		fmt.Fprintln(os.Stderr, "xdao-anchord: -admin must be a non-zero address")
		os.Exit(2)
	}
	anchorAddr, err := identity.ParseAddress(*anchorID)
	if err != nil || anchorAddr.IsZero() {
		fmt.Fprintln(os.Stderr, "xdao-anchord: -anchor-id must be a non-zero address")
		os.Exit(2)
	}
	authzAddr, err := identity.ParseAddress(*authzID)
	if err != nil || authzAddr.IsZero() {
		fmt.Fprintln(os.Stderr, "xdao-anchord: -authz-id must be a non-zero address")
		os.Exit(2)
	}

	archive, closeFn, err := archiveregistry.Open(*backend)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if closeFn != nil {
		defer func() { _ = closeFn() }()
	}

	events := eventlog.New()
	admins := gate.Admin{Addr: adminAddr}
	anchors := anchor.New(anchorAddr, anchor.Options{
		Gate:    admins,
		Events:  events,
		Archive: archive,
	})
	auths := authz.New(authzAddr, anchors, authz.Options{
		Gate:   admins,
		Events: events,
	})

	if *printEvents {
		ch, cancel := events.Subscribe(64)
		defer cancel()
		go func() {
			for e := range ch {
				fmt.Fprintf(os.Stderr, "event: %s %+v\n", e.Kind(), e)
			}
		}()
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcregistry.RegisterRegistryServer(s, &grpcregistry.Server{
		Anchors: anchors,
		Authz:   auths,
		Caller:  adminAddr,
	})

	fmt.Fprintf(os.Stderr, "xdao-anchord listening on %s (backend=%s)\n", lis.Addr().String(), *backend)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
