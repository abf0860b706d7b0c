package localfs

import (
	"flag"
	"fmt"

	"xdao.co/anchorauth/storage"
	"xdao.co/anchorauth/storage/archiveregistry"
)

var (
	flagLocalDir string
)

func init() {
	archiveregistry.MustRegister(archiveregistry.Backend{
		Name:        "localfs",
		Description: "Local filesystem archive (directory)",
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagLocalDir, "localfs-dir", "", "LocalFS archive directory (for --backend=localfs)")
		},
		Open: func() (storage.Archive, func() error, error) {
			if flagLocalDir == "" {
				return nil, nil, fmt.Errorf("missing --localfs-dir")
			}
			a, err := New(flagLocalDir)
			return a, nil, err
		},
	})
}
