package archiveregistry

import (
	"flag"

	"xdao.co/anchorauth/storage"
)

func init() {
	MustRegister(Backend{
		Name:        "mem",
		Description: "In-process archive (contents do not survive a restart)",
		RegisterFlags: func(fs *flag.FlagSet) {
			// No flags.
		},
		Open: func() (storage.Archive, func() error, error) {
			return storage.NewMemory(), nil, nil
		},
	})
}
