// Package content embeds the built-in acts and puzzle levels.
package content

import (
	"embed"
	"io/fs"

	"github.com/aretw0/gitquest/pkg/adapters/yamlfs"
)

//go:embed data
var data embed.FS

// FS returns the embedded content tree (acts/ and levels.yaml at the root).
func FS() fs.FS {
	sub, err := fs.Sub(data, "data")
	if err != nil {
		// fs.Sub only fails on an invalid path literal.
		panic(err)
	}
	return sub
}

// Loader returns a loader over the embedded content.
func Loader() *yamlfs.Loader {
	return yamlfs.New(FS())
}
