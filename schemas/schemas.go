package schemas

import (
	"embed"
	"io/fs"
	"path"
	"sort"
)

const ItemKind string = "Item"

//go:embed stac/*/*.json
var stacFS embed.FS

//go:embed extensions/*.json
var extensionFS embed.FS

// Specification returns the schema document for a kind ("Item") at a STAC
// version, as shipped with the binary.
func Specification(version, kind string) ([]byte, bool) {
	var name string
	switch kind {
	case ItemKind:
		name = "item.json"
	default:
		return nil, false
	}
	b, err := stacFS.ReadFile(path.Join("stac", "v"+version, name))
	if err != nil {
		return nil, false
	}
	return b, true
}

// SpecificationVersions lists the versions with an embedded schema.
func SpecificationVersions() []string {
	entries, err := fs.ReadDir(stacFS, "stac")
	if err != nil {
		return nil
	}
	var versions []string
	for _, e := range entries {
		if e.IsDir() && len(e.Name()) > 1 {
			versions = append(versions, e.Name()[1:])
		}
	}
	sort.Strings(versions)
	return versions
}

// Extensions returns the raw definitions of the built-in extensions in file
// name order.
func Extensions() ([][]byte, error) {
	entries, err := fs.ReadDir(extensionFS, "extensions")
	if err != nil {
		return nil, err
	}
	var out [][]byte
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		b, err := extensionFS.ReadFile(path.Join("extensions", e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
