// Package manifest builds and writes the web-app manifest document emitted
// alongside a generated icon set.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	apperrors "github.com/iconforge/iconforge/errors"
)

// Filename is the manifest's name inside the output directory.
const Filename = "manifest.json"

// Icon is one entry of the manifest's icon array.
type Icon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// Document is the manifest descriptor.  Everything but the icon array is a
// fixed default.
type Document struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	Icons           []Icon `json:"icons"`
	StartURL        string `json:"start_url"`
	Display         string `json:"display"`
	ThemeColor      string `json:"theme_color"`
	BackgroundColor string `json:"background_color"`
}

// New derives a Document from the generated icon sizes.  The favicon size is
// excluded: it is saved as an icon container, not a size-named PNG, and does
// not belong in the icon array.
func New(sizes []int, faviconSize int) Document {
	ordered := make([]int, 0, len(sizes))
	for _, s := range sizes {
		if s != faviconSize {
			ordered = append(ordered, s)
		}
	}
	sort.Ints(ordered)

	icons := make([]Icon, 0, len(ordered))
	for _, s := range ordered {
		icons = append(icons, Icon{
			Src:   fmt.Sprintf("icon-%dx%d.png", s, s),
			Sizes: fmt.Sprintf("%dx%d", s, s),
			Type:  "image/png",
		})
	}

	return Document{
		Name:            "PWA App",
		ShortName:       "PWA",
		Icons:           icons,
		StartURL:        ".",
		Display:         "standalone",
		ThemeColor:      "#ffffff",
		BackgroundColor: "#ffffff",
	}
}

// Write serialises the document to path as 2-space indented JSON.
func (d Document) Write(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.CategoryManifest, "manifest.marshal", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return apperrors.Wrap(apperrors.CategoryManifest, "manifest.write", err)
	}
	return nil
}
