// Package web embeds the HTML templates served by the router.
package web

import "embed"

// Templates holds every page and partial under template/.
//
//go:embed template/*.html
var Templates embed.FS
