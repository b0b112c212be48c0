// Package appfs embeds the migrations and templates shipped with the binary.
package appfs

import "embed"

//go:embed migrations templates
var FS embed.FS
