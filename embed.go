package folio

import "embed"

// EmbeddedAssets contains the default stylesheet served under /static/.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
