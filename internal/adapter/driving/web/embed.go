package web

import "embed"

// StaticFS holds the embedded static assets (stylesheet, admin and guard scripts).
//
//go:embed static/*
var StaticFS embed.FS
