package model

import "time"

// ShowcaseRepo is a public GitHub repository featured in the portfolio showcase.
type ShowcaseRepo struct {
	ID          int64
	FullName    string
	Name        string
	Description string
	HTMLURL     string
	Language    string
	Stars       int
	Forks       int
	Topics      []string
	PushedAt    time.Time
	SyncedAt    time.Time
}
