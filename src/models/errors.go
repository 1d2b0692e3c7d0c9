package models

import "errors"

var (
	// ErrInvalidFormat marks a webhook row with the wrong field count.
	ErrInvalidFormat = errors.New("invalid csv format")

	// ErrParse marks a webhook row whose numeric fields do not parse.
	ErrParse = errors.New("parse error")

	// ErrInvalidSymbolFormat marks a sync request for a symbol that is
	// not exactly six characters.
	ErrInvalidSymbolFormat = errors.New("symbol must be exactly 6 characters")

	// ErrUpstream marks a transport failure, a non-ok provider status,
	// or a provider payload missing its values.
	ErrUpstream = errors.New("upstream provider error")
)
