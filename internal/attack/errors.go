package attack

import "errors"

// Sentinel errors surfaced to the command layer. All of them abort the run
// before any output file is written.
var (
	// ErrUnknownDomain indicates a domain string outside the three ATT&CK matrices.
	ErrUnknownDomain = errors.New("unknown ATT&CK domain")

	// ErrUnknownPlatform indicates a platform filter value that is not part of
	// the fixed enumeration for the active domain.
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrInvalidFilter indicates that both an include list and an exclude list
	// were supplied.
	ErrInvalidFilter = errors.New("include and exclude platform lists are mutually exclusive")

	// ErrNoTechniqueIDColumn indicates that the input sheet has no techniqueID
	// column at all. A present-but-empty column is not an error.
	ErrNoTechniqueIDColumn = errors.New("sheet has no techniqueID column")

	// ErrMalformedObject indicates a knowledge object missing the id or type
	// tag needed to classify it.
	ErrMalformedObject = errors.New("malformed STIX object")
)
