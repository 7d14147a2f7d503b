package proposal

import "errors"

var (
	ErrProposalNotFound    = errors.New("proposal not found")
	ErrProposalNotApproved = errors.New("proposal is not approved")
	ErrAlreadyExecuted     = errors.New("proposal already executed")
	ErrUnknownKind         = errors.New("unknown proposal kind")
)
