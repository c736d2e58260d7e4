package domain

import "errors"

var (
	ErrMissingParameter   = errors.New("antiraid: missing parameter")
	ErrCommunityNotFound  = errors.New("antiraid: community not found")
	ErrUnknownParameter   = errors.New("antiraid: unknown parameter")
	ErrInvalidValue       = errors.New("antiraid: invalid value")
	ErrMutationFailure    = errors.New("antiraid: failed to apply setting")
	ErrPersistenceFailure = errors.New("antiraid: failed to persist settings")
)
