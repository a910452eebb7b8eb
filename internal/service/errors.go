package service

import "errors"

// Typed failures crossing the service boundary. The transport layer maps
// them onto protocol responses; none of them is retried automatically.
var (
	// Validation
	ErrInvalidChannelName = errors.New("channel name must contain only letters, digits and hyphens")
	ErrInvalidChannelType = errors.New("channel type cannot be set directly")
	ErrInvalidPassword    = errors.New("channel password must be alphanumeric")
	ErrPasswordRequired   = errors.New("protected channel requires a password")
	ErrPasswordNotAllowed = errors.New("only protected channels take a password")
	ErrCannotDMSelf       = errors.New("cannot open a direct channel with yourself")

	// Conflict
	ErrChannelNameTaken = errors.New("channel name already taken")
	ErrAlreadyMember    = errors.New("user is already a member of this channel")

	// Forbidden
	ErrForbidden     = errors.New("insufficient role for this action")
	ErrBanned        = errors.New("user is banned from this channel")
	ErrInviteExpired = errors.New("invite has expired")

	// NotFound
	ErrChannelNotFound = errors.New("channel not found")
	ErrNotMember       = errors.New("user is not a member of this channel")
	ErrNotBanned       = errors.New("user is not banned from this channel")
	ErrInviteNotFound  = errors.New("invite not found")
	ErrUserNotFound    = errors.New("user not found")

	// AuthFailure
	ErrWrongPassword = errors.New("wrong channel password")
)
