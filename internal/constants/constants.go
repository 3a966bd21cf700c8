package constants

// ContextKeyUserID is the key used for the authenticated user ID in both the
// session store and the gin context.
const ContextKeyUserID = "user_id"

// Password rules
const MinPasswordLength = 8

// Pagination defaults
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// MaxAttachmentSize is the largest accepted upload in bytes (16 MiB).
const MaxAttachmentSize = 16 << 20
