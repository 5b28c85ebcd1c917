package domain

const (
	RequesterIdCtxKey   = "catalog-requesterId"
	RequesterRoleCtxKey = "catalog-requesterRole"
)

// Set by the authenticating proxy in front of the service.
const (
	RequesterIdHeader   = "x-catalog-requester"
	RequesterRoleHeader = "x-catalog-requester-role"
)

const (
	ExtensionsField = "extensions"
	KeywordPageSize = 10
	DefaultPageSize = 50
	MaxPageSize     = 500
)
