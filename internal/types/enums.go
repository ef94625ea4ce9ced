package types

type DirectiveOp string

const (
	DirectiveOpNone  DirectiveOp = ""
	DirectiveOpID    DirectiveOp = "id"
	DirectiveOpAdd   DirectiveOp = "add"
	DirectiveOpMerge DirectiveOp = "merge"
	DirectiveOpSelf  DirectiveOp = "self"
)

const FlavorGeneric = "generic"

const (
	InstallTypeLSSTBuild = "lsstbuild"
	InstallTypeBuild     = "build"
)

// ExternalPkgPath is the path prefix used for third-party packages.
const ExternalPkgPath = "external"

type ErrorKind string

const (
	ErrorKindNone              ErrorKind = ""
	ErrorKindFileNotFound      ErrorKind = "file-not-found"
	ErrorKindCircularInclusion ErrorKind = "circular-inclusion"
	ErrorKindSyntaxViolation   ErrorKind = "syntax-violation"
	ErrorKindMissingVersion    ErrorKind = "missing-version"
	ErrorKindOther             ErrorKind = "other"
)

type EntryKind string

const (
	EntryKindRecord  EntryKind = "record"
	EntryKindComment EntryKind = "comment"
)
