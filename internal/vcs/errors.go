package vcs

import "fmt"

// Code classifies engine failures.
type Code int

const (
	CodeNotARepo Code = iota + 1
	CodeMissingOperand
	CodeNothingToCommit
	CodeNothingToStash
	CodeNoStash
	CodeUnknownRef
	CodeBranchExists
	CodeInvalidName
	CodeBranchNotFound
	CodeBranchCheckedOut
	CodeNotMerged
	CodeNotMergeable
	CodeUnbornBranch
	CodeDetachedHead
	CodeResolveFailed
	CodeBadRevision
	CodeRemoteExists
	CodeRemoteNotFound
	CodeNoUpstream
	CodeRefspec
	CodeRejected
	CodeRemoteRefNotFound
	CodeDirtyIndex
)

// Error is a typed engine failure. Msg is shown to the user verbatim.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Is matches any *Error with the same code, so errors.Is(err, ErrNotARepo)
// works regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func errorf(code Code, format string, args ...any) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is.
var (
	ErrNotARepo          = &Error{Code: CodeNotARepo, Msg: "fatal: not a git repository (or any of the parent directories): .git"}
	ErrMissingOperand    = &Error{Code: CodeMissingOperand}
	ErrNothingToCommit   = &Error{Code: CodeNothingToCommit, Msg: "nothing to commit, working tree clean"}
	ErrNothingToStash    = &Error{Code: CodeNothingToStash, Msg: "No local changes to save"}
	ErrNoStash           = &Error{Code: CodeNoStash, Msg: "No stash entries found."}
	ErrUnknownRef        = &Error{Code: CodeUnknownRef}
	ErrBranchExists      = &Error{Code: CodeBranchExists}
	ErrInvalidName       = &Error{Code: CodeInvalidName}
	ErrBranchNotFound    = &Error{Code: CodeBranchNotFound}
	ErrBranchCheckedOut  = &Error{Code: CodeBranchCheckedOut}
	ErrNotMerged         = &Error{Code: CodeNotMerged}
	ErrNotMergeable      = &Error{Code: CodeNotMergeable}
	ErrUnbornBranch      = &Error{Code: CodeUnbornBranch}
	ErrDetachedHead      = &Error{Code: CodeDetachedHead}
	ErrResolveFailed     = &Error{Code: CodeResolveFailed}
	ErrBadRevision       = &Error{Code: CodeBadRevision}
	ErrRemoteExists      = &Error{Code: CodeRemoteExists}
	ErrRemoteNotFound    = &Error{Code: CodeRemoteNotFound}
	ErrNoUpstream        = &Error{Code: CodeNoUpstream}
	ErrRefspec           = &Error{Code: CodeRefspec}
	ErrRejected          = &Error{Code: CodeRejected}
	ErrRemoteRefNotFound = &Error{Code: CodeRemoteRefNotFound}
	ErrDirtyIndex        = &Error{Code: CodeDirtyIndex}
)
