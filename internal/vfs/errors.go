package vfs

import "errors"

// Sentinel errors returned (wrapped in *PathError) by filesystem operations.
// Their text matches what a POSIX shell prints.
var (
	ErrNotExist = errors.New("No such file or directory")
	ErrIsDir    = errors.New("Is a directory")
	ErrExist    = errors.New("File exists")
	ErrNotDir   = errors.New("Not a directory")
	ErrNotEmpty = errors.New("Directory not empty")
	ErrInvalid  = errors.New("Invalid argument")
)

// PathError records a failed operation on a path.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return e.Op + ": " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func pathErr(op, path string, err error) error {
	return &PathError{Op: op, Path: path, Err: err}
}
