package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
)

// Kind classifies a TableError
type Kind string

const (
	KindNotFound  Kind = "not_found"
	KindFormat    Kind = "format"
	KindStructure Kind = "structure"
	KindIO        Kind = "io"
	KindConfig    Kind = "config"
)

// Sentinels for errors.Is checks. Matching is by Kind only.
var (
	ErrNotFound  = &TableError{Kind: KindNotFound}
	ErrFormat    = &TableError{Kind: KindFormat}
	ErrStructure = &TableError{Kind: KindStructure}
	ErrIO        = &TableError{Kind: KindIO}
	ErrConfig    = &TableError{Kind: KindConfig}
)

// TableError describes a failure while loading, reshaping or exporting a table
type TableError struct {
	Kind   Kind   // error class
	Op     string // "load", "flatten", "select", "write", ...
	Path   string // file involved (empty if none)
	Column string // offending column label (empty if table-level)
	Reason string // human-readable explanation (optional)
	Err    error  // underlying cause (may be nil)
}

func (e *TableError) Error() string {
	var parts []string

	head := string(e.Kind) + " error"
	if e.Op != "" {
		head = e.Op + ": " + head
	}
	parts = append(parts, head)

	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}

	if e.Column != "" {
		parts = append(parts, fmt.Sprintf("column=%s", e.Column))
	}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	return strings.Join(parts, " - ")
}

func (e *TableError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a TableError of the same Kind
func (e *TableError) Is(target error) bool {
	t, ok := target.(*TableError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewNotFound reports a missing source file. The cause defaults to fs.ErrNotExist.
func NewNotFound(op, path string, err error) *TableError {
	if err == nil {
		err = fs.ErrNotExist
	}
	return &TableError{
		Kind:   KindNotFound,
		Op:     op,
		Path:   path,
		Reason: "file does not exist",
		Err:    err,
	}
}

func NewFormatError(op, path, reason string, err error) *TableError {
	return &TableError{
		Kind:   KindFormat,
		Op:     op,
		Path:   path,
		Reason: reason,
		Err:    err,
	}
}

func NewColumnFormatError(op, path, column, reason string, err error) *TableError {
	return &TableError{
		Kind:   KindFormat,
		Op:     op,
		Path:   path,
		Column: column,
		Reason: reason,
		Err:    err,
	}
}

func NewStructuralError(op, column, reason string) *TableError {
	return &TableError{
		Kind:   KindStructure,
		Op:     op,
		Column: column,
		Reason: reason,
	}
}

func NewIOError(op, path string, err error) *TableError {
	return &TableError{
		Kind: KindIO,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

func NewConfigError(field, reason string) *TableError {
	return &TableError{
		Kind:   KindConfig,
		Op:     "config",
		Column: field,
		Reason: reason,
	}
}

// IsTableError reports whether err wraps a *TableError
func IsTableError(err error) bool {
	var te *TableError
	return stderrors.As(err, &te)
}
