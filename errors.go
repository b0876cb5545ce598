package baker

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat        = errors.New("unsupported format")
	ErrParseFailure             = errors.New("parse failure")
	ErrMissingRequiredAttribute = errors.New("missing required attribute")
	ErrUnsupportedTopology      = errors.New("unsupported primitive topology")
	ErrWriteFailure             = errors.New("write failure")
	ErrAccessorOutOfBounds      = errors.New("accessor out of bounds")
	ErrUnsupportedComponent     = errors.New("unsupported component type")
)

// BakeError 带有文件、网格、图元上下文的烘焙错误
type BakeError struct {
	Op        string
	Path      string
	Mesh      int
	Primitive int
	Err       error
}

func (e *BakeError) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Mesh >= 0 {
		msg += fmt.Sprintf(" mesh %d", e.Mesh)
	}
	if e.Primitive >= 0 {
		msg += fmt.Sprintf(" primitive %d", e.Primitive)
	}
	return msg + ": " + e.Err.Error()
}

func (e *BakeError) Unwrap() error {
	return e.Err
}

func fileError(op, path string, err error) *BakeError {
	return &BakeError{Op: op, Path: path, Mesh: -1, Primitive: -1, Err: err}
}

func primitiveError(op string, mesh, prim int, err error) *BakeError {
	return &BakeError{Op: op, Mesh: mesh, Primitive: prim, Err: err}
}

// Warning 非致命问题，不中断烘焙
type Warning struct {
	Path      string
	Mesh      int
	Primitive int
	Message   string
}

func (w Warning) String() string {
	s := w.Message
	if w.Mesh >= 0 {
		s = fmt.Sprintf("mesh %d: %s", w.Mesh, s)
		if w.Primitive >= 0 {
			s = fmt.Sprintf("mesh %d primitive %d: %s", w.Mesh, w.Primitive, w.Message)
		}
	}
	if w.Path != "" {
		s = w.Path + ": " + s
	}
	return s
}
