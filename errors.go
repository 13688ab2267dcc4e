package bincodec

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConstruction is matched by every configuration-time error: duplicate
	// names, unusable widths, too many enum values and the like.
	ErrConstruction = errors.New("bincodec: invalid codec configuration")

	// ErrValidation is matched by every error describing a value that cannot
	// be represented by a codec.
	ErrValidation = errors.New("bincodec: invalid value")

	// ErrWire is matched by every error describing bytes that do not form a
	// valid encoding, e.g. an out-of-range union index.
	ErrWire = errors.New("bincodec: invalid wire data")

	// ErrNotFinalized indicates a union codec was used before Finalize.
	ErrNotFinalized = errors.New("bincodec: union codec is not finalized")

	// ErrDuplicateName indicates a field or static member name is already taken
	// inside a composite.
	ErrDuplicateName = errors.New("bincodec: duplicate field name")

	// ErrUnknownField indicates a field name that is not part of a composite.
	ErrUnknownField = errors.New("bincodec: unknown field")

	// ErrTooManyValues indicates a discriminant or enum set that no unsigned
	// integer width up to 32 bits can index.
	ErrTooManyValues = errors.New("bincodec: too many distinct values to index")

	// ErrTrailingData is returned by Unmarshal when non-zero bytes are found
	// after the expected end of the value.
	ErrTrailingData = errors.New("bincodec: non-zero trailing data found after decoding")

	// ErrTruncatedData indicates that a decode ran past the end of the buffer.
	ErrTruncatedData = errors.New("bincodec: truncated data")

	// ErrNilIO indicates a stream reader or writer was created over a nil
	// io.Reader or io.Writer.
	ErrNilIO = errors.New("bincodec: stream created with a nil io.Reader/io.Writer")

	// ErrValueTooLarge indicates a stream value whose encoding exceeds the
	// reader's size limit.
	ErrValueTooLarge = errors.New("bincodec: value exceeds the stream size limit")

	// ErrChecksum indicates a digest codec found a hash that does not match
	// the bytes it covers.
	ErrChecksum = errors.New("bincodec: checksum mismatch")
)

// Kind classifies an Error.
type Kind string

const (
	KindConstruction Kind = "construction"
	KindValidation   Kind = "validation"
	KindWire         Kind = "wire"
)

// sentinel returns the package error matched by errors.Is for the kind.
func (k Kind) sentinel() error {
	switch k {
	case KindConstruction:
		return ErrConstruction
	case KindValidation:
		return ErrValidation
	case KindWire:
		return ErrWire
	}
	return nil
}

// Error is the structured error returned by codecs.
//
// Path names the offending field in validation errors ("val.c.d",
// `val["x-y"]`, "val.items[3]"). Cause, when set, is one of the more specific
// sentinels above (ErrDuplicateName, ErrTruncatedData, ...) or an error from a
// wrapped library.
type Error struct {
	Cause  error
	Kind   Kind
	Path   string
	Detail string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("bincodec: ")
	b.WriteString(string(e.Kind))
	b.WriteString(" error")
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is the sentinel of this error's kind, or another
// *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return target == e.Kind.sentinel()
}

func constructionError(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindConstruction, Cause: cause, Detail: fmt.Sprintf(format, args...)}
}

func validationError(path string, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Path: path, Detail: fmt.Sprintf(format, args...)}
}

func wireError(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindWire, Cause: cause, Detail: fmt.Sprintf(format, args...)}
}

// atPath labels a path-less codec error with path; other errors are
// classified as validation errors at path.
func atPath(err error, path string) error {
	var e *Error
	if errors.As(err, &e) {
		if e.Path != "" {
			return err
		}
		labeled := *e
		labeled.Path = path
		return &labeled
	}
	return &Error{Kind: KindValidation, Path: path, Cause: err}
}

// truncated reports a decode that needs n bytes at off but runs off buf.
func truncated(off, n, size int) *Error {
	return wireError(ErrTruncatedData, "need %d bytes at offset %d, buffer holds %d", n, off, size)
}
