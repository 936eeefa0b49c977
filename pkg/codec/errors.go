package codec

import "errors"

// Errors returned while parsing record text. Decode wraps each of
// these with line and field context; match with errors.Is.
var (
	// ErrInvalidID indicates the leading field of a record line is not
	// a valid decimal 128-bit identifier.
	ErrInvalidID = errors.New("invalid record identifier")

	// ErrMissingField indicates a record line carries fewer fields
	// than the schema declares.
	ErrMissingField = errors.New("missing field")

	// ErrTooManyFields indicates a record line carries more fields
	// than the schema declares.
	ErrTooManyFields = errors.New("too many fields")

	// ErrWrongType indicates a field's text does not match the syntax
	// of its declared type.
	ErrWrongType = errors.New("wrong field type")

	// ErrEnumNotFound indicates an enum field's text matches no
	// declared variant name or ordinal.
	ErrEnumNotFound = errors.New("enum variant not found")

	// ErrLineTooLong indicates an input line exceeds MaxLineLen bytes.
	ErrLineTooLong = errors.New("line too long")
)
