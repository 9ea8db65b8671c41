package ieee4882

import "errors"

var (
	ErrInvalidBlockFormat       = errors.New("ieee4882: invalid block format")
	ErrUnsupportedBlockFormat   = errors.New("ieee4882: indefinite-length block not supported")
	ErrUnexpectedResponseFormat = errors.New("ieee4882: unexpected response format")
)
