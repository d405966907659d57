package content

import (
	"errors"
	"fmt"
)

// ErrDecode is the root of every decoding failure of this package
var ErrDecode = errors.New("content: decode failed")

var (
	ErrTruncated         = fmt.Errorf("%w: truncated input", ErrDecode)
	ErrInvalidMagic      = fmt.Errorf("%w: invalid container magic", ErrDecode)
	ErrInvalidGlbMagic   = fmt.Errorf("%w: invalid glb magic", ErrDecode)
	ErrUnexpectedChunk   = fmt.Errorf("%w: first glb chunk is not JSON", ErrDecode)
	ErrMalformedMetadata = fmt.Errorf("%w: malformed JSON metadata", ErrDecode)
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported content format", ErrDecode)
)
