package scan

import (
	"fmt"
	"io"

	"github.com/h2non/filetype"
)

// SniffLimit caps how many leading bytes the type sniffer may consult,
// regardless of artifact size.
const SniffLimit = 8192

// DetectContentType infers a MIME type from at most SniffLimit bytes
// of r using magic-byte signatures. It returns "" when no signature
// matches; an unknown type is an expected outcome, not an error. The
// declared filename and client content type are never consulted.
func DetectContentType(r io.Reader) (string, error) {
	buf := make([]byte, SniffLimit)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("reading staged prefix: %w", err)
	}
	kind, err := filetype.Match(buf[:n])
	if err != nil {
		return "", fmt.Errorf("matching content type: %w", err)
	}
	if kind == filetype.Unknown {
		return "", nil
	}
	return kind.MIME.Value, nil
}
