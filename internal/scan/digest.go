package scan

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"io"
)

// copyChunkSize bounds peak memory per upload to one chunk.
const copyChunkSize = 32 * 1024

// Sink is the durable destination for staged bytes.
type Sink interface {
	io.Writer
	Sync() error
}

// DigestSet holds the three digests and the byte count of one staging
// pass. All four values cover exactly the same byte sequence.
type DigestSet struct {
	Size   int64
	CRC32  string
	MD5    string
	SHA256 string
}

// DigestInto streams src into dst chunk by chunk, feeding the CRC-32,
// MD5 and SHA-256 accumulators from the same chunk before the next one
// is read. On end-of-stream the sink is fsynced and the finalized
// digests are returned; on any failure no partial DigestSet escapes.
// Read failures are the client's (wrapped in RequestError), write and
// sync failures are internal.
func DigestInto(dst Sink, src io.Reader) (DigestSet, error) {
	crc := crc32.NewIEEE()
	md5sum := md5.New()
	sha := sha256.New()
	buf := make([]byte, copyChunkSize)
	var size int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if _, werr := dst.Write(chunk); werr != nil {
				return DigestSet{}, fmt.Errorf("writing staged chunk: %w", werr)
			}
			// hash.Hash writes cannot fail.
			crc.Write(chunk)
			md5sum.Write(chunk)
			sha.Write(chunk)
			size += int64(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return DigestSet{}, &RequestError{Err: fmt.Errorf("reading upload stream: %w", rerr)}
		}
	}
	if err := dst.Sync(); err != nil {
		return DigestSet{}, fmt.Errorf("syncing staged file: %w", err)
	}
	return DigestSet{
		Size:   size,
		CRC32:  fmt.Sprintf("%08x", crc.Sum32()),
		MD5:    hex.EncodeToString(md5sum.Sum(nil)),
		SHA256: hex.EncodeToString(sha.Sum(nil)),
	}, nil
}
