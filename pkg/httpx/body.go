package httpx

import (
	"io"
)

// maxBodyBytes caps how much of a token endpoint response gets read. Token
// payloads are small; anything past this is a misbehaving server.
const maxBodyBytes = 1 << 20

// ReadBody reads at most 1 MiB from r. Oversized remainders are left on the
// wire for the caller's DrainClose.
func ReadBody(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxBodyBytes))
}

// DrainClose discards a little of rc and closes it, letting the HTTP client
// reuse the underlying connection. Nil receivers are fine.
func DrainClose(rc io.ReadCloser) {
	if rc == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 4<<10))
	rc.Close()
}
