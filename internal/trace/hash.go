package trace

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeTraceHash computes the TraceHash of a canonical trace encoding
// (e.g. from ExecutionTrace.CanonicalJSON()): sha256 over the bytes, hex-encoded.
//
// Empty input has no hash.
func ComputeTraceHash(canonicalEncoding []byte) string {
	if len(canonicalEncoding) == 0 {
		return ""
	}
	sum := sha256.Sum256(canonicalEncoding)
	return hex.EncodeToString(sum[:])
}
