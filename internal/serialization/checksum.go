package serialization

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeChecksum computes the SHA-256 checksum of the data section.
func ComputeChecksum(data []byte) [ChecksumSize]byte {
	return sha256.Sum256(data)
}

// ValidateChecksum compares computed checksum against stored checksum.
// Returns ErrChecksumMismatch if they don't match.
func ValidateChecksum(computed, stored [ChecksumSize]byte) error {
	if computed != stored {
		return ErrChecksumMismatch
	}
	return nil
}

// ChecksumHex returns the hex form of a checksum, as printed by inspection
// tools.
func ChecksumHex(sum [ChecksumSize]byte) string {
	return hex.EncodeToString(sum[:])
}
