package wire

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Canonical mode keeps encodings byte-for-byte stable, so hashes of equal
// bundles are equal.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalBundle serializes a Bundle to CBOR bytes.
func MarshalBundle(b *Bundle) ([]byte, error) {
	return cborEncMode.Marshal(b)
}

// UnmarshalBundle deserializes a Bundle from CBOR bytes.
func UnmarshalBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := cbor.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("wire: unmarshal bundle: %w", err)
	}
	return &b, nil
}

// Hash returns the hex SHA-256 of the bundle's canonical encoding.
func Hash(b *Bundle) (string, error) {
	data, err := MarshalBundle(b)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
