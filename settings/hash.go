package settings

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

// Hash is the BLAKE3 digest of a frozen settings record. Pipeline caches
// compare it to decide whether stored data matches the current settings.
type Hash [32]byte

// String returns the lowercase hex form of h.
func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool { return h == Hash{} }

// ParseHash parses the output of Hash.String.
func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("settings: parse hash: %w", err)
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("settings: parse hash: got %d bytes, want %d", len(b), len(h))
	}
	copy(h[:], b)
	return h, nil
}

// recordDomainKey is the BLAKE3 key for settings hashes: the ASCII domain
// name, zero-padded to 32 bytes. Changing it invalidates every stored hash.
var recordDomainKey = [32]byte{
	'g', 'f', 'x', 'h', 'a', 'l', '.', 's', 'e', 't', 't', 'i', 'n', 'g', 's', '.',
	'r', 'e', 'c', 'o', 'r', 'd', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// encMode is Core Deterministic CBOR (RFC 8949 §4.2): the same record always
// encodes to the same bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("settings: CBOR encoder initialization failed: " + err.Error())
	}
}

// Encode returns the deterministic CBOR encoding of s.
func Encode(s *Settings) ([]byte, error) {
	return encMode.Marshal(s)
}

// Decode parses a record produced by Encode.
func Decode(data []byte) (Settings, error) {
	var s Settings
	if err := cbor.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("settings: decode: %w", err)
	}
	return s, nil
}

// HashOf computes the keyed hash of the deterministic encoding of s.
func HashOf(s *Settings) (Hash, error) {
	data, err := Encode(s)
	if err != nil {
		return Hash{}, fmt.Errorf("settings: encode for hash: %w", err)
	}
	// NewKeyed only fails for a key that is not 32 bytes.
	hasher, err := blake3.NewKeyed(recordDomainKey[:])
	if err != nil {
		panic("settings: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h, nil
}
