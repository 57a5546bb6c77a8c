package tweet

import (
	"fmt"
	"math/big"
	"math/bits"
)

// ID is an unsigned 128-bit tweet identifier.
//
// IDs are handed out by the allocator in strictly increasing order and are
// never reused. The zero value is the first identifier a fresh ledger
// allocates.
//
// Two encodings exist:
//   - Hex(): fixed-width 32-char lowercase hex, used as the storage key.
//     Fixed width means lexicographic order equals numeric order, so the
//     store can ORDER BY the key directly.
//   - String(): decimal, used for display, CLI arguments, and JSON.
type ID struct {
	Hi, Lo uint64
}

// MaxID is the largest representable identifier. It is never handed out:
// the allocator fails once advancing past it would overflow (the counter
// must always hold "next to allocate").
var MaxID = ID{Hi: ^uint64(0), Lo: ^uint64(0)}

// Next returns id+1. ok is false when id is MaxID, in which case the
// returned ID is the zero value and must not be used.
func (id ID) Next() (next ID, ok bool) {
	lo, carry := bits.Add64(id.Lo, 1, 0)
	hi, carry := bits.Add64(id.Hi, 0, carry)
	if carry != 0 {
		return ID{}, false
	}
	return ID{Hi: hi, Lo: lo}, true
}

// Compare returns -1, 0, or 1 as id is less than, equal to, or greater
// than other.
func (id ID) Compare(other ID) int {
	switch {
	case id.Hi < other.Hi:
		return -1
	case id.Hi > other.Hi:
		return 1
	case id.Lo < other.Lo:
		return -1
	case id.Lo > other.Lo:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether id is the zero identifier.
func (id ID) IsZero() bool {
	return id.Hi == 0 && id.Lo == 0
}

// Hex returns the fixed-width 32-char lowercase hex encoding.
func (id ID) Hex() string {
	return fmt.Sprintf("%016x%016x", id.Hi, id.Lo)
}

// ParseHex parses the encoding produced by Hex.
func ParseHex(s string) (ID, error) {
	if len(s) != 32 {
		return ID{}, fmt.Errorf("parse tweet id hex: want 32 chars, got %d", len(s))
	}
	var id ID
	if _, err := fmt.Sscanf(s[:16], "%016x", &id.Hi); err != nil {
		return ID{}, fmt.Errorf("parse tweet id hex %q: %w", s, err)
	}
	if _, err := fmt.Sscanf(s[16:], "%016x", &id.Lo); err != nil {
		return ID{}, fmt.Errorf("parse tweet id hex %q: %w", s, err)
	}
	return id, nil
}

// String returns the decimal encoding.
func (id ID) String() string {
	return id.bigInt().String()
}

// ParseID parses a decimal identifier as produced by String.
func ParseID(s string) (ID, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return ID{}, fmt.Errorf("parse tweet id %q: not a decimal integer", s)
	}
	if n.Sign() < 0 {
		return ID{}, fmt.Errorf("parse tweet id %q: negative", s)
	}
	if n.BitLen() > 128 {
		return ID{}, fmt.Errorf("parse tweet id %q: exceeds 128 bits", s)
	}
	var buf [16]byte
	n.FillBytes(buf[:])
	var id ID
	for i := 0; i < 8; i++ {
		id.Hi = id.Hi<<8 | uint64(buf[i])
		id.Lo = id.Lo<<8 | uint64(buf[i+8])
	}
	return id, nil
}

// MarshalJSON encodes the ID as a decimal JSON string. A string is used
// rather than a number because 128-bit values do not survive float64
// round-trips in consumers.
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.String() + `"`), nil
}

// UnmarshalJSON decodes a decimal JSON string.
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("unmarshal tweet id: want decimal string, got %s", data)
	}
	parsed, err := ParseID(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id ID) bigInt() *big.Int {
	var buf [16]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(id.Hi >> (56 - 8*i))
		buf[i+8] = byte(id.Lo >> (56 - 8*i))
	}
	return new(big.Int).SetBytes(buf[:])
}
