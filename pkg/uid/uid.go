// Package uid provides the 128-bit record identifiers used as keys
// throughout SagaDB.
//
// Identifiers are opaque values: no identifier is privileged, and both
// generated and caller-supplied identifiers are accepted by the store.
// Callers supplying their own identifiers are responsible for avoiding
// collisions with generated ones.
package uid

import (
	"fmt"
	"math/bits"
	"strconv"

	"github.com/google/uuid"
)

// ErrInvalidID indicates that a string is not a valid decimal 128-bit
// identifier.
var ErrInvalidID = fmt.Errorf("uid: invalid identifier")

// ID is a 128-bit identifier. Equality is exact value equality, so IDs
// are usable directly as map keys and comparable with ==.
type ID struct {
	Hi uint64
	Lo uint64
}

// New returns a statistically-unique random identifier.
func New() ID {
	u := uuid.New()
	var id ID
	for i := 0; i < 8; i++ {
		id.Hi = id.Hi<<8 | uint64(u[i])
		id.Lo = id.Lo<<8 | uint64(u[i+8])
	}
	return id
}

// From64 returns the identifier with the given low 64 bits. Intended
// for tests and fixtures with human-readable keys.
func From64(lo uint64) ID {
	return ID{Lo: lo}
}

// IsZero reports whether the identifier is the all-zero value.
func (id ID) IsZero() bool {
	return id.Hi == 0 && id.Lo == 0
}

// Hash32 returns the low 32 bits of the identifier. Hashing is kept
// this cheap on purpose; collision resolution is the index's problem.
func (id ID) Hash32() uint32 {
	return uint32(id.Lo)
}

// String returns the base-10 representation of the full 128-bit value.
// This is the wire form used by the text codec.
func (id ID) String() string {
	if id.Hi == 0 {
		return strconv.FormatUint(id.Lo, 10)
	}
	var buf [40]byte
	i := len(buf)
	hi, lo := id.Hi, id.Lo
	for hi != 0 || lo != 0 {
		r := hi % 10
		hi /= 10
		var rem uint64
		lo, rem = bits.Div64(r, lo, 10)
		i--
		buf[i] = byte('0' + rem)
	}
	return string(buf[i:])
}

// Parse converts a base-10 string back into an identifier. It rejects
// empty input, non-digit characters, and values wider than 128 bits.
func Parse(s string) (ID, error) {
	if s == "" {
		return ID{}, fmt.Errorf("%w: empty string", ErrInvalidID)
	}
	var id ID
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
		}
		// (Hi,Lo) = (Hi,Lo)*10 + digit, watching for 128-bit overflow.
		qHi, qLo := bits.Mul64(id.Hi, 10)
		pHi, pLo := bits.Mul64(id.Lo, 10)
		if qHi != 0 {
			return ID{}, fmt.Errorf("%w: %q overflows 128 bits", ErrInvalidID, s)
		}
		hi, carry := bits.Add64(qLo, pHi, 0)
		if carry != 0 {
			return ID{}, fmt.Errorf("%w: %q overflows 128 bits", ErrInvalidID, s)
		}
		lo, carry := bits.Add64(pLo, uint64(c-'0'), 0)
		hi, carry = bits.Add64(hi, 0, carry)
		if carry != 0 {
			return ID{}, fmt.Errorf("%w: %q overflows 128 bits", ErrInvalidID, s)
		}
		id.Hi, id.Lo = hi, lo
	}
	return id, nil
}

// Less orders identifiers numerically. The store itself never sorts;
// this exists so tests and callers can produce deterministic listings.
func (id ID) Less(other ID) bool {
	if id.Hi != other.Hi {
		return id.Hi < other.Hi
	}
	return id.Lo < other.Lo
}
