package types

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

// Lengths of hashes and addresses in bytes.
const (
	HashLength    = 32
	AddressLength = 20

	AddressPrefix = "0x"
)

// ZeroAddress is never a valid recipient.
var ZeroAddress = Address{}

// Address represents the 20 byte address of an account.
type Address [AddressLength]byte

func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress returns Address with byte values of s. Malformed input yields a
// partially filled address, use ParseAddress when the input is untrusted.
func HexToAddress(s string) Address {
	b, _ := hex.DecodeString(strings.TrimPrefix(s, AddressPrefix))
	return BytesToAddress(b)
}

// ParseAddress decodes a prefixed or unprefixed hex string into an Address.
func ParseAddress(s string) (Address, error) {
	raw := strings.TrimPrefix(s, AddressPrefix)
	if len(raw) != 2*AddressLength {
		return Address{}, errors.Errorf("address %q should be %d hex characters", s, 2*AddressLength)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return Address{}, errors.Wrapf(err, "address %q", s)
	}
	return BytesToAddress(b), nil
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) IsZero() bool { return a == ZeroAddress }

// Hex returns a prefixed hex string representation of the address.
func (a Address) Hex() string {
	return AddressPrefix + hex.EncodeToString(a[:])
}

func (a Address) String() string {
	return a.Hex()
}

// Format implements fmt.Formatter, forcing the byte slice to be formatted as is,
// without going through the stringer interface used for logging.
func (a Address) Format(s fmt.State, c rune) {
	_, _ = fmt.Fprintf(s, "%"+string(c), a.Hex())
}

// SetBytes sets the address to the value of b. If b is larger than len(a) it will panic
func (a *Address) SetBytes(b []byte) {
	if len(b) > len(a) {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

func (a *Address) UnmarshalText(input []byte) error {
	parsed, err := ParseAddress(string(input))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Address) Compare(a2 Address) int {
	return bytes.Compare(a.Bytes(), a2.Bytes())
}

// Keccak256 calculates and returns the legacy Keccak256 hash of the input data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// CreateLedgerAddress derives the account that holds the backing of a ledger
// deployed by owner.
func CreateLedgerAddress(owner Address, nonce uint64) Address {
	n := make([]byte, 8)
	binary.BigEndian.PutUint64(n, nonce)

	var addr Address
	copy(addr[:], Keccak256(owner[:], n)[12:])

	return addr
}

// PubKeyToAddress derives an account address from an uncompressed secp256k1
// public key (65 bytes, leading 0x04).
func PubKeyToAddress(uncompressed []byte) Address {
	var addr Address
	copy(addr[:], Keccak256(uncompressed[1:])[12:])
	return addr
}
