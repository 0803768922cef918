// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package address provides the identity record of an actor instance.
//
// An address is an immutable pair made of:
//
//   - Node: opaque identifier of the hosting actor system (process or machine)
//   - Sequence: number of the actor, unique within its node
//
// The canonical textual representation of an Address is:
//
//	refkit://<node>/<sequence>
//
// Addresses are plain values: they are comparable with ==, usable as map keys
// and totally ordered by Compare. An address stays valid after the actor it
// names has been destroyed, which is what lets dead actors remain nameable.
package address

import (
	"cmp"
	"encoding/binary"
	"errors"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/tochemey/refkit/internal/validation"
)

// scheme defines the refkit addressing scheme
const scheme = "refkit"

// nodePattern restricts node identifiers to characters that survive the
// textual representation without escaping.
const nodePattern = "^[a-zA-Z0-9][a-zA-Z0-9-_\\.:]*$"

// Address identifies a single actor instance across nodes.
//
// The zero value is NoSender and is never assigned to a spawned actor, since
// sequences start at one.
type Address struct {
	node     string
	sequence uint64
}

var _ validation.Validator = Address{}

// New creates an Address with the given node and sequence.
// New does not validate the inputs; call Validate to verify the result.
func New(node string, sequence uint64) Address {
	return Address{node: node, sequence: sequence}
}

// NoSender returns the zero Address, used when a message has no originating actor.
func NoSender() Address {
	return Address{}
}

// Node returns the node component of the Address.
func (x Address) Node() string {
	return x.node
}

// Sequence returns the per-node sequence number of the Address.
func (x Address) Sequence() uint64 {
	return x.sequence
}

// IsZero reports whether x is the NoSender address.
func (x Address) IsZero() bool {
	return x.node == "" && x.sequence == 0
}

// Equals reports whether x and y name the same actor instance.
func (x Address) Equals(y Address) bool {
	return x == y
}

// Compare returns -1, 0 or +1 depending on whether x sorts before, equal to
// or after y. Addresses are ordered by node first and sequence second.
func (x Address) Compare(y Address) int {
	if c := strings.Compare(x.node, y.node); c != 0 {
		return c
	}
	return cmp.Compare(x.sequence, y.sequence)
}

// Hash returns a 64-bit hash of the Address suitable for sharding.
func (x Address) Hash() uint64 {
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], x.sequence)
	hasher := xxh3.New()
	_, _ = hasher.WriteString(x.node)
	_, _ = hasher.Write(seq[:])
	return hasher.Sum64()
}

// String returns the canonical textual form of the Address.
//
//	New("node-1", 42).String() // "refkit://node-1/42"
func (x Address) String() string {
	var seqBuf [20]byte
	seq := strconv.AppendUint(seqBuf[:0], x.sequence, 10)

	var builder strings.Builder
	builder.Grow(len(scheme) + len("://") + len(x.node) + 1 + len(seq))
	_, _ = builder.WriteString(scheme)
	_, _ = builder.WriteString("://")
	_, _ = builder.WriteString(x.node)
	_ = builder.WriteByte('/')
	_, _ = builder.Write(seq)
	return builder.String()
}

// Validate checks whether the Address is well-formed.
//
// The zero address (NoSender) is considered valid. Otherwise the node must be
// non-empty and match the node pattern, and the sequence must be positive.
func (x Address) Validate() error {
	if x.IsZero() {
		return nil
	}
	return validation.
		New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("node", x.node)).
		AddAssertion(len(x.node) <= 255, "node identifier is too long. Maximum length is 255").
		AddValidator(validation.NewPatternValidator(nodePattern, x.node, ErrInvalidNode)).
		AddAssertion(x.sequence > 0, "sequence must be positive").
		Validate()
}

// MarshalBinary encodes the Address as the big-endian sequence followed by the node bytes.
func (x Address) MarshalBinary() ([]byte, error) {
	out := make([]byte, 8+len(x.node))
	binary.BigEndian.PutUint64(out, x.sequence)
	copy(out[8:], x.node)
	return out, nil
}

// UnmarshalBinary decodes an Address produced by MarshalBinary.
func (x *Address) UnmarshalBinary(data []byte) error {
	if len(data) < 8 {
		return ErrInvalidEncoding
	}
	x.sequence = binary.BigEndian.Uint64(data[:8])
	x.node = string(data[8:])
	return nil
}

// Parse parses a canonical address string into an Address.
//
// Accepted format:
//
//	refkit://<node>/<sequence>
//
// No semantic validation is performed; call Validate on the result.
func Parse(addr string) (Address, error) {
	if addr == "" {
		return Address{}, errors.New("address is required")
	}

	schemePart, rest, ok := strings.Cut(addr, "://")
	if !ok || strings.Contains(rest, "://") {
		return Address{}, ErrInvalidFormat
	}

	if schemePart != scheme {
		return Address{}, errors.New("address protocol is not supported")
	}

	idx := strings.LastIndexByte(rest, '/')
	if idx <= 0 || idx == len(rest)-1 {
		return Address{}, ErrInvalidFormat
	}

	sequence, err := strconv.ParseUint(rest[idx+1:], 10, 64)
	if err != nil {
		return Address{}, err
	}

	return New(rest[:idx], sequence), nil
}
