// Copyright Veridise Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package ir

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// Felt is an arbitrary-precision non-negative constant as it appears in the
// intermediate representation.  Unlike fr.Element it is not confined to the
// field, since folding intermediate values can momentarily exceed the modulus
// before being reduced.
type Felt struct {
	v *big.Int
}

// NewFelt constructs a felt from a uint64.
func NewFelt(val uint64) Felt {
	return Felt{big.NewInt(0).SetUint64(val)}
}

// FeltFromBig constructs a felt from a big integer, which must be
// non-negative.
func FeltFromBig(val *big.Int) Felt {
	if val.Sign() < 0 {
		panic("negative value for field constant")
	}
	//
	return Felt{big.NewInt(0).Set(val)}
}

// FeltFromElement constructs a felt from a field element.
func FeltFromElement(val fr.Element) Felt {
	var b big.Int
	//
	val.BigInt(&b)
	//
	return Felt{&b}
}

// Prime returns the modulus of the underlying field as a felt.
func Prime() Felt {
	return Felt{fr.Modulus()}
}

// big returns the inner value, treating the zero value of Felt as zero.
func (f Felt) big() *big.Int {
	if f.v == nil {
		return big.NewInt(0)
	}
	//
	return f.v
}

// BigInt returns a copy of this felt as a big integer.
func (f Felt) BigInt() *big.Int {
	return big.NewInt(0).Set(f.big())
}

// Cmp compares two felts numerically.
func (f Felt) Cmp(o Felt) int { return f.big().Cmp(o.big()) }

// Equal checks two felts for numeric equality.
func (f Felt) Equal(o Felt) bool { return f.Cmp(o) == 0 }

// IsZero checks whether this felt is zero.
func (f Felt) IsZero() bool { return f.big().Sign() == 0 }

// IsOne checks whether this felt is one.
func (f Felt) IsOne() bool { return f.big().Cmp(big.NewInt(1)) == 0 }

// IsUint64 checks whether this felt equals the given uint64.
func (f Felt) IsUint64(val uint64) bool {
	return f.Equal(NewFelt(val))
}

// Mod reduces this felt modulo the given prime.  Values already below the
// prime are returned unchanged.
func (f Felt) Mod(prime Felt) Felt {
	if f.Cmp(prime) < 0 {
		return f
	}
	//
	return Felt{big.NewInt(0).Rem(f.big(), prime.big())}
}

// Add sums two felts without reduction.
func (f Felt) Add(o Felt) Felt {
	return Felt{big.NewInt(0).Add(f.big(), o.big())}
}

// Mul multiplies two felts without reduction.
func (f Felt) Mul(o Felt) Felt {
	return Felt{big.NewInt(0).Mul(f.big(), o.big())}
}

// Sub subtracts o from this felt, returning false if the result would be
// negative.
func (f Felt) Sub(o Felt) (Felt, bool) {
	if f.Cmp(o) < 0 {
		return Felt{}, false
	}
	//
	return Felt{big.NewInt(0).Sub(f.big(), o.big())}, true
}

func (f Felt) String() string { return f.big().String() }
