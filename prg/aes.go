// Package prg implements the two pseudorandom generators the core's DPF
// constructions are built on: a fast AES-CTR PRG for the two-key GGM-tree
// construction, and a seed-homomorphic group PRG for the multi-key
// construction (spec.md §4.2).
package prg

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
)

// SeedLength is the byte length of an AES-PRG seed (AES-128 key size).
const SeedLength = 16

// AESSeed is a seed for the AES-CTR PRG.
type AESSeed [SeedLength]byte

// AESOutput is the pseudorandom output of the AES-CTR PRG.
type AESOutput []byte

// NewAESSeed draws a fresh random AES-PRG seed.
func NewAESSeed() AESSeed {
	var s AESSeed
	if _, err := rand.Read(s[:]); err != nil {
		panic(err.Error())
	}
	return s
}

// RandomSeed draws a fresh random AES-PRG seed as a byte slice, for callers
// that store seeds as []byte (e.g. gob-serialized DPF keys).
func RandomSeed() []byte {
	s := NewAESSeed()
	out := make([]byte, SeedLength)
	copy(out, s[:])
	return out
}

// AESEval expands seed into length pseudorandom bytes via AES-CTR with a
// fixed zero IV. The seed is the key, so distinct seeds are assumed
// independent; this mirrors the teacher's PRG in dpf/dpf_utils.go exactly,
// adapted here to its own package so dpf/twokey depends on prg rather than
// the reverse.
func AESEval(seed AESSeed, length int) AESOutput {
	block, err := aes.NewCipher(seed[:])
	if err != nil {
		panic(err.Error())
	}
	iv := make([]byte, aes.BlockSize)
	stream := cipher.NewCTR(block, iv)
	out := make(AESOutput, length)
	stream.XORKeyStream(out, out)
	return out
}

// NullAESOutput returns the all-zero output of the given length, the AES
// PRG's deterministic "no-op" output. Null broadcasts do not use it: they go
// through the DPF's GenEmpty.
func NullAESOutput(length int) AESOutput {
	return make(AESOutput, length)
}

// RandomBit draws a cryptographically secure random bit.
func RandomBit() bool {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err.Error())
	}
	return b[0]&1 == 1
}
