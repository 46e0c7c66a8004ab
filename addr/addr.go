// Package addr splits 64-bit addresses into the tag, set index and block
// offset fields used to address a set-associative cache.
package addr

import (
	"errors"
	"fmt"
)

// AddressBits is the width of the addresses handled by a Layout.
const AddressBits = 64

// ErrInvalidLayout is returned when the field widths cannot describe a cache.
var ErrInvalidLayout = errors.New("invalid address layout")

// Fields is an address broken into its cache fields.
type Fields struct {
	Tag         uint64
	SetIndex    uint64
	BlockOffset uint64
}

// Layout describes how an address is divided. The tag takes the remaining
// AddressBits - IndexBits - BlockBits high bits.
type Layout struct {
	indexBits uint
	blockBits uint
}

// NewLayout creates a Layout with 2^indexBits sets and 2^blockBits byte blocks.
func NewLayout(indexBits, blockBits int) (Layout, error) {
	if indexBits <= 0 {
		return Layout{}, fmt.Errorf("%w: index bits must be > 0, got %d",
			ErrInvalidLayout, indexBits)
	}

	if blockBits <= 0 {
		return Layout{}, fmt.Errorf("%w: block offset bits must be > 0, got %d",
			ErrInvalidLayout, blockBits)
	}

	if indexBits+blockBits >= AddressBits {
		return Layout{}, fmt.Errorf(
			"%w: index bits + block offset bits must be < %d, got %d",
			ErrInvalidLayout, AddressBits, indexBits+blockBits)
	}

	return Layout{indexBits: uint(indexBits), blockBits: uint(blockBits)}, nil
}

// MustLayout is like NewLayout but panics on error.
func MustLayout(indexBits, blockBits int) Layout {
	l, err := NewLayout(indexBits, blockBits)
	if err != nil {
		panic(err)
	}

	return l
}

// IndexBits returns the width of the set index field.
func (l Layout) IndexBits() int { return int(l.indexBits) }

// BlockBits returns the width of the block offset field.
func (l Layout) BlockBits() int { return int(l.blockBits) }

// TagBits returns the width of the tag field.
func (l Layout) TagBits() int {
	return AddressBits - int(l.indexBits) - int(l.blockBits)
}

// NumSets returns the number of sets addressed by the index field.
func (l Layout) NumSets() uint64 { return 1 << l.indexBits }

// BlockSize returns the number of bytes in a block.
func (l Layout) BlockSize() uint64 { return 1 << l.blockBits }

// Split decomposes an address.
func (l Layout) Split(a uint64) Fields {
	return Fields{
		Tag:         (a >> (l.blockBits + l.indexBits)) & mask(uint(l.TagBits())),
		SetIndex:    (a >> l.blockBits) & mask(l.indexBits),
		BlockOffset: a & mask(l.blockBits),
	}
}

// Join reassembles an address from its fields. Bits of a field beyond its
// width are dropped.
func (l Layout) Join(f Fields) uint64 {
	return (f.Tag&mask(uint(l.TagBits())))<<(l.blockBits+l.indexBits) |
		(f.SetIndex&mask(l.indexBits))<<l.blockBits |
		f.BlockOffset&mask(l.blockBits)
}

// BlockAddr returns the address of the first byte of the block holding a.
func (l Layout) BlockAddr(a uint64) uint64 {
	return a &^ mask(l.blockBits)
}

func mask(bits uint) uint64 {
	return (uint64(1) << bits) - 1
}
