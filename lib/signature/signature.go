//
// Copyright (C) 2026 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package signature derives a read's genomic block structure, its splice
// signature, from the alignment CIGAR. All coordinates are 0-based
// half-open on the reference.
package signature

import (
	"errors"
	"fmt"

	"github.com/biogo/hts/sam"

	"git.sr.ht/~vejnar/SpliceClass/lib/model"
)

const (
	// DefaultMinIntron is the default minimum reference-gap length for a
	// deletion to count as a splice junction. Shorter deletions are
	// alignment noise and are folded into the surrounding block.
	DefaultMinIntron = 20
	// DefaultMinBlock is the default minimum length for an outer block to
	// be kept in the signature. Shorter leading or trailing blocks are
	// alignment-window noise.
	DefaultMinBlock = 10
)

// Config controls how alignment gaps are interpreted.
type Config struct {
	// MinIntron is the minimum length for a deletion to be treated as a
	// splice junction. Reference skips (CIGAR N) are explicit splice-gap
	// markers and are junction-like at any length.
	MinIntron int
	// MinBlock is the minimum length for leading and trailing blocks.
	// Outer blocks below MinBlock are trimmed from the signature together
	// with their adjacent gap. Interior blocks are bounded by junctions on
	// both sides and are never trimmed.
	MinBlock int
}

// Default is the configuration used when no option overrides it.
var Default = Config{MinIntron: DefaultMinIntron, MinBlock: DefaultMinBlock}

// Block is one contiguous run of reference bases covered by a read.
// Folded-in small deletions are part of the covering block.
type Block struct {
	Start, End int
}

// Signature is a read's ordered block list plus the junction-like gaps
// between consecutive blocks.
type Signature struct {
	Blocks []Block
	Gaps   []model.Junction
}

// Span returns the reference interval from the first to the last block.
func (s Signature) Span() Block {
	return Block{Start: s.Blocks[0].Start, End: s.Blocks[len(s.Blocks)-1].End}
}

// ErrNoAlignment marks a record without usable mapping information.
var ErrNoAlignment = errors.New("no alignment")

// FromRecord derives the splice signature of one alignment. The MD tag, if
// present, is checked against the CIGAR footprint; an inconsistency marks
// the record malformed. Errors are record-local: the caller classifies the
// record unknown and continues.
func FromRecord(r *sam.Record, cfg Config) (Signature, error) {
	var sig Signature
	if len(r.Cigar) == 0 {
		return sig, ErrNoAlignment
	}
	if err := validateMD(r); err != nil {
		return sig, err
	}
	pos := r.Pos
	if pos < 0 {
		return sig, fmt.Errorf("negative position %d", pos)
	}
	var blocks []Block
	var blockStart int
	var open bool
	closeBlock := func() {
		if open {
			blocks = append(blocks, Block{Start: blockStart, End: pos})
			open = false
		}
	}
	for _, co := range r.Cigar {
		t := co.Type()
		length := co.Len()
		if length < 0 {
			return sig, fmt.Errorf("negative length %s operation", t)
		}
		switch t {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			if !open {
				blockStart = pos
				open = true
			}
			pos += length
		case sam.CigarSkipped:
			closeBlock()
			pos += length
		case sam.CigarDeletion:
			if length >= cfg.MinIntron {
				closeBlock()
			}
			pos += length
		case sam.CigarInsertion, sam.CigarSoftClipped, sam.CigarHardClipped, sam.CigarPadded:
			// No reference consumption.
		default:
			return sig, fmt.Errorf("unknown %s operation", t)
		}
	}
	closeBlock()
	// Trim noise blocks at either end. Their outer boundary carries no
	// junction evidence, so only the adjacent gap is lost.
	for len(blocks) > 0 && blocks[0].End-blocks[0].Start < cfg.MinBlock {
		blocks = blocks[1:]
	}
	for len(blocks) > 0 && blocks[len(blocks)-1].End-blocks[len(blocks)-1].Start < cfg.MinBlock {
		blocks = blocks[:len(blocks)-1]
	}
	if len(blocks) == 0 {
		return sig, ErrNoAlignment
	}
	sig.Blocks = blocks
	for i := 0; i < len(blocks)-1; i++ {
		sig.Gaps = append(sig.Gaps, model.Junction{Donor: blocks[i].End, Acceptor: blocks[i+1].Start})
	}
	return sig, nil
}
