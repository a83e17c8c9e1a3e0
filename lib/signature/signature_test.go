//
// Copyright (C) 2026 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package signature

import (
	"testing"

	"github.com/biogo/hts/sam"

	qt "github.com/frankban/quicktest"

	"git.sr.ht/~vejnar/SpliceClass/lib/model"
)

func record(c *qt.C, pos int, ops ...sam.CigarOp) *sam.Record {
	c.Helper()
	return &sam.Record{Name: "read1", Pos: pos, Cigar: sam.Cigar(ops)}
}

func op(t sam.CigarOpType, n int) sam.CigarOp {
	return sam.NewCigarOp(t, n)
}

func TestFromRecordSingleBlock(t *testing.T) {
	c := qt.New(t)
	sig, err := FromRecord(record(c, 50, op(sam.CigarMatch, 50)), Default)
	c.Assert(err, qt.IsNil)
	c.Assert(sig.Blocks, qt.DeepEquals, []Block{{50, 100}})
	c.Assert(sig.Gaps, qt.HasLen, 0)
	c.Assert(sig.Span(), qt.Equals, Block{50, 100})
}

func TestFromRecordReferenceSkip(t *testing.T) {
	c := qt.New(t)
	sig, err := FromRecord(record(c, 50, op(sam.CigarMatch, 50), op(sam.CigarSkipped, 100), op(sam.CigarMatch, 50)), Default)
	c.Assert(err, qt.IsNil)
	c.Assert(sig.Blocks, qt.DeepEquals, []Block{{50, 100}, {200, 250}})
	c.Assert(sig.Gaps, qt.DeepEquals, []model.Junction{{Donor: 100, Acceptor: 200}})
}

func TestFromRecordDeletionThreshold(t *testing.T) {
	c := qt.New(t)
	// One base below the minimum intron length: folded into the block.
	sig, err := FromRecord(record(c, 50, op(sam.CigarMatch, 30), op(sam.CigarDeletion, 19), op(sam.CigarMatch, 30)), Default)
	c.Assert(err, qt.IsNil)
	c.Assert(sig.Blocks, qt.DeepEquals, []Block{{50, 129}})
	c.Assert(sig.Gaps, qt.HasLen, 0)
	// At the minimum intron length: junction-like.
	sig, err = FromRecord(record(c, 50, op(sam.CigarMatch, 30), op(sam.CigarDeletion, 20), op(sam.CigarMatch, 30)), Default)
	c.Assert(err, qt.IsNil)
	c.Assert(sig.Blocks, qt.DeepEquals, []Block{{50, 80}, {100, 130}})
	c.Assert(sig.Gaps, qt.DeepEquals, []model.Junction{{Donor: 80, Acceptor: 100}})
}

func TestFromRecordInsertionSoftClip(t *testing.T) {
	c := qt.New(t)
	// Neither advances the reference cursor nor breaks the block.
	sig, err := FromRecord(record(c, 50, op(sam.CigarSoftClipped, 5), op(sam.CigarMatch, 30), op(sam.CigarInsertion, 3), op(sam.CigarMatch, 30), op(sam.CigarSoftClipped, 8)), Default)
	c.Assert(err, qt.IsNil)
	c.Assert(sig.Blocks, qt.DeepEquals, []Block{{50, 110}})
}

func TestFromRecordAdjacentSkips(t *testing.T) {
	c := qt.New(t)
	// Back-to-back reference gaps accumulate: no zero-length block.
	sig, err := FromRecord(record(c, 50, op(sam.CigarMatch, 30), op(sam.CigarSkipped, 50), op(sam.CigarSkipped, 50), op(sam.CigarMatch, 30)), Default)
	c.Assert(err, qt.IsNil)
	c.Assert(sig.Blocks, qt.DeepEquals, []Block{{50, 80}, {180, 210}})
	c.Assert(sig.Gaps, qt.DeepEquals, []model.Junction{{Donor: 80, Acceptor: 180}})
}

func TestFromRecordTrimsShortOuterBlocks(t *testing.T) {
	c := qt.New(t)
	sig, err := FromRecord(record(c, 50, op(sam.CigarMatch, 5), op(sam.CigarSkipped, 100), op(sam.CigarMatch, 50)), Default)
	c.Assert(err, qt.IsNil)
	c.Assert(sig.Blocks, qt.DeepEquals, []Block{{155, 205}})
	c.Assert(sig.Gaps, qt.HasLen, 0)

	_, err = FromRecord(record(c, 50, op(sam.CigarMatch, 5)), Default)
	c.Assert(err, qt.ErrorIs, ErrNoAlignment)
}

func TestFromRecordMalformed(t *testing.T) {
	c := qt.New(t)
	_, err := FromRecord(record(c, 50), Default)
	c.Assert(err, qt.ErrorIs, ErrNoAlignment)

	_, err = FromRecord(record(c, 50, op(sam.CigarBack, 10), op(sam.CigarMatch, 30)), Default)
	c.Assert(err, qt.IsNotNil)
}

func TestFromRecordMDTag(t *testing.T) {
	c := qt.New(t)
	r := record(c, 50, op(sam.CigarMatch, 30), op(sam.CigarDeletion, 2), op(sam.CigarMatch, 30))
	aux, err := sam.NewAux(sam.NewTag("MD"), "30^AC28G1")
	c.Assert(err, qt.IsNil)
	r.AuxFields = sam.AuxFields{aux}
	sig, err := FromRecord(r, Default)
	c.Assert(err, qt.IsNil)
	c.Assert(sig.Blocks, qt.DeepEquals, []Block{{50, 112}})

	// MD disagreeing with the CIGAR footprint marks the record malformed.
	r = record(c, 50, op(sam.CigarMatch, 60))
	aux, err = sam.NewAux(sam.NewTag("MD"), "50")
	c.Assert(err, qt.IsNil)
	r.AuxFields = sam.AuxFields{aux}
	_, err = FromRecord(r, Default)
	c.Assert(err, qt.IsNotNil)
}

func TestParseMD(t *testing.T) {
	c := qt.New(t)
	ops, err := parseMD("10A5^ACG3")
	c.Assert(err, qt.IsNil)
	c.Assert(ops, qt.DeepEquals, []mdOp{
		{Op: mdMatch, Length: 10},
		{Op: mdMismatch, Length: 1},
		{Op: mdMatch, Length: 5},
		{Op: mdDeletion, Length: 3},
		{Op: mdMatch, Length: 3},
	})

	_, err = parseMD("10*5")
	c.Assert(err, qt.IsNotNil)
	_, err = parseMD("10^5")
	c.Assert(err, qt.IsNotNil)
}
