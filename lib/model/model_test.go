//
// Copyright (C) 2026 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package model

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestBuildDerivesJunctions(t *testing.T) {
	c := qt.New(t)
	// Exons deliberately out of order.
	m := Build([]ExonRecord{
		{TranscriptID: "NM_0001", Chrom: "chrX", Strand: 1, Start: 200, End: 300},
		{TranscriptID: "NM_0001", Chrom: "chrX", Strand: 1, Start: 0, End: 100},
	})
	c.Assert(m.Len(), qt.Equals, 1)
	tr := m.Transcripts["NM_0001"]
	c.Assert(tr, qt.IsNotNil)
	c.Assert(tr.Exons, qt.DeepEquals, []Exon{{0, 100}, {200, 300}})
	c.Assert(tr.Junctions, qt.DeepEquals, []Junction{{Donor: 100, Acceptor: 200}})
	c.Assert(tr.Span, qt.Equals, Exon{0, 300})
	c.Assert(m.HasJunction(Junction{Donor: 100, Acceptor: 200}), qt.IsTrue)
	c.Assert(m.HasJunction(Junction{Donor: 100, Acceptor: 201}), qt.IsFalse)
}

func TestBuildSingleExon(t *testing.T) {
	c := qt.New(t)
	m := Build([]ExonRecord{
		{TranscriptID: "NM_0002", Chrom: "chrX", Start: 10, End: 50},
	})
	tr := m.Transcripts["NM_0002"]
	c.Assert(tr.Junctions, qt.HasLen, 0)
	c.Assert(tr.Span, qt.Equals, Exon{10, 50})
}

func TestBuildDropsOverlappingTranscript(t *testing.T) {
	c := qt.New(t)
	m := Build([]ExonRecord{
		{TranscriptID: "NM_0003", Chrom: "chrX", Start: 0, End: 100},
		{TranscriptID: "NM_0003", Chrom: "chrX", Start: 50, End: 300},
		{TranscriptID: "NM_0004", Chrom: "chrX", Start: 0, End: 100},
	})
	// Never partially included.
	c.Assert(m.Transcripts["NM_0003"], qt.IsNil)
	c.Assert(m.Transcripts["NM_0004"], qt.IsNotNil)
	c.Assert(m.Len(), qt.Equals, 1)
}

func TestBuildDropsBadRecords(t *testing.T) {
	c := qt.New(t)
	m := Build([]ExonRecord{
		{TranscriptID: "", Chrom: "chrX", Start: 0, End: 100},
		{TranscriptID: "NM_0005", Chrom: "chrX", Start: 100, End: 100},
		{TranscriptID: "NM_0005", Chrom: "chrX", Start: 200, End: 150},
		{TranscriptID: "NM_0006", Chrom: "chrX", Start: 0, End: 100},
		{TranscriptID: "NM_0006", Chrom: "chr7", Start: 200, End: 300},
	})
	// NM_0005 loses both exons, NM_0006 straddles chromosomes.
	c.Assert(m.Len(), qt.Equals, 0)
}

func TestExonicRun(t *testing.T) {
	c := qt.New(t)
	m := Build([]ExonRecord{
		{TranscriptID: "NM_0001", Chrom: "chrX", Start: 0, End: 100},
		{TranscriptID: "NM_0001", Chrom: "chrX", Start: 200, End: 300},
	})
	tr := m.Transcripts["NM_0001"]
	c.Assert(tr.ExonicRun(0, 100), qt.IsTrue)
	c.Assert(tr.ExonicRun(50, 100), qt.IsTrue)
	c.Assert(tr.ExonicRun(200, 250), qt.IsTrue)
	c.Assert(tr.ExonicRun(50, 250), qt.IsFalse)
	// Wholly intronic.
	c.Assert(tr.ExonicRun(120, 180), qt.IsFalse)
	// Last exonic base versus first intronic one.
	c.Assert(tr.ExonicRun(99, 100), qt.IsTrue)
	c.Assert(tr.ExonicRun(99, 101), qt.IsFalse)
}

func TestOverlapping(t *testing.T) {
	c := qt.New(t)
	m := Build([]ExonRecord{
		{TranscriptID: "NM_0001", Chrom: "chrX", Start: 0, End: 100},
		{TranscriptID: "NM_0001", Chrom: "chrX", Start: 200, End: 300},
		{TranscriptID: "NM_0002", Chrom: "chr7", Start: 0, End: 100},
	})
	hits := m.Overlapping("chrX", 50, 60)
	c.Assert(hits, qt.HasLen, 1)
	c.Assert(hits[0].ID, qt.Equals, "NM_0001")
	// Span overlap includes intronic intervals.
	c.Assert(m.Overlapping("chrX", 120, 180), qt.HasLen, 1)
	c.Assert(m.Overlapping("chrX", 300, 400), qt.HasLen, 0)
	c.Assert(m.Overlapping("chr2", 50, 60), qt.HasLen, 0)
}
