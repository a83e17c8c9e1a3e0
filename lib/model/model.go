//
// Copyright (C) 2026 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package model

import (
	"log"
	"sort"

	"github.com/willf/bitset"

	"gopkg.in/fatih/set.v0"
)

// Exon is a genomic interval, 0-based half-open.
type Exon struct {
	Start, End int
}

// ExonRecord is one exon assignment as read from the annotation input,
// 0-based half-open.
type ExonRecord struct {
	TranscriptID string
	Chrom        string
	Strand       int8
	Start, End   int
}

// Junction is the coordinate pair of a spliced-out intron: Donor is the
// half-open end of the upstream exon, Acceptor the start of the downstream
// exon.
type Junction struct {
	Donor, Acceptor int
}

// Transcript is one splice variant: its exons sorted ascending and
// non-overlapping, with derived junctions and overall genomic span.
// Immutable once built.
type Transcript struct {
	ID        string
	Chrom     string
	Strand    int8
	Exons     []Exon
	Junctions []Junction
	Span      Exon

	exonic *bitset.BitSet // exonic positions, offset by Span.Start
}

// ExonicRun reports whether every reference base in [start,end) lies within
// the transcript's exons. Both bounds must fall within Span. Since exons
// never touch, a fully exonic run is always inside a single exon.
func (t *Transcript) ExonicRun(start, end int) bool {
	i, found := t.exonic.NextClear(uint(start - t.Span.Start))
	return !found || int(i) >= end-t.Span.Start
}

func newTranscript(id string, chrom string, strand int8, exons []Exon) *Transcript {
	t := &Transcript{ID: id, Chrom: chrom, Strand: strand, Exons: exons}
	t.Span = Exon{Start: exons[0].Start, End: exons[len(exons)-1].End}
	for i := 0; i < len(exons)-1; i++ {
		t.Junctions = append(t.Junctions, Junction{Donor: exons[i].End, Acceptor: exons[i+1].Start})
	}
	t.exonic = bitset.New(uint(t.Span.End - t.Span.Start))
	for _, e := range exons {
		for p := e.Start; p < e.End; p++ {
			t.exonic.Set(uint(p - t.Span.Start))
		}
	}
	return t
}

// Model is the set of known transcripts, read-only after Build. Any number
// of classifications may run against it concurrently.
type Model struct {
	Transcripts map[string]*Transcript

	trees     map[string]*spanTree
	junctions set.Interface
}

// Len returns the number of transcripts.
func (m *Model) Len() int {
	return len(m.Transcripts)
}

// HasJunction reports whether j is a junction of any transcript.
func (m *Model) HasJunction(j Junction) bool {
	return m.junctions.Has(j)
}

// Overlapping returns the transcripts whose span overlaps [start,end) on
// chrom.
func (m *Model) Overlapping(chrom string, start, end int) []*Transcript {
	tree, ok := m.trees[chrom]
	if !ok {
		return nil
	}
	return tree.Get(start, end)
}

// Build groups exon records by transcript, sorts each transcript's exons by
// start and derives junctions, spans and the span tree. Validation failures
// are data-quality conditions, not crashes: the offending record or
// transcript is dropped with a warning and the build continues. A transcript
// is never partially included.
func Build(records []ExonRecord) *Model {
	groups := make(map[string][]ExonRecord)
	dropped := make(map[string]bool)
	var order []string
	for _, rec := range records {
		if rec.TranscriptID == "" {
			log.Printf("Warning: exon [%d,%d) without transcript identifier, dropping record", rec.Start, rec.End)
			continue
		}
		if rec.Start < 0 || rec.Start >= rec.End {
			log.Printf("Warning: %s has malformed exon [%d,%d), dropping record", rec.TranscriptID, rec.Start, rec.End)
			dropped[rec.TranscriptID] = true
			continue
		}
		if _, ok := groups[rec.TranscriptID]; !ok {
			order = append(order, rec.TranscriptID)
		}
		groups[rec.TranscriptID] = append(groups[rec.TranscriptID], rec)
	}
	for id := range dropped {
		if _, ok := groups[id]; !ok {
			log.Printf("Warning: %s has no exon left after filtering, dropping transcript", id)
		}
	}

	m := &Model{
		Transcripts: make(map[string]*Transcript),
		trees:       make(map[string]*spanTree),
		junctions:   set.New(set.NonThreadSafe),
	}
	for _, id := range order {
		recs := groups[id]
		chrom := recs[0].Chrom
		multiChrom := false
		for _, rec := range recs {
			if rec.Chrom != chrom {
				multiChrom = true
				break
			}
		}
		if multiChrom {
			log.Printf("Warning: %s has exons on several chromosomes, dropping transcript", id)
			continue
		}
		exons := make([]Exon, len(recs))
		for i, rec := range recs {
			exons[i] = Exon{Start: rec.Start, End: rec.End}
		}
		sort.Slice(exons, func(i, j int) bool { return exons[i].Start < exons[j].Start })
		overlap := false
		for i := 0; i < len(exons)-1; i++ {
			if exons[i].End > exons[i+1].Start {
				log.Printf("Warning: in %s exon [%d,%d) overlaps [%d,%d), dropping transcript", id, exons[i].Start, exons[i].End, exons[i+1].Start, exons[i+1].End)
				overlap = true
				break
			}
		}
		if overlap {
			continue
		}
		t := newTranscript(id, chrom, recs[0].Strand, exons)
		m.Transcripts[id] = t
		for _, j := range t.Junctions {
			m.junctions.Add(j)
		}
		tree, ok := m.trees[chrom]
		if !ok {
			tree = newSpanTree()
			m.trees[chrom] = tree
		}
		tree.Insert(t)
	}
	for _, tree := range m.trees {
		tree.AdjustRanges()
	}
	return m
}
