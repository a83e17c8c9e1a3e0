//
// Copyright (C) 2026 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package model

import (
	"github.com/biogo/store/interval"
)

type spanInterval struct {
	start, end int
	uid        uintptr
	transcript *Transcript
}

func (iv spanInterval) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing.
	return iv.end > b.Start && iv.start < b.End
}

func (iv spanInterval) ID() uintptr {
	return iv.uid
}

func (iv spanInterval) Range() interval.IntRange {
	return interval.IntRange{Start: iv.start, End: iv.end}
}

// spanTree indexes transcript spans of one chromosome.
type spanTree struct {
	tree interval.IntTree
	uid  uintptr
}

func newSpanTree() *spanTree {
	return &spanTree{}
}

func (s *spanTree) Insert(t *Transcript) {
	iv := spanInterval{start: t.Span.Start, end: t.Span.End, uid: s.uid, transcript: t}
	s.uid++
	// Insertion into an IntTree only fails on duplicate IDs.
	_ = s.tree.Insert(iv, false)
}

func (s *spanTree) AdjustRanges() {
	s.tree.AdjustRanges()
}

func (s *spanTree) Get(start, end int) []*Transcript {
	var transcripts []*Transcript
	for _, iv := range s.tree.Get(spanInterval{start: start, end: end}) {
		transcripts = append(transcripts, iv.(spanInterval).transcript)
	}
	return transcripts
}
