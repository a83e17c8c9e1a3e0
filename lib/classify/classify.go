//
// Copyright (C) 2026 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package classify matches read splice signatures against the exon model.
package classify

import (
	"sort"
	"strings"

	"git.sr.ht/~vejnar/SpliceClass/lib/model"
	"git.sr.ht/~vejnar/SpliceClass/lib/signature"
)

const (
	// PrecursorID is the output token for reads consistent with
	// unspliced precursor RNA.
	PrecursorID = "pre-mRNA"
	// UnknownTag is the output token for reads matching nothing.
	UnknownTag = "*"
)

// Result is the classification of one alignment: the transcripts the read is
// consistent with, plus whether its coverage is consistent with unspliced
// precursor RNA.
type Result struct {
	Transcripts []string
	Precursor   bool
}

// Unknown reports whether the read matched no transcript and carries no
// precursor evidence.
func (r Result) Unknown() bool {
	return len(r.Transcripts) == 0 && !r.Precursor
}

// Tag serializes the result to the TR tag value: matched transcript ids in
// ascending lexical order, with the precursor token appended when the
// precursor flag is set, or "*" when the read matched nothing.
func (r Result) Tag() string {
	if r.Unknown() {
		return UnknownTag
	}
	tokens := r.Transcripts
	if r.Precursor {
		tokens = append(append([]string{}, tokens...), PrecursorID)
	}
	return strings.Join(tokens, ",")
}

// Read classifies one read signature against the model. Classification is a
// pure function of the model and the signature: the model is never written,
// so any number of calls may run concurrently against it.
func Read(m *model.Model, chrom string, sig signature.Signature) Result {
	var res Result
	if m.Len() == 0 || len(sig.Blocks) == 0 {
		return res
	}
	span := sig.Span()
	candidates := m.Overlapping(chrom, span.Start, span.End)
	if len(sig.Gaps) == 0 {
		// Gap-free coverage: a single block. Inside one exon, the read is
		// consistent with mature mRNA; covering intronic bases without a
		// splice gap, with unspliced precursor RNA.
		b := sig.Blocks[0]
		for _, t := range candidates {
			if b.Start < t.Span.Start || b.End > t.Span.End {
				continue
			}
			if t.ExonicRun(b.Start, b.End) {
				res.Transcripts = append(res.Transcripts, t.ID)
			} else {
				res.Precursor = true
			}
		}
	} else {
		// A spliced read is never precursor evidence. A gap matching no
		// known junction at all rules out every transcript.
		for _, g := range sig.Gaps {
			if !m.HasJunction(g) {
				return res
			}
		}
		for _, t := range candidates {
			if matchesJunctionRun(t, sig.Gaps) {
				res.Transcripts = append(res.Transcripts, t.ID)
			}
		}
	}
	sort.Strings(res.Transcripts)
	return res
}

// matchesJunctionRun reports whether gaps equal, in order, a contiguous run
// of the transcript's junctions. Comparison is exact: no skipping, no
// reordering, no positional tolerance. Outer block boundaries are not
// compared, so reads may start or end mid-exon.
func matchesJunctionRun(t *model.Transcript, gaps []model.Junction) bool {
	for k := 0; k+len(gaps) <= len(t.Junctions); k++ {
		if t.Junctions[k] != gaps[0] {
			continue
		}
		run := true
		for i := 1; i < len(gaps); i++ {
			if t.Junctions[k+i] != gaps[i] {
				run = false
				break
			}
		}
		if run {
			return true
		}
	}
	return false
}
