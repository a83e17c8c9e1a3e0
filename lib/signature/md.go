//
// Copyright (C) 2026 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package signature

import (
	"fmt"
	"strconv"
	"unicode"

	"github.com/biogo/hts/sam"
)

const (
	mdMatch = iota
	mdMismatch
	mdDeletion
)

type mdOp struct {
	Op     int
	Length int
}

var tagMD = []byte("MD")

// parseMD parses an MD attribute into match, mismatch and deletion blocks.
func parseMD(raw string) (ops []mdOp, err error) {
	i := 0
	for i < len(raw) {
		l := raw[i]
		if l == '^' {
			i++
			n := 0
			for i < len(raw) && unicode.IsLetter(rune(raw[i])) {
				n++
				i++
			}
			if n == 0 {
				return ops, fmt.Errorf("empty deletion in MD tag %q", raw)
			}
			ops = append(ops, mdOp{Op: mdDeletion, Length: n})
		} else if unicode.IsLetter(rune(l)) {
			ops = append(ops, mdOp{Op: mdMismatch, Length: 1})
			i++
		} else if unicode.IsNumber(rune(l)) {
			var block []byte
			for i < len(raw) && unicode.IsNumber(rune(raw[i])) {
				block = append(block, raw[i])
				i++
			}
			step, err := strconv.Atoi(string(block))
			if err != nil {
				return ops, err
			}
			ops = append(ops, mdOp{Op: mdMatch, Length: step})
		} else {
			return ops, fmt.Errorf("unexpected %q in MD tag %q", l, raw)
		}
	}
	return ops, nil
}

// validateMD checks the MD tag, when present, against the reference
// footprint of the CIGAR: aligned bases in the MD tag must cover the
// aligned operations exactly, and deleted bases the deletion operations.
func validateMD(r *sam.Record) error {
	tag, found := r.Tag(tagMD)
	if !found {
		return nil
	}
	raw, ok := tag.Value().(string)
	if !ok {
		return fmt.Errorf("non-string MD tag")
	}
	ops, err := parseMD(raw)
	if err != nil {
		return err
	}
	var mdAligned, mdDeleted int
	for _, op := range ops {
		if op.Op == mdDeletion {
			mdDeleted += op.Length
		} else {
			mdAligned += op.Length
		}
	}
	var cigarAligned, cigarDeleted int
	for _, co := range r.Cigar {
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			cigarAligned += co.Len()
		case sam.CigarDeletion:
			cigarDeleted += co.Len()
		}
	}
	if mdAligned != cigarAligned || mdDeleted != cigarDeleted {
		return fmt.Errorf("MD tag %q covers %d aligned and %d deleted base(s), CIGAR %s has %d and %d", raw, mdAligned, mdDeleted, r.Cigar, cigarAligned, cigarDeleted)
	}
	return nil
}
