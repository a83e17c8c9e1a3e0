//
// Copyright (C) 2026 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package gtf

import (
	"bufio"
	"io"
	"log"
	"strconv"
	"strings"

	"git.sr.ht/~vejnar/SpliceClass/lib/model"
	"git.sr.ht/~vejnar/SpliceClass/lib/zio"
)

func parseStrand(raw string) int8 {
	if raw == "+" {
		return 1
	}
	if raw == "-" {
		return -1
	}
	return 0
}

// parseTranscriptID extracts the transcript_id value from a GTF attribute
// field.
func parseTranscriptID(attributes string) string {
	for _, attribute := range strings.Split(attributes, ";") {
		attribute = strings.TrimSpace(attribute)
		if strings.HasPrefix(attribute, "transcript_id") {
			v := strings.TrimPrefix(attribute, "transcript_id")
			v = strings.ReplaceAll(v, "\"", "")
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// ReadExons parses GTF input and returns its exon records converted to
// 0-based half-open coordinates. Lines with a feature type other than "exon"
// are skipped. Malformed exon lines are dropped with a warning.
func ReadExons(r io.Reader) (records []model.ExonRecord, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var nLine int
	for scanner.Scan() {
		nLine++
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || len(strings.TrimSpace(line)) == 0 {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 9 {
			log.Printf("Warning: GTF line %d has %d field(s), dropping record", nLine, len(fields))
			continue
		}
		if fields[2] != "exon" {
			continue
		}
		start, errStart := strconv.Atoi(fields[3])
		end, errEnd := strconv.Atoi(fields[4])
		if errStart != nil || errEnd != nil {
			log.Printf("Warning: GTF line %d has non-numeric coordinates, dropping record", nLine)
			continue
		}
		// GTF coordinates are 1-based inclusive. Some annotations list
		// minus-strand exons end-first.
		if start > end {
			start, end = end, start
		}
		records = append(records, model.ExonRecord{
			TranscriptID: parseTranscriptID(fields[8]),
			Chrom:        fields[0],
			Strand:       parseStrand(fields[6]),
			Start:        start - 1,
			End:          end,
		})
	}
	if err = scanner.Err(); err != nil {
		return
	}
	return
}

// OpenExons parses the GTF file at path, transparently decompressing gzip
// and LZ4 input by extension.
func OpenExons(path string) (records []model.ExonRecord, err error) {
	r, err := zio.Open(path)
	if err != nil {
		return
	}
	defer r.Close()
	return ReadExons(r)
}
