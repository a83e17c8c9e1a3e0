//
// Copyright (C) 2026 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"

	"git.sr.ht/~vejnar/SpliceClass/lib/model"
)

func WriteReport(pathReport string, exonModel *model.Model, stats *RunStats) error {
	junctions := make([]string, 0, stats.UnknownJunctions.Size())
	for _, j := range stats.UnknownJunctions.List() {
		junctions = append(junctions, j.(string))
	}
	sort.Strings(junctions)

	report, _ := json.MarshalIndent(map[string]interface{}{
		"run_id":                 uuid.New().String(),
		"transcripts":            exonModel.Len(),
		"align_total":            stats.Aligned + stats.Unmapped,
		"align_unmapped":         stats.Unmapped,
		"align_matched":          stats.Matched,
		"align_precursor_only":   stats.PrecursorOnly,
		"align_unknown":          stats.Unknown,
		"align_malformed":        stats.Malformed,
		"junctions_unrecognized": junctions,
	}, "", "  ")
	if pathReport != "-" {
		f, err := os.Create(pathReport)
		if err != nil {
			return err
		}
		f.Write(report)
		return f.Close()
	}
	fmt.Println(string(report))
	return nil
}
