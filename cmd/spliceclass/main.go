//
// Copyright (C) 2026 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"git.sr.ht/~vejnar/SpliceClass/lib/gtf"
	"git.sr.ht/~vejnar/SpliceClass/lib/model"
	"git.sr.ht/~vejnar/SpliceClass/lib/signature"
)

var version = "DEV"

func main() {
	// Arguments: General
	var pathReport string
	var nWorker, verboseLevel int
	var verbose, printVersion bool
	flag.StringVar(&pathReport, "path_report", "", "Write JSON report to path (stdout with -)")
	flag.IntVar(&nWorker, "num_worker", 1, "Number of worker(s)")
	flag.IntVar(&verboseLevel, "verbose_level", 0, "Verbose level")
	flag.BoolVar(&verbose, "verbose", false, "Verbose")
	flag.BoolVar(&printVersion, "version", false, "Print version and quit")
	// Arguments: Input
	var pathSAMRaw, pathBAMRaw, rawSAMCmdIn, pathGTF string
	flag.StringVar(&pathSAMRaw, "path_sam", "", "Path to SAM file")
	flag.StringVar(&pathBAMRaw, "path_bam", "", "Path to BAM file")
	flag.StringVar(&rawSAMCmdIn, "sam_command_in", "", "Command line to execute for opening the SAM file (comma separated)")
	flag.StringVar(&pathGTF, "path_gtf", "", "Path to GTF annotation file")
	// Arguments: Classification
	var minIntron, minBlock int
	flag.IntVar(&minIntron, "min_intron", signature.DefaultMinIntron, "Minimum deletion length to count as a splice junction")
	flag.IntVar(&minBlock, "min_block", signature.DefaultMinBlock, "Minimum length of leading and trailing aligned blocks")
	// Arguments: Output
	var pathSAMOut string
	flag.StringVar(&pathSAMOut, "path_sam_out", "-", "Path to annotated SAM output (stdout with -, compressed with .gz or .lz4)")
	// Arguments: Parse
	flag.Parse()

	// Version
	if printVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Verbose
	if verbose && verboseLevel == 0 {
		verboseLevel = 1
	}

	// Max CPU
	runtime.GOMAXPROCS(nWorker * 2)

	// Time start
	var timeStart time.Time
	if verboseLevel > 0 {
		timeStart = time.Now()
	}

	// Check arguments
	if len(pathGTF) == 0 {
		log.Fatal("No GTF input")
	} else if _, err := os.Stat(pathGTF); os.IsNotExist(err) {
		log.Fatalln(pathGTF, "not found")
	}
	var pathSAM PathSAM
	if len(pathSAMRaw) > 0 {
		pathSAM = PathSAM{Path: pathSAMRaw, Binary: false}
	} else if len(pathBAMRaw) > 0 {
		pathSAM = PathSAM{Path: pathBAMRaw, Binary: true}
	} else {
		log.Fatal("No SAM/BAM input")
	}
	if _, err := os.Stat(pathSAM.Path); os.IsNotExist(err) {
		log.Fatalln(pathSAM.Path, "not found")
	}
	var SAMCmdIn []string
	if len(rawSAMCmdIn) > 0 {
		SAMCmdIn = strings.Split(rawSAMCmdIn, ",")
	}
	if minIntron < 1 {
		log.Fatal("min_intron must be at least 1")
	}

	// Open annotation
	records, err := gtf.OpenExons(pathGTF)
	if err != nil {
		log.Fatal(err)
	}
	exonModel := model.Build(records)
	if exonModel.Len() == 0 {
		log.Printf("Warning: %s yields no usable transcript, every read will be annotated %s", pathGTF, "*")
	}
	if verboseLevel > 0 {
		timeNow := time.Now()
		fmt.Fprintf(os.Stderr, "%.1fmin - Model with %d transcript(s)\n", timeNow.Sub(timeStart).Minutes(), exonModel.Len())
	}

	// Classify & Annotate alignments
	cfg := signature.Config{MinIntron: minIntron, MinBlock: minBlock}
	stats, err := AnnotateReads(pathSAM, SAMCmdIn, exonModel, cfg, pathSAMOut, nWorker, timeStart, verboseLevel)
	if err != nil {
		log.Fatal(err)
	}

	// Output: Report
	if pathReport != "" {
		if err := WriteReport(pathReport, exonModel, stats); err != nil {
			log.Fatal(err)
		}
	}

	// Verbose
	if verboseLevel > 0 {
		timeEnd := time.Now()
		fmt.Fprintf(os.Stderr, "%.1fmin - Done %d align.\n", timeEnd.Sub(timeStart).Minutes(), stats.Aligned+stats.Unmapped)
	}
}
