//
// Copyright (C) 2026 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"time"

	"git.sr.ht/~vejnar/SpliceClass/lib/classify"
	"git.sr.ht/~vejnar/SpliceClass/lib/model"
	"git.sr.ht/~vejnar/SpliceClass/lib/signature"
	"git.sr.ht/~vejnar/SpliceClass/lib/zio"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"golang.org/x/sync/errgroup"

	"gopkg.in/fatih/set.v0"
)

const sBatchLength = 64

var tagTR = sam.NewTag("TR")

// PathSAM stores Path to SAM (Binary=false) or BAM (Binary=true) file.
type PathSAM struct {
	Path   string
	Binary bool
}

// RunStats counts per-read classification outcomes.
type RunStats struct {
	Aligned       uint64
	Matched       uint64
	PrecursorOnly uint64
	Unknown       uint64
	Malformed     uint64
	Unmapped      uint64

	// UnknownJunctions collects the distinct junction-like gaps seen in
	// reads that match no known junction.
	UnknownJunctions set.Interface
}

func (s *RunStats) add(o RunStats) {
	s.Aligned += o.Aligned
	s.Matched += o.Matched
	s.PrecursorOnly += o.PrecursorOnly
	s.Unknown += o.Unknown
	s.Malformed += o.Malformed
	s.Unmapped += o.Unmapped
}

type batch struct {
	seq   uint64
	reads []*sam.Record
	stats RunStats
}

func openSAM(pathSAM PathSAM, cmd []string, nWorker1 int) (closer io.Closer, pp io.ReadCloser, rr sam.RecordReader, header *sam.Header, err error) {
	if pathSAM.Binary {
		var f *os.File
		f, err = os.Open(pathSAM.Path)
		if err != nil {
			return
		}
		var br *bam.Reader
		br, err = bam.NewReader(f, nWorker1)
		if err != nil {
			f.Close()
			return
		}
		return f, nil, br, br.Header(), nil
	}
	if len(cmd) > 0 {
		cmd = append(cmd, pathSAM.Path)
		p := exec.Command(cmd[0], cmd[1:]...)
		if pp, err = p.StdoutPipe(); err != nil {
			return
		}
		if err = p.Start(); err != nil {
			return
		}
		var sr *sam.Reader
		sr, err = sam.NewReader(pp)
		if err != nil {
			return
		}
		return nil, pp, sr, sr.Header(), nil
	}
	var zr *zio.Reader
	zr, err = zio.Open(pathSAM.Path)
	if err != nil {
		return
	}
	var sr *sam.Reader
	sr, err = sam.NewReader(zr)
	if err != nil {
		zr.Close()
		return
	}
	return zr, nil, sr, sr.Header(), nil
}

// setTag replaces or appends the tagged field on the record.
func setTag(r *sam.Record, tag sam.Tag, value string) error {
	for i, aux := range r.AuxFields {
		if aux.Tag() == tag {
			r.AuxFields = append(r.AuxFields[:i], r.AuxFields[i+1:]...)
			break
		}
	}
	aux, err := sam.NewAux(tag, value)
	if err != nil {
		return err
	}
	r.AuxFields = append(r.AuxFields, aux)
	return nil
}

// annotateRead classifies one alignment and attaches the TR tag. Failures
// are record-local: the read is annotated unknown and processing continues.
func annotateRead(r *sam.Record, exonModel *model.Model, cfg signature.Config, stats *RunStats) error {
	if r.Ref == nil || r.Flags&sam.Unmapped != 0 {
		stats.Unmapped++
		return setTag(r, tagTR, classify.UnknownTag)
	}
	stats.Aligned++
	sig, err := signature.FromRecord(r, cfg)
	if err != nil {
		log.Printf("Warning: %s: %v, annotating %s", r.Name, err, classify.UnknownTag)
		stats.Malformed++
		return setTag(r, tagTR, classify.UnknownTag)
	}
	chrom := r.Ref.Name()
	res := classify.Read(exonModel, chrom, sig)
	switch {
	case len(res.Transcripts) > 0:
		stats.Matched++
	case res.Precursor:
		stats.PrecursorOnly++
	default:
		stats.Unknown++
		for _, g := range sig.Gaps {
			if !exonModel.HasJunction(g) {
				stats.UnknownJunctions.Add(fmt.Sprintf("%s:%d-%d", chrom, g.Donor, g.Acceptor))
			}
		}
	}
	return setTag(r, tagTR, res.Tag())
}

// AnnotateReads streams the alignment input through the classifier and
// writes each record back out with its TR tag, preserving input order.
func AnnotateReads(pathSAM PathSAM, SAMCmdIn []string, exonModel *model.Model, cfg signature.Config, pathSAMOut string, nWorker int, timeStart time.Time, verboseLevel int) (*RunStats, error) {
	stats := &RunStats{UnknownJunctions: set.New(set.ThreadSafe)}

	// Workers
	nWorker1 := max(1, nWorker/2)
	nWorker2 := max(1, nWorker-nWorker1)

	// Open SAM
	closer, pp, rr, header, err := openSAM(pathSAM, SAMCmdIn, nWorker1)
	if err != nil {
		return stats, err
	}
	if closer != nil {
		defer closer.Close()
	}
	if pp != nil {
		defer pp.Close()
	}

	// Open output SAM
	var out io.Writer = os.Stdout
	if pathSAMOut != "-" {
		zw, err := zio.Create(pathSAMOut)
		if err != nil {
			return stats, err
		}
		defer zw.Close()
		out = zw
	}
	samWriter, err := sam.NewWriter(out, header, sam.FlagDecimal)
	if err != nil {
		return stats, err
	}

	// Init context
	ctx := context.Background()
	// Start sync errgroup
	g, gctx := errgroup.WithContext(ctx)

	// Start alignment and receiving channels
	chAln := make(chan *batch, nWorker*10)
	chOut := make(chan *batch, nWorker*10)

	g.Go(func() error {
		defer close(chAln)
		var nAlign, seq uint64
		timeLog := time.Now()
		reads := make([]*sam.Record, 0, sBatchLength)
		for {
			aread, err := rr.Read()
			if err == io.EOF {
				break
			} else if err != nil {
				return err
			}
			reads = append(reads, aread)
			nAlign++
			if len(reads) == sBatchLength {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case chAln <- &batch{seq: seq, reads: reads}:
				}
				seq++
				reads = make([]*sam.Record, 0, sBatchLength)
			}
			if verboseLevel > 0 {
				timeNow := time.Now()
				if timeNow.Sub(timeLog).Minutes() > 1. {
					fmt.Fprintf(os.Stderr, "%.1fmin - %d align. - %.2f Ma/hr\n", timeNow.Sub(timeStart).Minutes(), nAlign, (float64(nAlign)/timeNow.Sub(timeStart).Hours())/1000000.)
					timeLog = timeNow
				}
			}
		}
		// Send last batch
		if len(reads) > 0 {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case chAln <- &batch{seq: seq, reads: reads}:
			}
		}
		return nil
	})

	// Spawn worker goroutine(s)
	g.Go(func() error {
		defer close(chOut)
		wg, wgctx := errgroup.WithContext(gctx)
		for i := 0; i < nWorker2; i++ {
			wg.Go(func() error {
				for b := range chAln {
					b.stats.UnknownJunctions = stats.UnknownJunctions
					for _, aread := range b.reads {
						if err := annotateRead(aread, exonModel, cfg, &b.stats); err != nil {
							return err
						}
					}
					select {
					case <-wgctx.Done():
						return wgctx.Err()
					case chOut <- b:
					}
				}
				return nil
			})
		}
		return wg.Wait()
	})

	// Write batches back out in input order
	var nextSeq uint64
	pending := make(map[uint64]*batch)
	for b := range chOut {
		pending[b.seq] = b
		for {
			ready, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			for _, aread := range ready.reads {
				if err := samWriter.Write(aread); err != nil {
					return stats, err
				}
			}
			stats.add(ready.stats)
			nextSeq++
		}
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

func max(x, y int) int {
	if x > y {
		return x
	}
	return y
}
