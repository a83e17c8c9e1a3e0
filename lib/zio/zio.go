//
// Copyright (C) 2026 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package zio opens files transparently compressed with gzip (.gz) or LZ4
// (.lz4), dispatching on the path extension.
package zio

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"
)

// Reader reads a possibly compressed file.
type Reader struct {
	io.Reader
	f  *os.File
	gz *gzip.Reader
}

func (r *Reader) Close() error {
	if r.gz != nil {
		if err := r.gz.Close(); err != nil {
			r.f.Close()
			return err
		}
	}
	return r.f.Close()
}

// Open opens path for reading.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := &Reader{f: f}
	switch {
	case strings.HasSuffix(path, ".gz"):
		r.gz, err = gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		r.Reader = r.gz
	case strings.HasSuffix(path, ".lz4"):
		r.Reader = lz4.NewReader(f)
	default:
		r.Reader = f
	}
	return r, nil
}

// Writer writes a possibly compressed file. Close flushes the compressor
// before closing the file.
type Writer struct {
	io.Writer
	f *os.File
	c io.Closer
}

func (w *Writer) Close() error {
	if w.c != nil {
		if err := w.c.Close(); err != nil {
			w.f.Close()
			return err
		}
	}
	return w.f.Close()
}

// Create creates path for writing.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := &Writer{f: f}
	switch {
	case strings.HasSuffix(path, ".gz"):
		gz := gzip.NewWriter(f)
		w.Writer, w.c = gz, gz
	case strings.HasSuffix(path, ".lz4"):
		lz := lz4.NewWriter(f)
		w.Writer, w.c = lz, lz
	default:
		w.Writer = f
	}
	return w, nil
}
