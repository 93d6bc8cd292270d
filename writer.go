// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package pdf

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io"
)

// Putter is the subset of [Writer] that object-graph code needs in order to
// allocate references and write objects; it exists so packages that build
// indirect objects (font, graphics, oc, pagetree, ...) don't need to import
// the whole Writer lifecycle.
type Putter interface {
	Alloc() Reference
	Put(ref Reference, obj Object) error
	OpenStream(ref Reference, dict Dict, filters ...FilterInfo) (io.WriteCloser, error)
	GetVersion() Version
}

// Getter is the read-side counterpart of Putter, used by code that walks an
// already-built or parsed object graph (the resource resolver, for
// instance).
type Getter interface {
	Resolve(obj Object) (Object, error)
	GetVersion() Version
}

// Writer assembles a PDF file in memory and serializes it on Close.  Object
// numbers are handed out by [Writer.Alloc] in increasing order, and objects
// are emitted in that same order, which is what lets the Object-Graph
// Builder control emission order simply by choosing allocation order.
//
// Writer follows this module's sticky-error convention: once an operation
// fails, Err is set and every subsequent method becomes a no-op that
// returns the same error, so callers can chain a sequence of Put/OpenStream
// calls and check Err once at the end.
type Writer struct {
	Version Version
	Catalog *Catalog
	Info    *Info

	Err error

	lastRef uint32
	objects map[uint32]Object
	order   []uint32

	out io.Writer

	compress bool
	id0      [16]byte
}

// WriterOptions controls how [NewWriter] configures the writer.
type WriterOptions struct {
	// Compress applies FlateDecode to every stream opened with OpenStream
	// when the caller doesn't pass its own filter list.
	Compress bool
	// ID0 seeds the first element of the trailer's /ID array, meant to
	// distinguish this document from any other the caller produces;
	// callers that care about that (document.Document.Save derives one
	// from document content) should always set it. When nil, NewWriter
	// falls back to a fixed value that is identical for every Writer, so
	// the file is still well-formed but no longer distinguishable from
	// another unseeded one.
	ID0 []byte
}

// NewWriter creates a Writer that will serialize to out when Close is
// called.
func NewWriter(out io.Writer, opts *WriterOptions) *Writer {
	w := &Writer{
		Version:  V1_7,
		objects:  make(map[uint32]Object),
		out:      out,
		compress: true,
	}
	if opts != nil {
		w.compress = opts.Compress
		if opts.ID0 != nil {
			copy(w.id0[:], opts.ID0)
		}
	}
	if w.id0 == ([16]byte{}) {
		// No ID0 supplied: fall back to a fixed value so the trailer is
		// never literally all-zero. This is the same for every unseeded
		// Writer, so it does not distinguish one document from another;
		// callers that need that should pass WriterOptions.ID0.
		sum := md5.Sum([]byte(w.Version.String()))
		w.id0 = sum
	}
	return w
}

func (w *Writer) GetVersion() Version { return w.Version }

// Alloc reserves the next object number.  It never fails.
func (w *Writer) Alloc() Reference {
	w.lastRef++
	return Reference{Number: w.lastRef, Generation: 0}
}

// Put stores a direct (non-stream) object under ref, which must have been
// returned by Alloc and not already used.
func (w *Writer) Put(ref Reference, obj Object) error {
	if w.Err != nil {
		return w.Err
	}
	if _, ok := w.objects[ref.Number]; ok {
		w.Err = NewError(ErrSerialization, "object %d written twice", ref.Number)
		return w.Err
	}
	w.objects[ref.Number] = obj
	w.order = append(w.order, ref.Number)
	return nil
}

// streamWriter buffers stream bytes so compression and /Length can be
// computed once the caller finishes writing.
type streamWriter struct {
	w       *Writer
	ref     Reference
	dict    Dict
	filters []FilterInfo
	buf     bytes.Buffer
}

func (sw *streamWriter) Write(p []byte) (int, error) { return sw.buf.Write(p) }

func (sw *streamWriter) Close() error {
	w := sw.w
	if w.Err != nil {
		return w.Err
	}
	data := sw.buf.Bytes()
	dict := Dict{}
	for k, v := range sw.dict {
		dict[k] = v
	}
	// A lone zero-value FilterInfo is the "force raw output" sentinel
	// documented on OpenStream: it carries no filter name to write and
	// applies no compression.
	if !(len(sw.filters) == 1 && sw.filters[0].Name == "") {
		if len(sw.filters) == 1 {
			dict["Filter"] = sw.filters[0].Name
		} else if len(sw.filters) > 1 {
			names := make(Array, len(sw.filters))
			for i, f := range sw.filters {
				names[i] = f.Name
			}
			dict["Filter"] = names
		}
		for _, f := range sw.filters {
			if f.Name == "FlateDecode" {
				data = deflate(data)
			}
		}
	}
	dict["Length"] = Integer(len(data))
	return w.Put(sw.ref, &Stream{Dict: dict, Data: data})
}

// OpenStream begins a new stream object at ref.  If filters is empty and
// the writer was constructed with Compress, FlateDecode is applied
// automatically; pass an explicit empty slice-of-one sentinel
// (FilterInfo{}) to force raw output.
func (w *Writer) OpenStream(ref Reference, dict Dict, filters ...FilterInfo) (io.WriteCloser, error) {
	if w.Err != nil {
		return nil, w.Err
	}
	if filters == nil && w.compress {
		filters = []FilterInfo{FilterFlate}
	}
	return &streamWriter{w: w, ref: ref, dict: dict, filters: filters}, nil
}

// Resolve returns obj unchanged; this Writer never holds indirection that
// needs following because callers always operate on the in-memory object
// graph before objects are Put.
func (w *Writer) Resolve(obj Object) (Object, error) { return obj, nil }

// Close emits the header, every Put object in allocation order, the xref
// table and the trailer, then flushes to the underlying writer.
func (w *Writer) Close() error {
	if w.Err != nil {
		return w.Err
	}
	if w.Catalog == nil {
		w.Err = NewError(ErrSerialization, "no catalog set")
		return w.Err
	}

	catRef := w.Alloc()
	if err := w.Put(catRef, w.Catalog.AsDict()); err != nil {
		return err
	}
	var infoRef Reference
	if w.Info != nil {
		infoRef = w.Alloc()
		if err := w.Put(infoRef, w.Info.AsDict()); err != nil {
			return err
		}
	}

	var out bytes.Buffer
	out.Write(header)

	offsets := make(map[uint32]int64)
	maxNum := w.lastRef
	for num := uint32(1); num <= maxNum; num++ {
		obj, ok := w.objects[num]
		if !ok {
			continue
		}
		offsets[num] = int64(out.Len())
		writeIndirect(&out, num, obj, w)
	}

	xrefOffset := int64(out.Len())
	fmt.Fprintf(&out, "xref\n0 %d\n", maxNum+1)
	fmt.Fprintf(&out, "%010d %05d f \n", 0, 65535)
	for n := uint32(1); n <= maxNum; n++ {
		if off, ok := offsets[n]; ok {
			fmt.Fprintf(&out, "%010d %05d n \n", off, 0)
		} else {
			fmt.Fprintf(&out, "%010d %05d f \n", 0, 0)
		}
	}

	id1 := md5.Sum(out.Bytes())
	trailer := Dict{
		"Size": Integer(maxNum + 1),
		"Root": catRef,
		"ID":   Array{String(w.id0[:]), String(id1[:])},
	}
	if w.Info != nil {
		trailer["Info"] = infoRef
	}
	out.WriteString("trailer\n")
	out.WriteString(trailer.PDF(w))
	out.WriteByte('\n')
	fmt.Fprintf(&out, "startxref\n%d\n%%%%EOF\n", xrefOffset)

	_, err := w.out.Write(out.Bytes())
	if err != nil {
		w.Err = NewError(ErrSerialization, "write output: %v", err)
		return w.Err
	}
	return nil
}

func writeIndirect(out *bytes.Buffer, num uint32, obj Object, w *Writer) {
	fmt.Fprintf(out, "%d 0 obj\n", num)
	if s, ok := obj.(*Stream); ok {
		out.WriteString(s.Dict.PDF(w))
		out.WriteString("\nstream\n")
		out.Write(s.Data)
		out.WriteString("\nendstream")
	} else {
		out.WriteString(formatObject(w, obj))
	}
	out.WriteString("\nendobj\n")
}
