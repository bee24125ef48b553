// Package filter implements the PDF stream filters this module needs to
// write: Flate, RunLength, DCT (pass-through) and None, following the
// Filter interface shape of pdfcpu's pkg/filter package.
package filter

import (
	"bytes"
	"compress/flate"
	"io"

	"github.com/pkg/errors"
)

// Filter names, matching the PDF spec's /Filter entries.
const (
	FlateDecode     = "FlateDecode"
	RunLengthDecode = "RunLengthDecode"
	DCTDecode       = "DCTDecode"
	NoFilter        = ""
)

// ErrUnsupportedFilter is returned by NewFilter for an unknown filter name.
var ErrUnsupportedFilter = errors.New("filter: unsupported filter")

// Filter encodes (for writing) and decodes (for reading back test fixtures)
// a single PDF stream filter.
type Filter interface {
	Encode(r io.Reader) ([]byte, error)
	Decode(r io.Reader) ([]byte, error)
}

// NewFilter returns the Filter implementation for name, or
// ErrUnsupportedFilter if name is not one this module writes.
func NewFilter(name string) (Filter, error) {
	switch name {
	case FlateDecode:
		return flateFilter{}, nil
	case RunLengthDecode:
		return runLengthFilter{}, nil
	case DCTDecode:
		return passthroughFilter{}, nil
	case NoFilter:
		return passthroughFilter{}, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedFilter, "%q", name)
}

type flateFilter struct{}

func (flateFilter) Encode(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(w, r); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (flateFilter) Decode(r io.Reader) ([]byte, error) {
	fr := flate.NewReader(r)
	defer fr.Close()
	return io.ReadAll(fr)
}

type passthroughFilter struct{}

func (passthroughFilter) Encode(r io.Reader) ([]byte, error) { return io.ReadAll(r) }
func (passthroughFilter) Decode(r io.Reader) ([]byte, error) { return io.ReadAll(r) }

// runLengthFilter implements the PDF RunLengthDecode algorithm in its
// encoding direction: runs of up to 128 identical bytes are encoded as a
// (length, byte) pair; runs of up to 128 dissimilar bytes are encoded
// literally, following PDF spec table 9 (RunLengthDecode filter).
type runLengthFilter struct{}

func (runLengthFilter) Encode(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	i := 0
	for i < len(data) {
		runLen := 1
		for i+runLen < len(data) && data[i+runLen] == data[i] && runLen < 128 {
			runLen++
		}
		if runLen >= 2 {
			out.WriteByte(byte(257 - runLen))
			out.WriteByte(data[i])
			i += runLen
			continue
		}
		start := i
		litLen := 1
		for i+litLen < len(data) && litLen < 128 {
			if i+litLen+1 < len(data) && data[i+litLen] == data[i+litLen+1] {
				break
			}
			litLen++
		}
		out.WriteByte(byte(litLen - 1))
		out.Write(data[start : start+litLen])
		i += litLen
	}
	out.WriteByte(128)
	return out.Bytes(), nil
}

func (runLengthFilter) Decode(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	out := bytes.NewBuffer([]byte{})
	i := 0
	for i < len(data) {
		length := int(data[i])
		i++
		switch {
		case length == 128:
			return out.Bytes(), nil
		case length < 128:
			n := length + 1
			if i+n > len(data) {
				return nil, errors.New("filter: truncated RunLengthDecode literal run")
			}
			out.Write(data[i : i+n])
			i += n
		default:
			if i >= len(data) {
				return nil, errors.New("filter: truncated RunLengthDecode copy run")
			}
			n := 257 - length
			for k := 0; k < n; k++ {
				out.WriteByte(data[i])
			}
			i++
		}
	}
	return out.Bytes(), nil
}
