package model

import (
	"bytes"

	"github.com/mechiko/cupsfilters/internal/filter"
	"github.com/mechiko/cupsfilters/internal/types"
)

// DecodedStream returns the fully decoded bytes of the stream object ref
// points to, applying its /Filter chain (a single name, or an array of
// names applied in order) via the internal/filter package.
func (d *Document) DecodedStream(ref types.IndirectRef) ([]byte, error) {
	dict := d.Dict(ref)
	raw, ok := d.Streams[ref.ObjectNumber]
	if dict == nil || !ok {
		return nil, nil
	}
	names := filterNames(dict["Filter"])
	data := raw
	for _, name := range names {
		f, err := filter.NewFilter(name)
		if err != nil {
			return nil, err
		}
		data, err = f.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

func filterNames(obj types.Object) []string {
	switch v := obj.(type) {
	case types.Name:
		return []string{string(v)}
	case types.Array:
		out := make([]string, 0, len(v))
		for _, o := range v {
			if n, ok := o.(types.Name); ok {
				out = append(out, string(n))
			}
		}
		return out
	}
	return nil
}

// ConcatContents returns the concatenation (each joined by a newline, per
// PDF's rule that a page's content may be split across multiple streams
// which behave as if concatenated) of every content stream referenced by
// page.Contents.
func (d *Document) ConcatContents(page *Page) ([]byte, error) {
	var out bytes.Buffer
	for i, ref := range page.Contents {
		r, ok := ref.(types.IndirectRef)
		if !ok {
			continue
		}
		b, err := d.DecodedStream(r)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			out.WriteByte('\n')
		}
		out.Write(b)
	}
	return out.Bytes(), nil
}
