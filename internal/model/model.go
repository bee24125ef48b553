// Package model is the PDF document adapter every filter component reads
// and writes through: an in-memory object graph plus a page tree walker,
// grounded on pdfcpu's xreftable.Context (pkg/pdfcpu/xreftable.go) but
// trimmed to the subset pdftopdf/pwgtopdf actually need - no encryption,
// no signing, no incremental update support.
package model

import (
	"fmt"

	"github.com/mechiko/cupsfilters/internal/types"
	"github.com/pkg/errors"
)

// ErrResource is returned when a document exceeds an internal bound
// (too many objects, too many pages) rather than growing unbounded.
var ErrResource = errors.New("model: resource limit exceeded")

// MaxObjects bounds how many indirect objects a single Document may hold.
const MaxObjects = 200000

// Document is an in-memory PDF object graph: a flat map of indirect
// objects plus enough page-tree bookkeeping to enumerate pages in order.
type Document struct {
	Objects map[int]types.Object
	Streams map[int][]byte // raw (already filtered) bytes for stream objects, keyed like Objects
	nextObj int
	Root    types.IndirectRef
	Info    types.IndirectRef
	pages   []Page // resolved leaf /Page objects, in document order
}

// NewDocument returns an empty Document ready to have objects added.
func NewDocument() *Document {
	return &Document{
		Objects: make(map[int]types.Object),
		Streams: make(map[int][]byte),
		nextObj: 1,
	}
}

// AddObject stores obj under a freshly allocated object number and returns
// the reference to it.
func (d *Document) AddObject(obj types.Object) (types.IndirectRef, error) {
	if len(d.Objects) >= MaxObjects {
		return types.IndirectRef{}, errors.Wrapf(ErrResource, "more than %d objects", MaxObjects)
	}
	ref := types.IndirectRef{ObjectNumber: d.nextObj, GenerationNumber: 0}
	d.Objects[d.nextObj] = obj
	d.nextObj++
	return ref, nil
}

// AddStream stores a stream dict plus its raw (post-filter) bytes and
// returns the reference to it. dict should not include /Length; it is
// added automatically.
func (d *Document) AddStream(dict types.Dict, raw []byte) (types.IndirectRef, error) {
	if dict == nil {
		dict = types.Dict{}
	}
	dict["Length"] = types.Integer(len(raw))
	ref, err := d.AddObject(dict)
	if err != nil {
		return ref, err
	}
	d.Streams[ref.ObjectNumber] = raw
	return ref, nil
}

// Resolve dereferences obj if it is an IndirectRef, following at most one
// level (PDF object graphs in this module are never more than one
// indirection deep for dictionary values pdftopdf cares about).
func (d *Document) Resolve(obj types.Object) types.Object {
	if ref, ok := obj.(types.IndirectRef); ok {
		if v, ok := d.Objects[ref.ObjectNumber]; ok {
			return v
		}
	}
	return obj
}

// Dict coerces obj (resolving one indirection) to a Dict, or nil.
func (d *Document) Dict(obj types.Object) types.Dict {
	if dict, ok := d.Resolve(obj).(types.Dict); ok {
		return dict
	}
	return nil
}

// Page is a single resolved page: its dictionary's object reference, and
// the effective (inherited) attributes pdftopdf/pwgtopdf care about.
type Page struct {
	Ref       types.IndirectRef
	MediaBox  types.Rect
	Rotate    types.Rotation
	Resources types.Dict
	Contents  types.Array // indirect refs to content streams, in order
}

// MaxPages bounds how many pages AppendPage/the page tree walker accept.
const MaxPages = 10000

// AppendPage registers p as the next page in document order.
func (d *Document) AppendPage(p Page) error {
	if len(d.pages) >= MaxPages {
		return errors.Wrapf(ErrResource, "more than %d pages", MaxPages)
	}
	d.pages = append(d.pages, p)
	return nil
}

// NumPages returns the number of pages registered so far.
func (d *Document) NumPages() int { return len(d.pages) }

// PageRef returns the i'th page's object reference (0-based).
func (d *Document) PageRef(i int) (types.IndirectRef, error) {
	if i < 0 || i >= len(d.pages) {
		return types.IndirectRef{}, fmt.Errorf("model: page index %d out of range [0,%d)", i, len(d.pages))
	}
	return d.pages[i].Ref, nil
}

// Page returns the i'th resolved page (0-based).
func (d *Document) Page(i int) (*Page, error) {
	if i < 0 || i >= len(d.pages) {
		return nil, fmt.Errorf("model: page index %d out of range [0,%d)", i, len(d.pages))
	}
	p := d.pages[i]
	return &p, nil
}

// SetPage overwrites the i'th resolved page's cached attributes (0-based).
// Page returns a copy, so a caller that rewrites a page's /Contents or
// /Resources in its underlying dict (form flattening, for instance) must
// call SetPage afterward or later Page/PageRef callers keep observing the
// attributes captured at parse time.
func (d *Document) SetPage(i int, p Page) error {
	if i < 0 || i >= len(d.pages) {
		return fmt.Errorf("model: page index %d out of range [0,%d)", i, len(d.pages))
	}
	d.pages[i] = p
	return nil
}
