package model

import (
	"bytes"
	"regexp"
	"strconv"

	"github.com/mechiko/cupsfilters/internal/types"
	"github.com/pkg/errors"
)

// ErrInputFormat is returned when the input bytes cannot be parsed as a
// PDF at all.
var ErrInputFormat = errors.New("model: not a well-formed PDF")

var objHeaderRE = regexp.MustCompile(`(?m)^\s*(\d+)\s+(\d+)\s+obj\b`)

// Parse reads a PDF file's bytes into a Document using a brute-force
// object scan rather than following the cross-reference table, the same
// fallback strategy pdfcpu's repair mode uses for damaged files
// (pkg/pdfcpu/xreftable.go's "scan file for object anchors" path) -
// simpler to implement correctly than a full xref/trailer reader, and
// robust to the incremental-update and hybrid-xref variants a print
// pipeline commonly receives.
func Parse(data []byte) (*Document, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(data[:minInt(8, len(data))]), []byte("%PDF-")) {
		return nil, errors.Wrap(ErrInputFormat, "missing %PDF- header")
	}
	d := NewDocument()
	locs := objHeaderRE.FindAllSubmatchIndex(data, -1)
	if len(locs) == 0 {
		return nil, errors.Wrap(ErrInputFormat, "no indirect objects found")
	}
	maxObjNum := 0
	for i, loc := range locs {
		num, _ := strconv.Atoi(string(data[loc[2]:loc[3]]))
		end := len(data)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := data[loc[1]:end]
		obj, raw, err := parseObjectBody(body)
		if err != nil {
			continue // tolerate a handful of unparsable objects, as a repair scan would
		}
		d.Objects[num] = obj
		if raw != nil {
			d.Streams[num] = raw
		}
		if num > maxObjNum {
			maxObjNum = num
		}
	}
	d.nextObj = maxObjNum + 1

	if err := d.resolveCatalog(); err != nil {
		return nil, err
	}
	if err := d.walkPageTree(); err != nil {
		return nil, err
	}
	return d, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// resolveCatalog finds the /Type /Catalog object (trailer-free, scanned
// directly) and records it as Root.
func (d *Document) resolveCatalog() error {
	for num, obj := range d.Objects {
		dict, ok := obj.(types.Dict)
		if !ok {
			continue
		}
		if n, ok := dict["Type"].(types.Name); ok && n == "Catalog" {
			d.Root = types.IndirectRef{ObjectNumber: num}
			return nil
		}
	}
	return errors.Wrap(ErrInputFormat, "no /Catalog object found")
}

// walkPageTree performs an in-order traversal of /Pages /Kids, inheriting
// /Resources, /MediaBox and /Rotate per PDF's page-attribute inheritance
// rule, and appends each leaf /Page to d.pages.
func (d *Document) walkPageTree() error {
	catalog := d.Dict(d.Root)
	if catalog == nil {
		return errors.Wrap(ErrInputFormat, "catalog object missing")
	}
	rootPages, ok := catalog["Pages"].(types.IndirectRef)
	if !ok {
		return errors.Wrap(ErrInputFormat, "catalog has no /Pages")
	}
	seen := types.IntSet{}
	return d.walkPagesNode(rootPages, types.Dict{}, seen)
}

func (d *Document) walkPagesNode(ref types.IndirectRef, inherited types.Dict, seen types.IntSet) error {
	if seen.Contains(ref.ObjectNumber) {
		return errors.Wrap(ErrInputFormat, "cyclic page tree")
	}
	seen.Add(ref.ObjectNumber)
	dict := d.Dict(ref)
	if dict == nil {
		return errors.Wrapf(ErrInputFormat, "page tree node %d missing", ref.ObjectNumber)
	}
	effective := mergeInherited(inherited, dict)
	if n, _ := dict["Type"].(types.Name); n == "Pages" {
		kids, _ := dict["Kids"].(types.Array)
		for _, k := range kids {
			kr, ok := k.(types.IndirectRef)
			if !ok {
				continue
			}
			if err := d.walkPagesNode(kr, effective, seen); err != nil {
				return err
			}
		}
		return nil
	}
	// Leaf page.
	page := Page{Ref: ref}
	if mb, ok := effective["MediaBox"].(types.Array); ok && len(mb) == 4 {
		page.MediaBox = rectFromArray(mb)
	} else {
		page.MediaBox = types.NewRect(0, 0, 612, 792) // US Letter default
	}
	if r, ok := effective["Rotate"].(types.Integer); ok {
		page.Rotate = types.Rotation(r).Normalize()
	}
	if res, ok := effective["Resources"].(types.Dict); ok {
		page.Resources = res
	} else {
		page.Resources = types.Dict{}
	}
	switch c := dict["Contents"].(type) {
	case types.IndirectRef:
		page.Contents = types.Array{c}
	case types.Array:
		page.Contents = c
	}
	return d.AppendPage(page)
}

func mergeInherited(parent, child types.Dict) types.Dict {
	merged := types.Dict{}
	for k, v := range parent {
		merged[k] = v
	}
	for _, k := range []string{"Resources", "MediaBox", "Rotate"} {
		if v, ok := child[k]; ok {
			merged[k] = v
		}
	}
	return merged
}

func rectFromArray(a types.Array) types.Rect {
	var v [4]float64
	for i := 0; i < 4 && i < len(a); i++ {
		v[i] = numberValue(a[i])
	}
	return types.NewRect(v[0], v[1], v[2], v[3])
}

func numberValue(o types.Object) float64 {
	switch n := o.(type) {
	case types.Integer:
		return float64(n)
	case types.Float:
		return float64(n)
	}
	return 0
}
