package model

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/mechiko/cupsfilters/internal/types"
)

// Write serializes the document as a single, non-incremental PDF file:
// header, every object in ascending object-number order, a classic
// cross-reference table and trailer. This module never writes
// cross-reference streams or object streams - the filter pipeline's
// output is read once by a downstream RIP, not edited, so the simpler
// classic xref table is sufficient and easier to get byte-exact.
func (d *Document) Write(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	nums := make([]int, 0, len(d.Objects))
	for n := range d.Objects {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	offsets := make(map[int]int, len(nums))
	for _, n := range nums {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", n)
		buf.WriteString(d.Objects[n].PDFString())
		if raw, ok := d.Streams[n]; ok {
			buf.WriteString("\nstream\n")
			buf.Write(raw)
			buf.WriteString("\nendstream")
		}
		buf.WriteString("\nendobj\n")
	}

	xrefStart := buf.Len()
	maxNum := 0
	if len(nums) > 0 {
		maxNum = nums[len(nums)-1]
	}
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxNum+1)
	buf.WriteString("0000000000 65535 f \n")
	for n := 1; n <= maxNum; n++ {
		if off, ok := offsets[n]; ok {
			fmt.Fprintf(&buf, "%010d 00000 n \n", off)
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}

	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %s", maxNum+1, d.Root.PDFString())
	if d.Info.ObjectNumber != 0 {
		fmt.Fprintf(&buf, " /Info %s", d.Info.PDFString())
	}
	buf.WriteString(" >>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefStart)

	_, err := w.Write(buf.Bytes())
	return err
}

// NewCatalog creates and registers a minimal /Catalog pointing at
// pagesRef, and sets it as the document's Root.
func (d *Document) NewCatalog(pagesRef types.IndirectRef) error {
	ref, err := d.AddObject(types.Dict{
		"Type":  types.Name("Catalog"),
		"Pages": pagesRef,
	})
	if err != nil {
		return err
	}
	d.Root = ref
	return nil
}

// NewPagesNode creates and registers a flat /Pages node listing kids, the
// shape this module always writes (no nested page-tree balancing - output
// documents here top out at MaxPages leaves, far below where a flat /Kids
// array stops being practical).
func (d *Document) NewPagesNode(kids []types.IndirectRef) (types.IndirectRef, error) {
	arr := make(types.Array, len(kids))
	for i, k := range kids {
		arr[i] = k
	}
	return d.AddObject(types.Dict{
		"Type":  types.Name("Pages"),
		"Kids":  arr,
		"Count": types.Integer(len(kids)),
	})
}
