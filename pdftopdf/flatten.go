package pdftopdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/mechiko/cupsfilters/internal/model"
	"github.com/mechiko/cupsfilters/internal/types"
	"github.com/pkg/errors"
)

// Annotation flag bits (PDF 32000-1 table 165), used by spec 4.G step 1 to
// decide whether an annotation participates in print output at all.
const (
	annotFlagHidden = 2
	annotFlagPrint  = 4
	annotFlagNoView = 32
)

// FlattenForms rewrites every page's annotations (AcroForm field widgets
// and plain markup annotations alike) into plain page content: each
// annotation's current appearance stream (/AP /N, honoring /AS when /AP
// /N is itself a sub-dictionary of named appearances) is drawn into the
// page's content stream as a positioned Form XObject, and the /Annots
// entry is dropped. Print output has no interactive viewer to render
// appearances at view time, so this has to happen before imposition -
// the same reason pdfcpu's createNUpFormForPDF (pkg/pdfcpu/model/nup.go)
// always operates on already-flattened content.
func FlattenForms(doc *model.Document) error {
	var acroDR types.Dict
	needAppearances := false
	if catalog := doc.Dict(doc.Root); catalog != nil {
		if af := doc.Dict(catalog["AcroForm"]); af != nil {
			if b, ok := af["NeedAppearances"].(types.Boolean); ok {
				needAppearances = bool(b)
			}
			acroDR = doc.Dict(af["DR"])
		}
	}

	for i := 0; i < doc.NumPages(); i++ {
		page, err := doc.Page(i)
		if err != nil {
			return err
		}
		pageDict := doc.Dict(page.Ref)
		if pageDict == nil {
			continue
		}
		annots, _ := pageDict["Annots"].(types.Array)
		if len(annots) == 0 {
			continue
		}

		extra, err := flattenAnnotations(doc, page, annots, acroDR, needAppearances)
		if err != nil {
			return err
		}

		if len(extra) > 0 {
			content, err := doc.ConcatContents(page)
			if err != nil {
				return err
			}
			content = append(content, '\n')
			content = append(content, extra...)
			newRef, err := doc.AddStream(types.Dict{}, content)
			if err != nil {
				return err
			}
			pageDict["Contents"] = newRef
			page.Contents = types.Array{newRef}
		}
		// page.Resources may have been freshly allocated by
		// flattenAnnotations (doc.Page returns a copy, and a page whose
		// dict had no pre-existing /Resources entry starts with a Dict
		// that isn't linked back to pageDict - see internal/model/parse.go
		// walkPagesNode). Write it back explicitly so any Form XObject
		// registered during flattening survives into the written output.
		if page.Resources != nil {
			pageDict["Resources"] = page.Resources
		}
		delete(pageDict, "Annots")
		// doc.Page returns a copy of the cached entry, and buildOutputPage
		// reads pages through doc.Page/ConcatContents after FlattenForms
		// has already run - without writing the updated Contents/Resources
		// back into the cache, imposition would copy the pre-flatten page.
		if err := doc.SetPage(i, *page); err != nil {
			return err
		}
	}
	return nil
}

// flattenAnnotations draws every annotation's appearance into a single
// content-stream fragment, registering each appearance's resources into
// the page's resource dictionary under a fresh /FxoN XObject name.
// Every annotation subtype is considered, not just Widget (spec 4.G's
// trigger is "any page has a non-empty /Annots array", not "any Widget
// annots"): an annotation with no usable appearance is dropped per step
// 4, except a Tx/Ch widget carrying /V and /DA, which gets a synthesized
// text appearance (step 3) instead of being silently discarded.
func flattenAnnotations(doc *model.Document, page *model.Page, annots types.Array, acroDR types.Dict, needAppearances bool) ([]byte, error) {
	var out bytes.Buffer
	n := 0
	for _, a := range annots {
		ref, ok := a.(types.IndirectRef)
		if !ok {
			continue
		}
		annot := doc.Dict(ref)
		if annot == nil {
			continue
		}
		if !annotationPrintable(annot) {
			continue
		}

		rectArr, _ := annot["Rect"].(types.Array)
		if len(rectArr) != 4 {
			continue
		}
		rect := rectFromArray4(rectArr)

		apRef, xobjBBox, xobjMatrix, ok := resolveAppearance(doc, annot)
		if !ok {
			sub, _ := annot["Subtype"].(types.Name)
			if sub != "Widget" || needAppearances {
				continue // spec 4.G step 4: no appearance to draw, drop it
			}
			synthRef, synthBBox, synthOK := synthesizeWidgetAppearance(doc, page, annot, rect, acroDR)
			if !synthOK {
				continue
			}
			apRef, xobjBBox, xobjMatrix = synthRef, synthBBox, [6]float64{1, 0, 0, 1, 0, 0}
		}

		name := fmt.Sprintf("Fxo%d", n)
		n++
		if page.Resources == nil {
			page.Resources = types.Dict{}
		}
		xobjDict, _ := page.Resources["XObject"].(types.Dict)
		if xobjDict == nil {
			xobjDict = types.Dict{}
			page.Resources["XObject"] = xobjDict
		}
		xobjDict[name] = apRef

		ctm := appearancePlacementCTM(xobjBBox, xobjMatrix, rect)
		fmt.Fprintf(&out, "q\n%s cm\n/%s Do\nQ\n", ctmOperands(ctm), name)
	}
	return out.Bytes(), nil
}

// annotationPrintable applies spec 4.G step 1's flag gate: an annotation
// that is Hidden or NoView never contributes to print output; one that
// lacks the Print flag is likewise excluded (screen-only annotations).
func annotationPrintable(annot types.Dict) bool {
	f, _ := annot["F"].(types.Integer)
	flags := int(f)
	if flags&(annotFlagHidden|annotFlagNoView) != 0 {
		return false
	}
	return flags&annotFlagPrint != 0
}

// resolveAppearance resolves a widget's normal appearance stream,
// honoring /AS when /AP /N is a sub-dictionary of named appearance
// states, and returns the stream's ref plus its /BBox and /Matrix.
func resolveAppearance(doc *model.Document, annot types.Dict) (ref types.IndirectRef, bbox types.Rect, m [6]float64, ok bool) {
	ap, _ := annot["AP"].(types.Dict)
	if ap == nil {
		return
	}
	n := ap["N"]
	var streamRef types.IndirectRef
	switch v := n.(type) {
	case types.IndirectRef:
		streamRef = v
	default:
		// /AP /N is itself a dict mapping appearance-state names to
		// streams; pick the one named by /AS.
		nDict := doc.Dict(n)
		if nDict == nil {
			return
		}
		state, _ := annot["AS"].(types.Name)
		sref, ok2 := nDict[string(state)].(types.IndirectRef)
		if !ok2 {
			return
		}
		streamRef = sref
	}
	streamDict := doc.Dict(streamRef)
	if streamDict == nil {
		return
	}
	bb, _ := streamDict["BBox"].(types.Array)
	if len(bb) == 4 {
		bbox = rectFromArray4(bb)
	} else {
		bbox = types.NewRect(0, 0, 1, 1)
	}
	m = [6]float64{1, 0, 0, 1, 0, 0}
	if ma, ok2 := streamDict["Matrix"].(types.Array); ok2 && len(ma) == 6 {
		for i := 0; i < 6; i++ {
			m[i] = numberValue(ma[i])
		}
	}
	return streamRef, bbox, m, true
}

// fieldAttr looks up key on annot, walking up the /Parent chain (terminal
// widget annotations commonly inherit /FT, /V and /DA from an ancestor
// field) up to a fixed depth to guard against a cyclic tree.
func fieldAttr(doc *model.Document, annot types.Dict, key string) types.Object {
	cur := annot
	for depth := 0; depth < 8 && cur != nil; depth++ {
		if v, ok := cur[key]; ok {
			return v
		}
		parentRef, ok := cur["Parent"].(types.IndirectRef)
		if !ok {
			return nil
		}
		cur = doc.Dict(parentRef)
	}
	return nil
}

func fieldStringAttr(doc *model.Document, annot types.Dict, key string) string {
	switch v := fieldAttr(doc, annot, key).(type) {
	case types.StringLiteral:
		return string(v)
	case types.Name:
		return string(v)
	}
	return ""
}

// lookupFont resolves a /DA font resource name against the page's own
// /Resources /Font dict first, falling back to the AcroForm's /DR /Font
// dict (spec 4.G step 3's "import the referenced font from the page's or
// AcroForm's /DR /Font").
func lookupFont(page *model.Page, acroDR types.Dict, fontName string) (types.Object, bool) {
	if page != nil && page.Resources != nil {
		if fonts, ok := page.Resources["Font"].(types.Dict); ok {
			if f, ok := fonts[fontName]; ok {
				return f, true
			}
		}
	}
	if acroDR != nil {
		if fonts, ok := acroDR["Font"].(types.Dict); ok {
			if f, ok := fonts[fontName]; ok {
				return f, true
			}
		}
	}
	return nil, false
}

// synthesizeWidgetAppearance builds a Form XObject rendering a Tx/Ch
// widget's current value with its default-appearance string, for widgets
// that carry /V but have no usable /AP - spec 4.G step 3: "synthesize a
// text-drawing stream BT ... Tf (value) Tj ET instead of copying the
// stream; extract the font resource name from /DA ... and import the
// referenced font from the page's or AcroForm's /DR /Font".
func synthesizeWidgetAppearance(doc *model.Document, page *model.Page, annot types.Dict, rect types.Rect, acroDR types.Dict) (ref types.IndirectRef, bbox types.Rect, ok bool) {
	ft, _ := fieldAttr(doc, annot, "FT").(types.Name)
	if ft != "Tx" && ft != "Ch" {
		return types.IndirectRef{}, types.Rect{}, false
	}
	v := fieldStringAttr(doc, annot, "V")
	if v == "" {
		return types.IndirectRef{}, types.Rect{}, false
	}
	daStr := fieldStringAttr(doc, annot, "DA")
	if daStr == "" {
		return types.IndirectRef{}, types.Rect{}, false
	}
	fontName, size, err := parseDAFont(daStr)
	if err != nil {
		return types.IndirectRef{}, types.Rect{}, false
	}
	fontRes, found := lookupFont(page, acroDR, fontName)
	if !found {
		return types.IndirectRef{}, types.Rect{}, false
	}

	w, h := rect.Width(), rect.Height()
	if size <= 0 {
		size = h * 0.7
		if size <= 0 {
			size = 10
		}
	}
	bbox = types.NewRect(0, 0, w, h)
	pad := 2.0
	baseline := (h - size) / 2
	if baseline < pad {
		baseline = pad
	}

	var content bytes.Buffer
	fmt.Fprintf(&content, "/Tx BMC\nq\nBT\n/%s %s Tf\n0 g\n%s %s Td\n%s Tj\nET\nQ\nEMC\n",
		fontName, formatNum(size), formatNum(pad), formatNum(baseline), types.StringLiteral(v).PDFString())

	streamDict := types.Dict{
		"Type":      types.Name("XObject"),
		"Subtype":   types.Name("Form"),
		"BBox":      rectArray(bbox),
		"Resources": types.Dict{"Font": types.Dict{fontName: fontRes}},
	}
	streamRef, err := doc.AddStream(streamDict, content.Bytes())
	if err != nil {
		return types.IndirectRef{}, types.Rect{}, false
	}
	return streamRef, bbox, true
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

func rectFromArray4(a types.Array) types.Rect {
	var v [4]float64
	for i := 0; i < 4; i++ {
		v[i] = numberValue(a[i])
	}
	return types.NewRect(v[0], v[1], v[2], v[3])
}

// appearancePlacementCTM computes the matrix PDF's annotation appearance
// algorithm specifies (PDF 32000-1 12.5.5): transform bbox by matrix,
// take its bounding box, then map that bounding box onto rect.
func appearancePlacementCTM(bbox types.Rect, m [6]float64, rect types.Rect) matrixT {
	corners := [][2]float64{
		{bbox.LL.X, bbox.LL.Y}, {bbox.UR.X, bbox.LL.Y},
		{bbox.UR.X, bbox.UR.Y}, {bbox.LL.X, bbox.UR.Y},
	}
	minX, minY, maxX, maxY := m[4], m[5], m[4], m[5]
	first := true
	for _, c := range corners {
		x := c[0]*m[0] + c[1]*m[2] + m[4]
		y := c[0]*m[1] + c[1]*m[3] + m[5]
		if first {
			minX, maxX, minY, maxY = x, x, y, y
			first = false
		}
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	transformedBBox := types.NewRect(minX, minY, maxX, maxY)
	sx, sy := 1.0, 1.0
	if w := transformedBBox.Width(); w != 0 {
		sx = rect.Width() / w
	}
	if h := transformedBBox.Height(); h != 0 {
		sy = rect.Height() / h
	}
	return matrixAA(sx, sy, rect.LL.X-transformedBBox.LL.X*sx, rect.LL.Y-transformedBBox.LL.Y*sy)
}

// matrixT/matrixAA avoid importing internal/matrix here just for a
// translate+scale composition; ctmOperands only needs the 6 numbers.
type matrixT = [3][3]float64

func matrixAA(sx, sy, dx, dy float64) matrixT {
	return matrixT{{sx, 0, 0}, {0, sy, 0}, {dx, dy, 1}}
}

// parseDAFont parses a DA string ("/Helv 12 Tf 0 g") into a font resource
// name and size, used as a fallback appearance for Tx/Ch widgets that
// have a value but no /AP, following the "/name size Tf" token shape the
// PDF spec's default-appearance string grammar defines.
func parseDAFont(da string) (name string, size float64, err error) {
	fields := strings.Fields(da)
	for i := 0; i+2 < len(fields); i++ {
		if fields[i+2] == "Tf" && strings.HasPrefix(fields[i], "/") {
			sz, perr := strconv.ParseFloat(fields[i+1], 64)
			if perr != nil {
				return "", 0, errors.Wrapf(perr, "pdftopdf: invalid DA font size in %q", da)
			}
			return strings.TrimPrefix(fields[i], "/"), sz, nil
		}
	}
	return "", 0, errors.Errorf("pdftopdf: no Tf operator found in DA string %q", da)
}
