package pdftopdf

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mechiko/cupsfilters/internal/model"
	"github.com/stretchr/testify/require"
)

// buildFlattenFixture constructs a PDF with:
//   - a Tx widget (object 10) carrying /V and /DA but no /AP, which must
//     get a synthesized text appearance (spec 4.G step 3);
//   - a FreeText markup annotation (object 11) with a real /AP, which
//     must be flattened like any other annotation subtype, not just
//     Widget (spec 4.G's trigger names any non-empty /Annots array);
//   - a Hidden widget (object 12) with an /AP, which must be dropped
//     entirely (spec 4.G step 1's flag gate) and never drawn;
//   - a page dict with no pre-existing /Resources entry at all, so a
//     Form XObject registered during flattening only survives into the
//     output if it's written back onto the page dict itself.
func buildFlattenFixture(t *testing.T) []byte {
	t.Helper()
	content := "q Q"
	freeTextAP := "0 0 1 rg 0 0 200 20 re f"
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R /AcroForm 20 0 R >>\nendobj\n")
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	fmt.Fprintf(&b, "3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Contents 4 0 R /Annots [10 0 R 11 0 R 12 0 R] >>\nendobj\n")
	fmt.Fprintf(&b, "4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(content), content)
	b.WriteString("10 0 obj\n<< /Type /Annot /Subtype /Widget /FT /Tx /Rect [50 700 250 720] /V (Hello) /DA (/F1 12 Tf 0 g) /F 4 >>\nendobj\n")
	b.WriteString("11 0 obj\n<< /Type /Annot /Subtype /FreeText /Rect [50 650 250 670] /F 4 /AP << /N 13 0 R >> >>\nendobj\n")
	fmt.Fprintf(&b, "13 0 obj\n<< /Type /XObject /Subtype /Form /BBox [0 0 200 20] /Resources << >> /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(freeTextAP), freeTextAP)
	b.WriteString("12 0 obj\n<< /Type /Annot /Subtype /Widget /Rect [50 600 250 620] /F 2 /AP << /N 13 0 R >> >>\nendobj\n")
	b.WriteString("20 0 obj\n<< /Type /AcroForm /Fields [10 0 R] /DR << /Font << /F1 21 0 R >> >> >>\nendobj\n")
	b.WriteString("21 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")
	b.WriteString("trailer\n<< /Size 22 /Root 1 0 R >>\n%%EOF\n")
	return []byte(b.String())
}

func TestFlattenFormsDrawsAllAnnotationSubtypesAndDropsHidden(t *testing.T) {
	doc, err := model.Parse(buildFlattenFixture(t))
	require.NoError(t, err)

	require.NoError(t, FlattenForms(doc))

	page, err := doc.Page(0)
	require.NoError(t, err)
	pageDict := doc.Dict(page.Ref)
	require.NotContains(t, pageDict, "Annots")

	content, err := doc.ConcatContents(page)
	require.NoError(t, err)
	body := string(content)

	require.Equal(t, 2, strings.Count(body, " Do\n"), "the Tx widget and the FreeText annotation should each draw one XObject; the Hidden widget should not")
	require.Contains(t, body, "(Hello) Tj")
}

func TestFlattenFormsWritesResourcesBackOntoPageWithNoPriorResources(t *testing.T) {
	doc, err := model.Parse(buildFlattenFixture(t))
	require.NoError(t, err)

	require.NoError(t, FlattenForms(doc))

	page, err := doc.Page(0)
	require.NoError(t, err)
	pageDict := doc.Dict(page.Ref)
	resources, ok := pageDict["Resources"]
	require.True(t, ok, "flattening must write /Resources back onto the page dict even when it started absent")

	resDict := doc.Dict(resources)
	require.NotNil(t, resDict)
	xobj := doc.Dict(resDict["XObject"])
	require.Len(t, xobj, 2)
}

func TestFlattenFormsSynthesizesTxAppearanceWithAcroFormFont(t *testing.T) {
	doc, err := model.Parse(buildFlattenFixture(t))
	require.NoError(t, err)
	require.NoError(t, FlattenForms(doc))

	page, err := doc.Page(0)
	require.NoError(t, err)
	pageDict := doc.Dict(page.Ref)
	resDict := doc.Dict(pageDict["Resources"])
	xobj := doc.Dict(resDict["XObject"])

	var found bool
	for _, v := range xobj {
		sd := doc.Dict(v)
		if sd == nil {
			continue
		}
		fontDict := doc.Dict(doc.Dict(sd["Resources"])["Font"])
		if fontDict != nil {
			if _, ok := fontDict["F1"]; ok {
				found = true
			}
		}
	}
	require.True(t, found, "the synthesized Tx appearance must import /F1 from the AcroForm's /DR /Font")
}
