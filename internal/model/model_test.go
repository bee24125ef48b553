package model

import (
	"bytes"
	"testing"

	"github.com/mechiko/cupsfilters/internal/types"
	"github.com/stretchr/testify/require"
)

const sampleOnePagePDF = `%PDF-1.4
1 0 obj
<< /Type /Catalog /Pages 2 0 R >>
endobj
2 0 obj
<< /Type /Pages /Kids [3 0 R] /Count 1 >>
endobj
3 0 obj
<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << >> >> /Contents 4 0 R >>
endobj
4 0 obj
<< /Length 10 >>
stream
BT ET
endstream
endobj
trailer
<< /Size 5 /Root 1 0 R >>
%%EOF
`

func TestParseOnePagePDF(t *testing.T) {
	doc, err := Parse([]byte(sampleOnePagePDF))
	require.NoError(t, err)
	require.Equal(t, 1, doc.NumPages())

	page, err := doc.Page(0)
	require.NoError(t, err)
	require.Equal(t, types.NewRect(0, 0, 612, 792), page.MediaBox)
	require.Len(t, page.Contents, 1)
}

func TestParseRejectsNonPDF(t *testing.T) {
	_, err := Parse([]byte("not a pdf at all"))
	require.ErrorIs(t, err, ErrInputFormat)
}

func TestWriteProducesParseableCatalogAndTrailer(t *testing.T) {
	d := NewDocument()
	contentRef, err := d.AddStream(types.Dict{}, []byte("q Q"))
	require.NoError(t, err)
	pageRef, err := d.AddObject(types.Dict{
		"Type":      types.Name("Page"),
		"MediaBox":  types.Array{types.Integer(0), types.Integer(0), types.Integer(612), types.Integer(792)},
		"Resources": types.Dict{},
		"Contents":  contentRef,
	})
	require.NoError(t, err)
	pagesRef, err := d.NewPagesNode([]types.IndirectRef{pageRef})
	require.NoError(t, err)
	require.NoError(t, d.NewCatalog(pagesRef))
	require.NoError(t, d.AppendPage(Page{Ref: pageRef}))

	var buf bytes.Buffer
	require.NoError(t, d.Write(&buf))
	require.Contains(t, buf.String(), "%PDF-1.7")
	require.Contains(t, buf.String(), "trailer")

	reparsed, err := Parse(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, 1, reparsed.NumPages())
}
