package pdftopdf

import (
	"github.com/mechiko/cupsfilters/internal/types"
	"github.com/mechiko/cupsfilters/ipp"
	"github.com/mechiko/cupsfilters/layout"
	"github.com/pkg/errors"
)

// OutputSheet is one physical output page: the media rect it is drawn
// onto, and the per-cell placements (source page number, cell rect,
// rotation) to copy into it. Source page 0 means "blank" (booklet
// padding). MediaRect is normally opts.Media.Rect() for every sheet, but
// an "overrides" collection entry matching the sheet's source page (spec
// 3.4) can pin a different media for that one sheet.
type OutputSheet struct {
	Cells     []SheetCell
	MediaRect types.Rect
}

// SheetCell places one source page (1-based; 0 = blank) into a cell rect
// with a rotation, within an output sheet.
type SheetCell struct {
	SourcePage int
	Rect       types.Rect
	Rotate     types.Rotation
}

// ImpositionPlan is the fully resolved "which source pages go on which
// output sheet, at what placement" plan for an entire job (component H),
// built once up front from FilterOptions and the input page count so the
// copier (component I) can stream pages without re-deriving layout.
type ImpositionPlan struct {
	Sheets []OutputSheet
}

// MaxOutputPages bounds how many output sheets a single plan may contain,
// matching model.MaxPages (spec 5's output-page resource bound).
const MaxOutputPages = 10000

// ErrResource is returned when a plan would exceed MaxOutputPages.
var ErrResource = errors.New("pdftopdf: resource limit exceeded")

// Plan builds the imposition plan for a document of numInputPages pages
// under opts. Booklet imposition takes precedence over plain N-up (the
// Open Question decision in DESIGN.md): when opts.Booklet is set, the
// booklet shuffle drives page selection and cell assignment using a 2-up
// grid per physical side.
func Plan(opts *ipp.FilterOptions, numInputPages int) (*ImpositionPlan, error) {
	selected := ipp.NewPageSet(numInputPages, &opts.PageRanges, opts.PageSet)

	var pages []int
	for p := 1; p <= numInputPages; p++ {
		if selected.Contains(p) {
			pages = append(pages, p)
		}
	}

	if opts.Booklet {
		return planBooklet(opts, pages)
	}
	return planNUp(opts, pages)
}

func planNUp(opts *ipp.FilterOptions, pages []int) (*ImpositionPlan, error) {
	mediaRect := opts.Media.Rect()
	_, _, cells, err := layout.Plan(mediaRect, opts.NumberUp, opts.Orientation, opts.NumberUpLayout)
	if err != nil {
		return nil, err
	}

	plan := &ImpositionPlan{}
	for i := 0; i < len(pages); i += len(cells) {
		if len(plan.Sheets) >= MaxOutputPages {
			return nil, errors.Wrapf(ErrResource, "more than %d output pages", MaxOutputPages)
		}
		sheet := OutputSheet{MediaRect: mediaRect}

		// A single-page-per-sheet job can honor a page-scoped "overrides"
		// entry (spec 3.4) by laying that one sheet out on its own pinned
		// media/orientation - an N-up sheet merges several source pages
		// onto one physical sheet, which has no coherent per-source-page
		// media of its own, so overrides only apply at number-up=1.
		if opts.NumberUp == 1 && len(opts.Overrides) > 0 && i < len(pages) {
			if ovMedia, hasMedia, ovOrient, hasOrient := opts.ResolveOverride(pages[i]); hasMedia || hasOrient {
				rect := mediaRect
				orient := opts.Orientation
				if hasMedia {
					rect = ovMedia.Rect()
				}
				if hasOrient {
					orient = ovOrient
				}
				_, _, ovCells, err := layout.Plan(rect, 1, orient, opts.NumberUpLayout)
				if err != nil {
					return nil, err
				}
				sheet.MediaRect = rect
				sheet.Cells = []SheetCell{{SourcePage: pages[i], Rect: ovCells[0].Rect, Rotate: ovCells[0].Rotate}}
				plan.Sheets = append(plan.Sheets, sheet)
				continue
			}
		}

		for c, cell := range cells {
			if i+c >= len(pages) {
				break
			}
			sheet.Cells = append(sheet.Cells, SheetCell{
				SourcePage: pages[i+c],
				Rect:       cell.Rect,
				Rotate:     cell.Rotate,
			})
		}
		plan.Sheets = append(plan.Sheets, sheet)
	}
	return plan, nil
}

func planBooklet(opts *ipp.FilterOptions, pages []int) (*ImpositionPlan, error) {
	sheets2up := layout.BookletShuffle(len(pages))
	mediaRect := opts.Media.Rect()
	_, _, cells, err := layout.Plan(mediaRect, 2, opts.Orientation, opts.NumberUpLayout)
	if err != nil {
		return nil, err
	}
	if len(cells) != 2 {
		return nil, errors.New("pdftopdf: booklet layout did not produce 2 cells")
	}

	plan := &ImpositionPlan{}
	mapPage := func(logical int) int {
		if logical == 0 || logical > len(pages) {
			return 0
		}
		return pages[logical-1]
	}
	for _, s := range sheets2up {
		if len(plan.Sheets) >= MaxOutputPages {
			return nil, errors.Wrapf(ErrResource, "more than %d output pages", MaxOutputPages)
		}
		front := OutputSheet{MediaRect: mediaRect, Cells: []SheetCell{
			{SourcePage: mapPage(s.FrontLeft), Rect: cells[0].Rect, Rotate: cells[0].Rotate},
			{SourcePage: mapPage(s.FrontRight), Rect: cells[1].Rect, Rotate: cells[1].Rotate},
		}}
		back := OutputSheet{MediaRect: mediaRect, Cells: []SheetCell{
			{SourcePage: mapPage(s.BackLeft), Rect: cells[0].Rect, Rotate: cells[0].Rotate},
			{SourcePage: mapPage(s.BackRight), Rect: cells[1].Rect, Rotate: cells[1].Rotate},
		}}
		plan.Sheets = append(plan.Sheets, front, back)
	}
	return plan, nil
}
