package pdftopdf

import (
	"bytes"
	"context"
	"io"

	"github.com/mechiko/cupsfilters/internal/logging"
	"github.com/mechiko/cupsfilters/internal/model"
	"github.com/mechiko/cupsfilters/internal/types"
	"github.com/mechiko/cupsfilters/ipp"
	"github.com/pkg/errors"
)

// ErrCancelled is returned when ctx is cancelled mid-job.
var ErrCancelled = errors.New("pdftopdf: cancelled")

// FilterData carries the CUPS job metadata every filter entrypoint
// receives (spec 6.1), independent of the fd-based argv parsing cmd/
// does to build one.
type FilterData struct {
	JobID       int
	User, Title string
	Copies      int
	Options     map[string]string
	Log         logging.Logger
}

// Run executes the full pdftopdf pipeline: parse input, flatten forms,
// build an imposition plan, copy pages, optionally prepend a banner page
// and append an error sheet, and write the result to out.
func Run(ctx context.Context, in io.Reader, out io.Writer, fd *FilterData) error {
	if fd.Log == nil {
		fd.Log = logging.Discard
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, "pdftopdf: reading input")
	}

	src, err := model.Parse(data)
	if err != nil {
		return errors.Wrap(err, "pdftopdf: parsing input PDF")
	}

	if err := FlattenForms(src); err != nil {
		return errors.Wrap(err, "pdftopdf: flattening form fields")
	}

	opts, optErrs := ipp.ParseOptions(fd.Options, ipp.OSEnviron{})
	for _, e := range optErrs {
		fd.Log.Warnf("option parse warning: %v", e)
	}

	plan, err := Plan(opts, src.NumPages())
	if err != nil {
		return errors.Wrap(err, "pdftopdf: building imposition plan")
	}

	dst := model.NewDocument()
	mediaRect := opts.Media.Rect()

	var errorMessages []string

	if v, ok := fd.Options["job-sheets"]; !ok || v != "none" {
		if err := BannerPage(dst, mediaRect, fd.Title, fd.User, fd.JobID, fd.Copies); err != nil {
			fd.Log.Warnf("banner page generation failed: %v", err)
		}
	}

	sheets := plan.Sheets
	if opts.ReverseOrder {
		// Component H's output-order rule: iterate tail-to-head rather
		// than mutate the plan, so Plan's own page-numbering stays
		// source-order for diagnostics.
		sheets = make([]OutputSheet, len(plan.Sheets))
		for i, s := range plan.Sheets {
			sheets[len(plan.Sheets)-1-i] = s
		}
	}

	for i, sheet := range sheets {
		if i%8 == 0 {
			select {
			case <-ctx.Done():
				return errors.Wrap(ErrCancelled, ctx.Err().Error())
			default:
			}
		}
		ref, err := buildOutputPage(dst, src, mediaRect, sheet, opts)
		if err != nil {
			fd.Log.Warnf("page copy failed: %v", err)
			errorMessages = append(errorMessages, err.Error())
			continue
		}
		outBox := mediaRect
		if sheet.MediaRect.Width() > 0 && sheet.MediaRect.Height() > 0 {
			outBox = sheet.MediaRect
		}
		if err := dst.AppendPage(model.Page{Ref: ref, MediaBox: outBox}); err != nil {
			return errors.Wrap(err, "pdftopdf: appending output page")
		}
	}

	appendErrorSheet := opts.JobErrorSheetReport == "always" ||
		(opts.JobErrorSheetReport == "on-error" && len(errorMessages) > 0)
	if appendErrorSheet {
		if err := ErrorSheet(dst, mediaRect, errorMessages); err != nil {
			fd.Log.Warnf("error sheet generation failed: %v", err)
		}
	}

	kids := make([]types.IndirectRef, dst.NumPages())
	for i := 0; i < dst.NumPages(); i++ {
		ref, err := dst.PageRef(i)
		if err != nil {
			return err
		}
		kids[i] = ref
	}
	pagesRef, err := dst.NewPagesNode(kids)
	if err != nil {
		return errors.Wrap(err, "pdftopdf: building page tree")
	}
	if err := dst.NewCatalog(pagesRef); err != nil {
		return errors.Wrap(err, "pdftopdf: building catalog")
	}

	var buf bytes.Buffer
	if err := dst.Write(&buf); err != nil {
		return errors.Wrap(err, "pdftopdf: writing output PDF")
	}
	_, err = out.Write(buf.Bytes())
	return err
}
