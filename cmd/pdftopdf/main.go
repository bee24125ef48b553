// Command pdftopdf is the CUPS filter entrypoint wrapping pdftopdf.Run
// (spec 6.1): it parses the traditional CUPS filter argv, populates a
// FilterData from IPP_* environment variables, runs the filter against
// stdin/stdout (or a filename argument in place of stdin), and maps
// errors to the 0/1/2 exit codes spec 6.1 defines. Modeled on pdfcpu's
// cmd/pdfcpu/main.go argv-driven dispatch, simplified to the single
// fixed CUPS calling convention instead of a subcommand registry.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mechiko/cupsfilters/internal/logging"
	"github.com/mechiko/cupsfilters/ipp"
	"github.com/mechiko/cupsfilters/pdftopdf"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const usage = "usage: pdftopdf job-id user title copies options [filename]"

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func run(argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(argv) < 6 || len(argv) > 7 {
		fmt.Fprintln(stderr, usage)
		return 1
	}

	jobID, err := strconv.Atoi(argv[1])
	if err != nil {
		fmt.Fprintf(stderr, "pdftopdf: invalid job-id %q: %v\n", argv[1], err)
		return 1
	}
	copies, err := strconv.Atoi(argv[4])
	if err != nil {
		fmt.Fprintf(stderr, "pdftopdf: invalid copies %q: %v\n", argv[4], err)
		return 1
	}

	in := stdin
	if len(argv) == 7 {
		f, err := os.Open(argv[6])
		if err != nil {
			fmt.Fprintf(stderr, "pdftopdf: opening %s: %v\n", argv[6], err)
			return 1
		}
		defer f.Close()
		in = f
	}

	zl, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(stderr, "pdftopdf: logger setup: %v\n", err)
		return 1
	}
	defer zl.Sync()
	log := logging.NewZap(zl)

	fd := &pdftopdf.FilterData{
		JobID:   jobID,
		User:    argv[2],
		Title:   argv[3],
		Copies:  copies,
		Options: ipp.ParseOptionArgs(argv[5]),
		Log:     log,
	}

	err = pdftopdf.Run(context.Background(), in, stdout, fd)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, pdftopdf.ErrCancelled):
		// Spec 5: a cancellation mid-job is a success with whatever
		// pages had already been emitted, not a failure exit code.
		log.Infof("job %d cancelled: %v", jobID, err)
		return 0
	case isIOFailure(err):
		fmt.Fprintf(stderr, "pdftopdf: %v\n", err)
		return 1
	default:
		fmt.Fprintf(stderr, "pdftopdf: %v\n", err)
		return 2
	}
}

// isIOFailure reports whether err's chain bottoms out in an OS-level I/O
// error (spec 6.1 exit code 1, "fatal I/O or allocation") rather than a
// document-processing failure (exit code 2, e.g. a malformed PDF).
func isIOFailure(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return true
	}
	return errors.Is(err, io.ErrClosedPipe) || errors.Is(err, io.ErrUnexpectedEOF)
}
