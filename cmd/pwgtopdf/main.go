// Command pwgtopdf is the CUPS filter entrypoint wrapping pwgtopdf.Encode
// (spec 6.1): parses the traditional CUPS filter argv, resolves the
// options map and FINAL_CONTENT_TYPE/CONTENT_TYPE environment variables
// (spec 6.3's "target output type from final_content_type first" rule)
// into a pwgtopdf.Options, runs the encoder against stdin/stdout (or a
// filename argument), and maps errors to the 0/1/2 exit codes spec 6.1
// defines. Argv handling mirrors cmd/pdftopdf/main.go.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mechiko/cupsfilters/color"
	"github.com/mechiko/cupsfilters/internal/logging"
	"github.com/mechiko/cupsfilters/ipp"
	"github.com/mechiko/cupsfilters/pwgtopdf"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const usage = "usage: pwgtopdf job-id user title copies options [filename]"

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr, ipp.OSEnviron{}))
}

func run(argv []string, stdin io.Reader, stdout, stderr io.Writer, env ipp.Environ) int {
	if len(argv) < 6 || len(argv) > 7 {
		fmt.Fprintln(stderr, usage)
		return 1
	}

	if _, err := strconv.Atoi(argv[1]); err != nil {
		fmt.Fprintf(stderr, "pwgtopdf: invalid job-id %q: %v\n", argv[1], err)
		return 1
	}
	if _, err := strconv.Atoi(argv[4]); err != nil {
		fmt.Fprintf(stderr, "pwgtopdf: invalid copies %q: %v\n", argv[4], err)
		return 1
	}

	in := stdin
	if len(argv) == 7 {
		f, err := os.Open(argv[6])
		if err != nil {
			fmt.Fprintf(stderr, "pwgtopdf: opening %s: %v\n", argv[6], err)
			return 1
		}
		defer f.Close()
		in = f
	}

	zl, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(stderr, "pwgtopdf: logger setup: %v\n", err)
		return 1
	}
	defer zl.Sync()
	log := logging.NewZap(zl)

	opts := ipp.ParseOptionArgs(argv[5])
	pwgOpts := buildOptions(opts, env, log)

	switch os.Getenv("CONTENT_TYPE") {
	case "image/tiff":
		err = pwgtopdf.EncodeTIFF(context.Background(), in, stdout, pwgOpts)
	case "image/jxl":
		// JPEG-XL decoding is an out-of-scope external collaborator (spec
		// 1): no pack repo vendors a decoder for it, so this filter can
		// only reject the content type rather than fabricate one.
		fmt.Fprintln(stderr, "pwgtopdf: image/jxl decoding is not supported by this build")
		return 2
	default:
		err = pwgtopdf.Encode(context.Background(), in, stdout, pwgOpts)
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, pwgtopdf.ErrCancelled):
		log.Infof("job cancelled: %v", err)
		return 0
	case isIOFailure(err):
		fmt.Fprintf(stderr, "pwgtopdf: %v\n", err)
		return 1
	default:
		fmt.Fprintf(stderr, "pwgtopdf: %v\n", err)
		return 2
	}
}

// isIOFailure reports whether err's chain bottoms out in an OS-level I/O
// error (spec 6.1 exit code 1) rather than a document-processing failure
// (exit code 2, e.g. malformed raster input).
func isIOFailure(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return true
	}
	return errors.Is(err, io.ErrClosedPipe) || errors.Is(err, io.ErrUnexpectedEOF)
}

// buildOptions resolves the pwgtopdf.Options fields a CUPS job environment
// carries: the output target from FINAL_CONTENT_TYPE/CONTENT_TYPE (spec
// 6.3), cm-disabled and the PCLm strip/compression printer-attribute
// preferences from the IPP_* environment (spec 6.2), and an ICC profile
// file if one is referenced.
func buildOptions(opts map[string]string, env ipp.Environ, log logging.Logger) *pwgtopdf.Options {
	o := &pwgtopdf.Options{Log: log}

	ct := os.Getenv("FINAL_CONTENT_TYPE")
	if ct == "" {
		ct = os.Getenv("CONTENT_TYPE")
	}
	if ct == "application/PCLm" {
		o.Target = pwgtopdf.TargetPCLm
	}

	if v, ok := lookup(opts, env, "cm-disabled"); ok {
		o.CMDisabled = v == "true" || v == "yes" || v == "1"
	}
	if v, ok := lookup(opts, env, "pclm-strip-height-preferred"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			o.StripHeightPreferred = n
		} else {
			log.Warnf("pwgtopdf: invalid pclm-strip-height-preferred %q: %v", v, err)
		}
	}
	if v, ok := lookup(opts, env, "pclm-compression-method-preferred"); ok {
		o.CompressionPreferred = v
	}
	if path, ok := lookup(opts, env, "output-device-profile"); ok && path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warnf("pwgtopdf: reading ICC profile %s: %v", path, err)
		} else if profile, err := color.ParseICCProfile(data); err != nil {
			log.Warnf("pwgtopdf: parsing ICC profile %s: %v", path, err)
		} else {
			o.ICCProfile = profile
		}
	}
	return o
}

func lookup(opts map[string]string, env ipp.Environ, name string) (string, bool) {
	if v, ok := opts[name]; ok {
		return v, true
	}
	return env.Default(name)
}
