package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mechiko/cupsfilters/internal/logging"
	"github.com/mechiko/cupsfilters/ipp"
	"github.com/mechiko/cupsfilters/pwgtopdf"
	"github.com/stretchr/testify/require"
)

func TestRunRejectsWrongArgCount(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := run([]string{"pwgtopdf", "1", "user"}, strings.NewReader(""), &out, &errBuf, ipp.MapEnviron{})
	require.Equal(t, 1, code)
	require.Contains(t, errBuf.String(), "usage")
}

func TestRunEmptyInputProducesSuccess(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := run([]string{"pwgtopdf", "1", "user", "title", "1", ""}, strings.NewReader(""), &out, &errBuf, ipp.MapEnviron{})
	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "%PDF-1.7")
}

func TestBuildOptionsReadsPCLmPreferencesWithoutChangingTarget(t *testing.T) {
	opts := map[string]string{
		"pclm-strip-height-preferred":       "32",
		"pclm-compression-method-preferred": "jpeg,flate",
		"cm-disabled":                       "yes",
	}
	o := buildOptions(opts, ipp.MapEnviron{}, logging.Discard)
	require.Equal(t, 32, o.StripHeightPreferred)
	require.Equal(t, "jpeg,flate", o.CompressionPreferred)
	require.True(t, o.CMDisabled)
	require.Equal(t, pwgtopdf.TargetPDF, o.Target)
}

func TestBuildOptionsFallsBackToEnvironDefault(t *testing.T) {
	env := ipp.MapEnviron{"IPP_CM_DISABLED": "true"}
	o := buildOptions(map[string]string{}, env, logging.Discard)
	require.True(t, o.CMDisabled)
}

func TestRunRejectsJXLInput(t *testing.T) {
	t.Setenv("CONTENT_TYPE", "image/jxl")
	var out, errBuf bytes.Buffer
	code := run([]string{"pwgtopdf", "1", "user", "title", "1", ""}, strings.NewReader("not jxl"), &out, &errBuf, ipp.MapEnviron{})
	require.Equal(t, 2, code)
	require.Contains(t, errBuf.String(), "image/jxl")
}

func TestRunEmptyTIFFInputProducesSuccess(t *testing.T) {
	t.Setenv("CONTENT_TYPE", "image/tiff")
	var out, errBuf bytes.Buffer
	code := run([]string{"pwgtopdf", "1", "user", "title", "1", ""}, strings.NewReader(""), &out, &errBuf, ipp.MapEnviron{})
	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "%PDF-1.7")
}
