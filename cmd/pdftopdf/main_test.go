package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunRejectsWrongArgCount(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := run([]string{"pdftopdf", "1", "user"}, strings.NewReader(""), &out, &errBuf)
	require.Equal(t, 1, code)
	require.Contains(t, errBuf.String(), "usage")
}

func TestRunRejectsNonNumericJobID(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := run([]string{"pdftopdf", "abc", "user", "title", "1", ""}, strings.NewReader(""), &out, &errBuf)
	require.Equal(t, 1, code)
}

func TestRunRejectsNonNumericCopies(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := run([]string{"pdftopdf", "1", "user", "title", "xyz", ""}, strings.NewReader(""), &out, &errBuf)
	require.Equal(t, 1, code)
}

func TestRunRejectsMissingInputFile(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := run([]string{"pdftopdf", "1", "user", "title", "1", "", "/no/such/file.pdf"}, strings.NewReader(""), &out, &errBuf)
	require.Equal(t, 1, code)
}

func TestRunMalformedPDFReturnsDocumentFailureExitCode(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := run([]string{"pdftopdf", "1", "user", "title", "1", ""}, strings.NewReader("not a pdf"), &out, &errBuf)
	require.Equal(t, 2, code)
}
