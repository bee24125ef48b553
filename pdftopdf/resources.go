// Package pdftopdf implements the PDF-to-PDF imposition engine: resource
// merging, form flattening, N-up/booklet imposition planning, page
// copying and banner/error-sheet generation (components F-J).
package pdftopdf

import (
	"bytes"
	"fmt"

	"github.com/mechiko/cupsfilters/internal/types"
)

// mergeableKeys are the resource sub-dictionary keys this module
// consolidates across cells, per the Open Question decision recorded in
// DESIGN.md (parity with pdfcpu's consolidateResourceDict key set, plus
// Shading).
var mergeableKeys = []string{"ColorSpace", "ExtGState", "Font", "Pattern", "ProcSet", "Properties", "Shading", "XObject"}

// mergeResources merges cellRes into composite (the output page's shared
// resource dictionary), renaming any entry whose name collides with one
// already present in composite. It returns the rename map ("old name" ->
// "new name") content-stream tokens from this cell need rewritten
// through, the same shape as pdfcpu's weaveResourceSubDict/
// consolidateResourceDict (pkg/pdfcpu/xreftable.go), generalized from a
// single-document optimize pass to the N-up "all cells share one page"
// case.
func mergeResources(cellIndex int, cellRes, composite types.Dict) map[string]string {
	rename := map[string]string{}
	prefix := fmt.Sprintf("a%d", cellIndex)

	for _, key := range mergeableKeys {
		cellSub, _ := cellRes[key].(types.Dict)
		if cellSub == nil {
			continue
		}
		compSub, _ := composite[key].(types.Dict)
		if compSub == nil {
			compSub = types.Dict{}
			composite[key] = compSub
		}
		for name, obj := range cellSub {
			newName := name
			if _, collides := compSub[name]; collides {
				newName = prefix + "_" + name
				rename[name] = newName
			}
			compSub[newName] = obj
		}
	}

	if procSet, ok := cellRes["ProcSet"].(types.Array); ok {
		existing, _ := composite["ProcSet"].(types.Array)
		composite["ProcSet"] = mergeProcSets(existing, procSet)
	}

	return rename
}

func mergeProcSets(a, b types.Array) types.Array {
	seen := map[string]bool{}
	var out types.Array
	add := func(arr types.Array) {
		for _, o := range arr {
			if n, ok := o.(types.Name); ok {
				if !seen[string(n)] {
					seen[string(n)] = true
					out = append(out, n)
				}
			}
		}
	}
	add(a)
	add(b)
	return out
}

// rewriteContentNames rewrites every name token ("/Name") in content whose
// name is a key of rename, whichever operator it belongs to, leaving every
// other token untouched. It walks the
// stream with the same hand-rolled scanner shape as pdfcpu's
// parseContent.go (nextContentToken/positionToNextContentToken), since
// that file itself depends on no tokenizing library and this is a
// narrowly scoped rename pass, not general content parsing.
func rewriteContentNames(content []byte, rename map[string]string) []byte {
	if len(rename) == 0 {
		return content
	}
	var out bytes.Buffer
	i := 0
	n := len(content)
	for i < n {
		c := content[i]
		switch {
		case c == '/':
			start := i
			i++
			for i < n && !isWS(content[i]) && !isDelim(content[i]) {
				i++
			}
			name := string(content[start+1 : i])
			if newName, ok := rename[name]; ok {
				out.WriteByte('/')
				out.WriteString(newName)
			} else {
				out.Write(content[start:i])
			}
		case c == '(':
			start := i
			i++
			depth := 1
			for i < n && depth > 0 {
				if content[i] == '\\' && i+1 < n {
					i += 2
					continue
				}
				if content[i] == '(' {
					depth++
				} else if content[i] == ')' {
					depth--
				}
				i++
			}
			out.Write(content[start:i])
		case c == '<' && i+1 < n && content[i+1] != '<':
			start := i
			i++
			for i < n && content[i] != '>' {
				i++
			}
			if i < n {
				i++
			}
			out.Write(content[start:i])
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.Bytes()
}

func isWS(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
