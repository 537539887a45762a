package patcher

import (
	"bytes"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/sokinpui/coder.go/internal/lines"
	"github.com/sokinpui/coder.go/model"
)

// applyStrict applies payload with go-gitdiff, which rejects any fragment
// whose context does not match exactly.
func applyStrict(path, original, payload string) (string, []model.Diagnostic) {
	original = lines.Normalize(original)
	payload = lines.Normalize(payload)
	if !strings.HasPrefix(payload, "--- ") {
		payload = "--- a/" + path + "\n+++ b/" + path + "\n" + payload
	}
	if !strings.HasSuffix(payload, "\n") {
		payload += "\n"
	}

	files, _, err := gitdiff.Parse(strings.NewReader(payload))
	if err != nil {
		return original, []model.Diagnostic{model.Errorf(model.CodeStrictApply, path, "", "failed to parse diff: %v", err)}
	}
	if len(files) != 1 {
		return original, []model.Diagnostic{model.Errorf(model.CodeStrictApply, path, "", "expected a diff for one file, found %d", len(files))}
	}

	var out bytes.Buffer
	if err := gitdiff.Apply(&out, strings.NewReader(original), files[0]); err != nil {
		return original, []model.Diagnostic{model.Errorf(model.CodeStrictApply, path, "", "failed to apply diff: %v", err)}
	}
	return out.String(), nil
}
