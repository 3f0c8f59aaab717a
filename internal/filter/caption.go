package filter

import (
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// host is the markup parser the filter validates its output against.
var host = goldmark.New(goldmark.WithExtensions(extension.Table))

// resolveCaption validates the caption option as inline markdown content
// and returns the inline source of its first block, the way the host would
// interpret it. An empty caption stays empty.
func resolveCaption(caption string) string {
	if caption == "" {
		return ""
	}

	src := []byte(caption)
	doc := host.Parser().Parse(gmtext.NewReader(src))

	block := doc.FirstChild()
	if block == nil {
		return ""
	}

	var lines []string
	for i := 0; i < block.Lines().Len(); i++ {
		seg := block.Lines().At(i)
		lines = append(lines, strings.TrimSpace(string(seg.Value(src))))
	}
	return strings.Join(lines, " ")
}

// validatePipeMarkup re-parses generated pipe-table text through the host
// parser and warns when it does not come back as a table. Grid tables are
// a pandoc construct the goldmark GFM extension does not model, so only
// pipe output is checked.
func validatePipeMarkup(markup string) {
	src := []byte(markup)
	doc := host.Parser().Parse(gmtext.NewReader(src))

	found := false
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if _, ok := n.(*east.Table); ok {
			found = true
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	if !found {
		slog.Warn("generated pipe table was not recognized by the markdown parser")
	}
}
