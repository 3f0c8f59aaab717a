package filter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	gmast "github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/salmonumbrella/odootable/internal/config"
)

// blockLanguage is the fenced code block info string the filter acts on.
const blockLanguage = "odootable"

// Process converts every odootable block in a markdown source document and
// returns the spliced result. Blocks in other languages and all
// surrounding content pass through byte for byte.
func (cv *Converter) Process(ctx context.Context, source []byte) ([]byte, error) {
	globals := cv.Globals.Merge(documentGlobals(source))

	doc := host.Parser().Parse(gmtext.NewReader(source))

	type splice struct {
		start, end int
		text       string
	}
	var splices []splice

	var walkErr error
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		fc, ok := n.(*gmast.FencedCodeBlock)
		if !ok || string(fc.Language(source)) != blockLanguage {
			return gmast.WalkContinue, nil
		}

		start, end, ok := blockSpan(source, fc)
		if !ok {
			return gmast.WalkContinue, nil
		}

		opts, data, err := splitBlock(blockContent(source, fc))
		if err == nil {
			var result Result
			result, err = cv.Convert(ctx, opts, data, globals)
			if err == nil {
				switch result.Kind {
				case ResultDeleted:
					splices = append(splices, splice{start, end, ""})
				case ResultRendered:
					splices = append(splices, splice{start, end, result.Text + "\n"})
				case ResultUnchanged:
				}
				return gmast.WalkContinue, nil
			}
		}

		if cv.FailFast {
			walkErr = err
			return gmast.WalkStop, nil
		}
		slog.Warn("block conversion failed, element left unchanged", "error", err)
		return gmast.WalkContinue, nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	// Apply back to front so earlier offsets stay valid.
	out := append([]byte(nil), source...)
	for i := len(splices) - 1; i >= 0; i-- {
		s := splices[i]
		out = append(out[:s.start], append([]byte(s.text), out[s.end:]...)...)
	}
	return out, nil
}

// blockContent reassembles the inner text of a fenced code block.
func blockContent(source []byte, fc *gmast.FencedCodeBlock) string {
	var sb strings.Builder
	for i := 0; i < fc.Lines().Len(); i++ {
		seg := fc.Lines().At(i)
		sb.Write(seg.Value(source))
	}
	return sb.String()
}

// blockSpan locates the byte range of a fenced code block including both
// fence lines, so a replacement swaps the whole block.
func blockSpan(source []byte, fc *gmast.FencedCodeBlock) (int, int, bool) {
	if fc.Info == nil {
		return 0, 0, false
	}

	// Walk back from the info string to the start of the opening fence
	// line.
	start := fc.Info.Segment.Start
	for start > 0 && source[start-1] != '\n' {
		start--
	}

	// The content segments end where the closing fence line begins.
	end := fc.Info.Segment.Stop
	for end < len(source) && source[end] != '\n' {
		end++
	}
	if end < len(source) {
		end++
	}
	if fc.Lines().Len() > 0 {
		end = fc.Lines().At(fc.Lines().Len() - 1).Stop
	}

	// Consume the closing fence line when the block is closed; an
	// unclosed block runs to the end of the document.
	if rest := bytes.TrimLeft(source[end:], " "); bytes.HasPrefix(rest, []byte("```")) || bytes.HasPrefix(rest, []byte("~~~")) {
		for end < len(source) && source[end] != '\n' {
			end++
		}
		if end < len(source) {
			end++
		}
	}
	return start, end, true
}

// splitBlock splits a block's inner text into its YAML options and the
// data section. An explicit `---` open line is required for an options
// section; it runs until a `---` or `...` line and everything after is
// data. Without the open line the whole block is data.
func splitBlock(content string) (Options, string, error) {
	var opts Options

	lines := strings.SplitAfter(content, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], " \n") != "---" {
		return opts, content, nil
	}

	var optLines []string
	rest := ""
	for i := 1; i < len(lines); i++ {
		marker := strings.TrimRight(lines[i], " \n")
		if marker == "---" || marker == "..." {
			rest = strings.Join(lines[i+1:], "")
			break
		}
		optLines = append(optLines, lines[i])
	}

	raw := strings.Join(optLines, "")
	if err := yaml.Unmarshal([]byte(raw), &opts); err != nil {
		return opts, "", fmt.Errorf("parse block options: %w", err)
	}
	return opts, rest, nil
}

// documentGlobals reads the `odootable` key out of the document's YAML
// front matter. A document without front matter, or with front matter
// that fails to parse, contributes nothing.
func documentGlobals(source []byte) config.Globals {
	var meta struct {
		Odootable config.Globals `yaml:"odootable"`
	}

	text := string(source)
	if !strings.HasPrefix(text, "---\n") && text != "---" {
		return config.Globals{}
	}

	lines := strings.SplitAfter(text, "\n")
	var body []string
	closed := false
	for i := 1; i < len(lines); i++ {
		marker := strings.TrimRight(lines[i], " \n")
		if marker == "---" || marker == "..." {
			closed = true
			break
		}
		body = append(body, lines[i])
	}
	if !closed {
		return config.Globals{}
	}

	if err := yaml.Unmarshal([]byte(strings.Join(body, "")), &meta); err != nil {
		slog.Warn("document front matter is not valid YAML, ignored", "error", err)
		return config.Globals{}
	}
	return meta.Odootable
}
