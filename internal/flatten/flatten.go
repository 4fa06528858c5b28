/*
PURPOSE:
  Turns an archive of nested trial records into a flat table: one row
  per trial with index, engine, the completion tokens, their joint
  probability, and one column per prompt fill value.

  The experiments this serves (Ultimatum Game, Garden Path) use
  no-completion prompts: the candidate completion is part of the prompt
  and the model only echoes it back. The probability of a completion is
  therefore read off the last N tokens of the echoed prompt.

REQUIREMENTS:
  User-specified:
  - Joint probability = exp(sum of the last N token logprobs).
  - Tokens column joins the last N tokens with "-", in prompt order.
  - Optional filter keeps only records with a matching
    prompt_descriptor.
  - Runs that generated text by mistake (max_tokens != 0) are salvaged
    by cutting the trace where generation began.
  - Runs without echo cannot be processed at all.

  Implementation-discovered:
  - Fill columns must be fixed from the first retained record and
    sorted; map iteration order would shuffle them between runs.
  - text_offset counts characters, not bytes, so the prompt length must
    be measured in runes.
  - Later records can disagree with the first record's fill keys; that
    must fail the run, not silently misalign columns.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli
  - Depends on: internal/archive, internal/model, internal/output,
    internal/table

ERROR HANDLING:
  - Fail fast. The first bad record aborts the run with its prompt
    index in the error; partial tables are never returned.

IMPLEMENTATION RULES:
  - Records are processed in archive order, single-threaded. Row order
    is archive order minus filtered records.
  - Progress is reported per record, filtered or not.

USAGE:
  tbl, err := flatten.Flatten("mega.json.gz", flatten.Options{TailTokens: 2})

SELF-HEALING INSTRUCTIONS:
  - "prompt length not found in text_offset" means full_input does not
    match the echoed text; check that the runner saved the exact prompt
    it sent.
  - "echo is required" means the run was made with echo=false and its
    files are unusable for this analysis; re-run the experiment.

RELATED FILES:
  - internal/table/table.go
  - internal/cli/flatten.go

MAINTENANCE:
  - If experiments ever use generated completions instead of echoed
    ones, this needs a second mode keyed off max_tokens.
*/

package flatten

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/calawell/probetab/internal/archive"
	"github.com/calawell/probetab/internal/model"
	"github.com/calawell/probetab/internal/output"
	"github.com/calawell/probetab/internal/table"
)

// ProgressFunc observes per-record progress. done counts every record
// seen so far, including filtered ones; total is the archive length.
type ProgressFunc func(done, total int)

// Options controls a Flatten run.
type Options struct {
	// TailTokens is how many tokens from the end of the echoed prompt
	// form the completion. Must be at least 1.
	TailTokens int

	// Descriptor, when non-empty, keeps only records whose
	// prompt_descriptor matches it exactly.
	Descriptor string

	// Progress, when non-nil, is called once per archive record.
	Progress ProgressFunc
}

// baseColumns lead every table, ahead of the per-experiment fill
// columns.
var baseColumns = []string{"index", "engine", "tokens", "probability"}

// Flatten reads the archive at archivePath and produces one table row
// per retained record.
func Flatten(archivePath string, opts Options) (*table.Table, error) {
	if opts.TailTokens < 1 {
		return nil, fmt.Errorf("tail tokens must be at least 1, got %d", opts.TailTokens)
	}

	results, err := archive.LoadResults(archivePath)
	if err != nil {
		return nil, err
	}
	output.Logger.Info("Loaded archive", "path", archivePath, "records", len(results))

	fl := &flattener{
		tbl:  table.New(baseColumns...),
		tail: opts.TailTokens,
	}

	total := len(results)
	for i := range results {
		res := &results[i]
		if opts.Descriptor == "" || res.Input.PromptDescriptor == opts.Descriptor {
			if err := fl.add(res); err != nil {
				return nil, err
			}
		}
		if opts.Progress != nil {
			opts.Progress(i+1, total)
		}
	}

	output.Logger.Info("Flattened records", "rows", fl.tbl.Len(), "columns", len(fl.tbl.Columns()))
	return fl.tbl, nil
}

// flattener accumulates rows and pins the fill-column schema to the
// first retained record.
type flattener struct {
	tbl        *table.Table
	fills      []string
	haveSchema bool
	tail       int
}

func (f *flattener) add(res *model.Result) error {
	idx := res.Input.Prompt.Index

	if !f.haveSchema {
		f.fills = sortedKeys(res.Input.Prompt.Values)
		if err := f.tbl.AddColumns(f.fills...); err != nil {
			return fmt.Errorf("record %d: %w", idx, err)
		}
		f.haveSchema = true
	}

	if !res.Model.Echo {
		return fmt.Errorf("record %d: echo is required for no-completion prompts; the completion probabilities live in the echoed prompt", idx)
	}

	tokens, logprobs, err := echoTrace(res)
	if err != nil {
		return err
	}

	n := f.tail
	if n > len(tokens) || n > len(logprobs) {
		return fmt.Errorf("record %d: need the last %d tokens but the echo has %d", idx, n, min(len(tokens), len(logprobs)))
	}

	tail := tokens[len(tokens)-n:]
	sum := 0.0
	for _, lp := range logprobs[len(logprobs)-n:] {
		sum += lp
	}

	row := make([]any, 0, len(baseColumns)+len(f.fills))
	row = append(row, idx, res.Model.Engine, strings.Join(tail, "-"), math.Exp(sum))

	if len(res.Input.Prompt.Values) != len(f.fills) {
		return fmt.Errorf("record %d: has %d prompt fill values, the first record had %d", idx, len(res.Input.Prompt.Values), len(f.fills))
	}
	for _, k := range f.fills {
		v, ok := res.Input.Prompt.Values[k]
		if !ok {
			return fmt.Errorf("record %d: missing prompt fill value %q", idx, k)
		}
		row = append(row, v)
	}

	return f.tbl.Append(row...)
}

// echoTrace returns the token and logprob slices covering the echoed
// prompt. With max_tokens == 0 the whole trace is the echo. Otherwise
// the model generated extra text by mistake, and the echo is salvaged
// by cutting the trace at the offset where generation began.
func echoTrace(res *model.Result) ([]string, []float64, error) {
	idx := res.Input.Prompt.Index
	if len(res.Output.Choices) == 0 {
		return nil, nil, fmt.Errorf("record %d: output has no choices", idx)
	}
	lp := &res.Output.Choices[0].Logprobs

	if res.Model.MaxTokens == 0 {
		return lp.Tokens, lp.TokenLogprobs, nil
	}

	// text_offset is in characters, matching the prompt's rune length.
	promptLen := utf8.RuneCountInString(res.Input.FullInput)
	cut := -1
	for i, off := range lp.TextOffset {
		if off == promptLen {
			cut = i
			break
		}
	}
	if cut < 0 {
		return nil, nil, fmt.Errorf("record %d: prompt length %d not found in text_offset; cannot separate echo from generated text", idx, promptLen)
	}
	if cut > len(lp.Tokens) || cut > len(lp.TokenLogprobs) {
		return nil, nil, fmt.Errorf("record %d: text_offset cut %d runs past the logprob arrays", idx, cut)
	}
	return lp.Tokens[:cut], lp.TokenLogprobs[:cut], nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
