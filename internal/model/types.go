/*
PURPOSE:
  Defines the core data structures used throughout Probetab.
  These models mirror the per-trial result files written by the
  experiment runner: prompt inputs, model invocation settings, and the
  token-level logprob trace echoed back by the completions API.

REQUIREMENTS:
  User-specified:
  - Match the JSON layout of existing result files exactly; thousands of
    trials already on disk cannot be regenerated.
  - Keep prompt fill values schemaless (each experiment fills a
    different template).

  Implementation-discovered:
  - The completions API reports logprobs as parallel arrays (tokens,
    token_logprobs, text_offset); model them as slices, not pairs.
  - prompt.values must decode into map[string]any; JSON numbers arrive
    as float64.

ARCHITECTURE INTEGRATION:
  - Used by: internal/archive, internal/flatten, internal/cli
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs).

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - Field tags follow the wire format; renaming breaks existing files.

USAGE:
  var res model.Result
  err := json.Unmarshal(data, &res)

SELF-HEALING INSTRUCTIONS:
  - If the runner starts writing new fields, add them here with matching
    json tags; unknown fields are ignored on decode.

RELATED FILES:
  - internal/archive/archive.go
  - internal/flatten/flatten.go

MAINTENANCE:
  - Update when the experiment runner's output format changes.
*/

package model

// Result represents one completed trial as written by the experiment
// runner: one prompt, one model call, one response.
type Result struct {
	Input  Input         `json:"input"`
	Model  ModelSettings `json:"model"`
	Output Output        `json:"output"`
}

// Input carries the prompt material sent for the trial.
type Input struct {
	Prompt           Prompt `json:"prompt"`
	PromptDescriptor string `json:"prompt_descriptor"`
	FullInput        string `json:"full_input"`
}

// Prompt identifies the trial and records the template fills used to
// build its text.
type Prompt struct {
	Index  int            `json:"index"`
	Values map[string]any `json:"values"`
}

// ModelSettings records how the language model was invoked.
type ModelSettings struct {
	Engine    string `json:"engine"`
	Echo      bool   `json:"echo"`
	MaxTokens int    `json:"max_tokens"`
}

// Output is the completions API response. The runner always requests a
// single completion, so only Choices[0] carries data.
type Output struct {
	Choices []Choice `json:"choices"`
}

// Choice holds the logprob trace for one completion.
type Choice struct {
	Logprobs Logprobs `json:"logprobs"`
}

// Logprobs is the token-level trace. The three slices are parallel:
// entry i is the i-th token of the response text, its log probability,
// and the character offset where it begins.
type Logprobs struct {
	Tokens        []string  `json:"tokens"`
	TokenLogprobs []float64 `json:"token_logprobs"`
	TextOffset    []int     `json:"text_offset"`
}
