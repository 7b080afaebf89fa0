package core

import "fmt"

// UnknownToolError indicates the model requested a tool that is not part of
// the agent's closed toolset. Fatal, never retried.
type UnknownToolError struct {
	Agent string
	Tool  string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("%s: unknown tool requested: %s", e.Agent, e.Tool)
}

// OutputParseError indicates the model's terminal answer did not match the
// agent's expected JSON schema. Fatal, never retried.
type OutputParseError struct {
	Agent string
	Raw   string
	Err   error
}

func (e *OutputParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse model output: %v", e.Agent, e.Err)
}

func (e *OutputParseError) Unwrap() error { return e.Err }

// LoopLimitError indicates a think/act loop exceeded its iteration cap
// without producing a final answer.
type LoopLimitError struct {
	Agent string
	Limit int
}

func (e *LoopLimitError) Error() string {
	return fmt.Sprintf("%s: loop limit of %d iterations exceeded", e.Agent, e.Limit)
}
