package agent

import (
	"fmt"

	"github.com/sandevgo/medgraph/internal/core"
)

// State enumerates the orchestrator's control positions. Making them
// explicit keeps termination provable: only Completed and Aborted leave
// the loop, and every path to AwaitingPlan passes a counter.
type State int

const (
	StateAwaitingPlan State = iota
	StateExecutingTool
	StateFoldingResult
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateAwaitingPlan:
		return "awaiting_plan"
	case StateExecutingTool:
		return "executing_tool"
	case StateFoldingResult:
		return "folding_result"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

// OrchestrationError ends a run with Aborted and a user-facing explanation.
type OrchestrationError struct {
	Reason string
	Cause  error
}

func (e *OrchestrationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("orchestration aborted: %s: %v", e.Reason, e.Cause)
	}
	return "orchestration aborted: " + e.Reason
}

func (e *OrchestrationError) Unwrap() error {
	return e.Cause
}

// conversationState is owned by exactly one run; nothing here is shared
// across requests.
type conversationState struct {
	sessionID      string
	history        []core.Message
	iterationCount int
	repairCount    int
	pendingCall    *core.ToolCall
}

// TraceEntry records one tool invocation for the response's tool trace.
type TraceEntry struct {
	Tool      string `json:"tool"`
	Arguments string `json:"arguments"`
	Result    string `json:"result,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Result is what one orchestration run produces.
type Result struct {
	Answer string
	Trace  []TraceEntry
	State  State
}
