package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/sandevgo/medgraph/internal/config"
	"github.com/sandevgo/medgraph/internal/core"
	"github.com/sandevgo/medgraph/internal/tools"
	"github.com/sandevgo/medgraph/pkg/log"
	"github.com/sandevgo/medgraph/pkg/retry"
)

const defaultSystemPrompt = `You are a medical records assistant. Answer the user's question using the available tools.
Call at most one tool at a time. When querying the knowledge graph, always constrain the query to a single patient.
When you have enough information, answer directly without calling tools.`

// Orchestrator drives one request/response cycle as an explicit state
// machine. Every run terminates within maxIterations plan/execute cycles
// plus a fixed number of plan-repair attempts.
type Orchestrator struct {
	cfg     *config.AppConfig
	ai      core.AIProvider
	invoker core.ToolInvoker
	repo    core.MessagesRepository
	retrier *retry.Retrier
}

func NewOrchestrator(
	cfg *config.AppConfig,
	ai core.AIProvider,
	invoker core.ToolInvoker,
	repo core.MessagesRepository,
	retrier *retry.Retrier,
) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		ai:      ai,
		invoker: invoker,
		repo:    repo,
		retrier: retrier,
	}
}

// Run executes the loop for one user message. Tool failures are folded back
// into the conversation as data so the model can react; only transport
// failure, a cancelled context, or an exhausted repair budget abort the run.
func (o *Orchestrator) Run(ctx context.Context, sessionID, input string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(o.cfg.RequestTimeoutSec)*time.Second)
	defer cancel()

	logger := log.FromCtx(ctx)

	userMsg := core.Message{Role: core.RoleUser, Content: input}
	if err := o.repo.AddMessage(ctx, sessionID, userMsg); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	prior, err := o.repo.GetMessages(ctx, sessionID, 200)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	st := &conversationState{
		sessionID: sessionID,
		history:   windowByTokens(prior, o.cfg.HistoryTokenBudget),
	}

	result := &Result{}
	state := StateAwaitingPlan

	for {
		if ctx.Err() != nil {
			result.State = StateAborted
			return result, &OrchestrationError{Reason: "request deadline exceeded", Cause: ctx.Err()}
		}

		switch state {
		case StateAwaitingPlan:
			state, err = o.awaitPlan(ctx, st, result, false)
			if err != nil {
				result.State = StateAborted
				return result, err
			}

		case StateExecutingTool:
			state = o.executeTool(ctx, st, result)

		case StateFoldingResult:
			if st.iterationCount >= o.cfg.MaxIterations {
				logger.Warn().Int("iterations", st.iterationCount).Msg("iteration budget exhausted, forcing final answer")
				state, err = o.awaitPlan(ctx, st, result, true)
				if err != nil {
					result.State = StateAborted
					return result, err
				}
				if state != StateCompleted {
					result.State = StateAborted
					return result, &OrchestrationError{Reason: "no final answer after iteration budget"}
				}
				continue
			}
			st.iterationCount++
			state = StateAwaitingPlan

		case StateCompleted:
			result.State = StateCompleted
			logger.Info().
				Int("iterations", st.iterationCount).
				Int("tool_calls", len(result.Trace)).
				Msg("run completed")
			return result, nil

		case StateAborted:
			result.State = StateAborted
			return result, &OrchestrationError{Reason: "plan repair budget exhausted"}
		}
	}
}

// awaitPlan consults the reasoning model and classifies its reply: a final
// answer, exactly one tool call, or malformed. Malformed plans consume a
// repair attempt. With forceFinal set, tools are withheld so the only valid
// plan shape is a final answer.
func (o *Orchestrator) awaitPlan(ctx context.Context, st *conversationState, result *Result, forceFinal bool) (State, error) {
	messages := o.assembleContext(st, forceFinal)

	var defs []core.Tool
	if !forceFinal {
		defs = o.invoker.Definitions()
	}

	var reply core.Message
	err := o.retrier.Do(ctx, func(ctx context.Context) error {
		var chatErr error
		reply, chatErr = o.ai.Chat(ctx, messages, defs)
		return chatErr
	})
	if err != nil {
		return StateAborted, &OrchestrationError{Reason: "reasoning model unavailable", Cause: err}
	}

	switch {
	case len(reply.ToolCalls) == 0 && reply.Content != "":
		o.fold(ctx, st, reply)
		result.Answer = reply.Content
		return StateCompleted, nil

	case len(reply.ToolCalls) == 1 && !forceFinal:
		o.fold(ctx, st, reply)
		st.pendingCall = &reply.ToolCalls[0]
		return StateExecutingTool, nil

	default:
		st.repairCount++
		log.FromCtx(ctx).Warn().
			Int("repair", st.repairCount).
			Int("tool_calls", len(reply.ToolCalls)).
			Msg("malformed plan")
		if st.repairCount > o.cfg.RepairAttempts {
			return StateAborted, nil
		}
		// Nudge stays in-memory; it is repair scaffolding, not conversation.
		st.history = append(st.history, core.Message{
			Role:    core.RoleSystem,
			Content: "Your previous reply was invalid. Reply with either a final answer or exactly one tool call.",
		})
		return StateAwaitingPlan, nil
	}
}

// executeTool dispatches the pending call through the registry under the
// retry policy. Failures become tool-result data, never control flow: the
// model sees them on the next plan.
func (o *Orchestrator) executeTool(ctx context.Context, st *conversationState, result *Result) State {
	call := st.pendingCall
	st.pendingCall = nil

	var output string
	err := o.retrier.Do(ctx, func(ctx context.Context) error {
		var invokeErr error
		output, invokeErr = o.invoker.Invoke(ctx, call.Function.Name, call.Function.Arguments)
		if invokeErr == nil {
			return nil
		}
		// Validation failures, errors a lower layer already marked
		// permanent, and already-exhausted retries gain nothing from
		// another attempt here.
		var fe *retry.FinalError
		if tools.IsValidationError(invokeErr) || retry.IsPermanent(invokeErr) || errors.As(invokeErr, &fe) {
			return retry.Permanent(invokeErr)
		}
		return invokeErr
	})

	entry := TraceEntry{
		Tool:      call.Function.Name,
		Arguments: call.Function.Arguments,
	}
	content := output
	if err != nil {
		entry.Error = err.Error()
		content = "Error executing tool: " + err.Error()
		log.FromCtx(ctx).Warn().Err(err).Str("tool", call.Function.Name).Msg("tool execution failed")
	} else {
		entry.Result = truncate(output)
	}
	result.Trace = append(result.Trace, entry)

	o.fold(ctx, st, core.Message{
		Role:       core.RoleTool,
		Content:    truncate(content),
		ToolCallID: call.ID,
	})
	return StateFoldingResult
}

// fold appends a message to the run's history and persists it; persistence
// failure is logged but does not interrupt the run.
func (o *Orchestrator) fold(ctx context.Context, st *conversationState, msg core.Message) {
	st.history = append(st.history, msg)
	if err := o.repo.AddMessage(ctx, st.sessionID, msg); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to persist message")
	}
}

func (o *Orchestrator) assembleContext(st *conversationState, forceFinal bool) []core.Message {
	messages := []core.Message{{Role: core.RoleSystem, Content: o.systemPrompt()}}
	if forceFinal {
		messages = append(messages, core.Message{
			Role:    core.RoleSystem,
			Content: "The tool budget for this request is exhausted. Provide your final answer now using what you already know. Do not call tools.",
		})
	}
	return append(messages, st.history...)
}

func (o *Orchestrator) systemPrompt() string {
	content, err := os.ReadFile(o.cfg.GetSystemPromptPath())
	if err != nil || len(content) == 0 {
		return defaultSystemPrompt
	}
	return string(content)
}

func truncate(input string) string {
	const maxLen = 2000
	if len(input) <= maxLen {
		return input
	}

	// Back both cut points off to rune boundaries so the model never
	// receives invalid UTF-8.
	headEnd := 500
	for headEnd > 0 && !utf8.RuneStart(input[headEnd]) {
		headEnd--
	}
	tailStart := len(input) - (maxLen - 500)
	for tailStart < len(input) && !utf8.RuneStart(input[tailStart]) {
		tailStart++
	}

	head := input[:headEnd]
	tail := input[tailStart:]
	return fmt.Sprintf("%s\n\n... [TRUNCATED %d bytes] ...\n\n%s", head, len(input)-len(head)-len(tail), tail)
}
