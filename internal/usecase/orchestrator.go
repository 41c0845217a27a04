package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"linkedin-assistant/internal/domain"
	"linkedin-assistant/internal/infra/tracer"
)

// defaultMaxTurns bounds the completion/tool loop when no limit is
// configured. The loop has no natural upper bound otherwise: a model that
// keeps requesting tool calls would iterate forever.
const defaultMaxTurns = 10

// OrchestratorDeps holds injected dependencies for the orchestrator.
type OrchestratorDeps struct {
	LLM          domain.LLMProvider
	Tools        domain.ToolExecutor
	Logger       *slog.Logger
	MaxTurns     int
	SystemPrompt string // prepended as a developer message when the caller supplies none
}

// Orchestrator drives the completion/tool-call loop for one chat request.
// It holds no state across requests; the conversation sequence is owned by
// the request for its lifetime.
type Orchestrator struct {
	deps OrchestratorDeps
}

// NewOrchestrator creates an orchestrator with the given dependencies.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	if deps.MaxTurns <= 0 {
		deps.MaxTurns = defaultMaxTurns
	}
	return &Orchestrator{deps: deps}
}

// Run processes an initial message sequence through the loop: request a
// completion, execute any requested tool calls strictly in order, append
// their results, and repeat until a completion carries no tool calls.
//
// A failed tool dispatch aborts the whole turn: remaining calls in the
// batch are not dispatched and no further completion is requested. Partial
// tool batches are never silently completed.
func (o *Orchestrator) Run(ctx context.Context, initial []domain.Message) (*domain.ChatResult, error) {
	const op = "Orchestrator.Run"

	ctx, span := tracer.StartSpan(ctx, "chat.run")
	defer span.End()

	if len(initial) == 0 {
		err := domain.NewDomainError(op, domain.ErrInvalidArguments, "empty message sequence")
		tracer.RecordError(span, err)
		return nil, err
	}

	messages := o.withSystemPrompt(initial)

	var totalUsage domain.Usage

	for turn := 0; turn < o.deps.MaxTurns; turn++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		span.AddEvent("chat.turn", trace.WithAttributes(tracer.IntAttr("turn", turn)))

		llmCtx, llmSpan := tracer.StartSpan(ctx, "chat.completion")
		resp, err := o.deps.LLM.Chat(llmCtx, domain.ChatRequest{
			Messages: messages,
			Tools:    o.deps.Tools.Schemas(),
		})
		llmSpan.End()
		if err != nil {
			tracer.RecordError(span, err)
			return nil, err
		}

		msg := resp.Message
		totalUsage.PromptTokens += resp.Usage.PromptTokens
		totalUsage.CompletionTokens += resp.Usage.CompletionTokens
		totalUsage.TotalTokens += resp.Usage.TotalTokens

		o.deps.Logger.Debug("completion received",
			"turn", turn,
			"tool_calls", len(msg.ToolCalls),
			"tokens", resp.Usage.TotalTokens,
		)

		// No tool calls = final message.
		if len(msg.ToolCalls) == 0 {
			tracer.SetOK(span)
			return &domain.ChatResult{
				Message:      msg,
				RequiresTool: false,
				Usage:        totalUsage,
			}, nil
		}

		messages = append(messages, msg)

		// Tool calls run strictly in request order, one at a time. Later
		// calls in a batch may depend on state established by earlier ones,
		// and results must not be reordered relative to correlation IDs.
		for _, call := range msg.ToolCalls {
			toolMsg, err := o.executeTool(ctx, call)
			if err != nil {
				tracer.RecordError(span, err)
				return nil, err
			}
			messages = append(messages, toolMsg)
		}
	}

	err := domain.NewDomainError(op, domain.ErrTurnLimit,
		fmt.Sprintf("no final response after %d turns", o.deps.MaxTurns))
	tracer.RecordError(span, err)
	return nil, err
}

// executeTool dispatches a single tool call and synthesizes the tool-result
// message. A dispatch reporting failure is returned as a domain error; the
// caller aborts the turn.
func (o *Orchestrator) executeTool(ctx context.Context, call domain.ToolCall) (domain.Message, error) {
	const op = "Orchestrator.executeTool"

	ctx, span := tracer.StartSpan(ctx, "chat.execute_tool",
		trace.WithAttributes(tracer.StringAttr("tool.name", call.Name)),
	)
	defer span.End()

	result := o.deps.Tools.Execute(ctx, call)
	if !result.Success {
		err := domain.NewDomainError(op, domain.ErrToolFailure,
			fmt.Sprintf("tool call failed: %s", result.Error))
		tracer.RecordError(span, err)
		o.deps.Logger.Warn("tool call failed", "tool", call.Name, "error", result.Error)
		return domain.Message{}, err
	}

	content := ""
	if result.Data != nil {
		data, err := json.Marshal(result.Data)
		if err != nil {
			wrapped := domain.NewDomainError(op, domain.ErrToolFailure,
				fmt.Sprintf("encode tool result: %v", err))
			tracer.RecordError(span, wrapped)
			return domain.Message{}, wrapped
		}
		content = string(data)
	}

	tracer.SetOK(span)
	return domain.Message{
		Role:       domain.RoleTool,
		Name:       call.Name,
		ToolCallID: call.ID,
		Content:    content,
		Timestamp:  time.Now(),
	}, nil
}

// withSystemPrompt prepends the configured developer prompt unless the
// caller's history already opens with a system or developer message.
func (o *Orchestrator) withSystemPrompt(initial []domain.Message) []domain.Message {
	if o.deps.SystemPrompt == "" {
		return append([]domain.Message(nil), initial...)
	}
	if first := initial[0].Role; first == domain.RoleSystem || first == domain.RoleDeveloper {
		return append([]domain.Message(nil), initial...)
	}
	messages := make([]domain.Message, 0, len(initial)+1)
	messages = append(messages, domain.Message{
		Role:    domain.RoleDeveloper,
		Content: o.deps.SystemPrompt,
	})
	return append(messages, initial...)
}
