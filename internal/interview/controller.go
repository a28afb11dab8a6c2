package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ratuser/inter-prep-GenAi/internal/llm"
	"github.com/ratuser/inter-prep-GenAi/internal/prompts"
)

// Options tunes a Controller. HistoryWindow and Temperature are used as given,
// zero included; non-positive token budgets take the defaults below.
type Options struct {
	HistoryWindow  int
	Model          string
	Temperature    float32
	QuestionTokens int
	SummaryTokens  int
}

// Defaults for Options
const (
	DefaultTemperature    float32 = 0.7
	DefaultQuestionTokens         = 300
	DefaultSummaryTokens          = 1000
)

// DefaultOptions returns the production tuning.
func DefaultOptions() Options {
	return Options{
		HistoryWindow:  DefaultHistoryWindow,
		Temperature:    DefaultTemperature,
		QuestionTokens: DefaultQuestionTokens,
		SummaryTokens:  DefaultSummaryTokens,
	}
}

func (o *Options) withDefaults() Options {
	d := DefaultOptions()
	if o == nil {
		return d
	}
	out := *o
	if out.QuestionTokens <= 0 {
		out.QuestionTokens = d.QuestionTokens
	}
	if out.SummaryTokens <= 0 {
		out.SummaryTokens = d.SummaryTokens
	}
	return out
}

// Observer receives per-turn and per-record events. Implementations must be
// safe for concurrent use.
type Observer interface {
	TurnHandled(mode Mode, phase string, outcome string, elapsed time.Duration)
	InterviewRecorded(category Category, score int, scoreFound bool)
}

type nopObserver struct{}

func (nopObserver) TurnHandled(Mode, string, string, time.Duration) {}
func (nopObserver) InterviewRecorded(Category, int, bool) {}

// Turn outcomes reported to the Observer
const (
	OutcomeOK          = "ok"
	OutcomeNotReady    = "not_ready"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// ControllerConfig wires a Controller.
type ControllerConfig struct {
	Gateway  llm.Client
	Scripts  *Scripts        // nil loads the embedded scripts
	Retry    llm.RetryConfig // zero value means no retries
	Options  *Options // nil means DefaultOptions
	Observer Observer

	// SessionTag generates the per-call novelty tag; nil uses a ULID.
	SessionTag func() string
}

// Controller runs one interview turn per call. It keeps no per-interview
// state; every call reconstructs the stage from the transcript it is given.
type Controller struct {
	gateway    llm.Client
	scripts    *Scripts
	assembler  *Assembler
	retry      llm.RetryConfig
	opts       Options
	observer   Observer
	sessionTag func() string
	emptyText  string
}

// NewController validates cfg and builds a Controller.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}

	scripts := cfg.Scripts
	if scripts == nil {
		var err error
		if scripts, err = DefaultScripts(); err != nil {
			return nil, err
		}
	}

	assembler, err := NewAssembler()
	if err != nil {
		return nil, fmt.Errorf("failed to load interviewer prompts: %w", err)
	}

	emptyText, err := prompts.Get(prompts.InterviewFile, "empty-response")
	if err != nil {
		return nil, err
	}

	c := &Controller{
		gateway:    cfg.Gateway,
		scripts:    scripts,
		assembler:  assembler,
		retry:      cfg.Retry,
		opts:       cfg.Options.withDefaults(),
		observer:   cfg.Observer,
		sessionTag: cfg.SessionTag,
		emptyText:  emptyText,
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	if c.sessionTag == nil {
		c.sessionTag = func() string { return ulid.Make().String() }
	}
	return c, nil
}

// Scripts exposes the policy tables the controller runs on.
func (c *Controller) Scripts() *Scripts {
	return c.scripts
}

// HandleTurn produces the interviewer's next message.
//
// Errors: ErrNotReady when the profile is missing or unanalysed,
// ErrRateLimited when throttling outlived every retry, ErrGateway for any
// other upstream failure. history is never modified, so a failed turn can be
// retried with identical inputs.
func (c *Controller) HandleTurn(ctx context.Context, profile *Profile, history []Turn, message string) (*TurnResult, error) {
	start := time.Now()

	if !profile.Ready() {
		c.observer.TurnHandled("", "", OutcomeNotReady, time.Since(start))
		return nil, ErrNotReady
	}

	mode := ParseMode(string(profile.Mode))
	stage := StageIndex(history)
	instruction := c.scripts.Policy(stage, mode)
	complete := c.scripts.IsComplete(stage, mode)

	messages := c.assembler.Assemble(AssembleInput{
		Profile:     profile,
		Instruction: instruction,
		History:     history,
		Message:     message,
		SessionTag:  c.sessionTag(),
		Window:      c.opts.HistoryWindow,
	})

	maxTokens := c.opts.QuestionTokens
	if instruction.Terminal {
		maxTokens = c.opts.SummaryTokens
	}
	req := &llm.Request{
		Model:           c.opts.Model,
		Messages:        messages,
		Temperature:     c.opts.Temperature,
		MaxOutputTokens: maxTokens,
	}

	text, err := llm.RetryDo(ctx, c.retry, func() (string, error) {
		return c.gateway.Complete(ctx, req)
	})
	if err != nil {
		outcome := OutcomeError
		if errors.Is(err, ErrRateLimited) {
			outcome = OutcomeRateLimited
		}
		c.observer.TurnHandled(mode, instruction.Phase, outcome, time.Since(start))
		slog.Error("interview turn failed",
			"user_id", profile.UserID,
			"stage", stage,
			"phase", instruction.Phase,
			"error", err,
		)
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		text = c.emptyText
	}

	c.observer.TurnHandled(mode, instruction.Phase, OutcomeOK, time.Since(start))
	slog.Debug("interview turn",
		"user_id", profile.UserID,
		"instruction", instruction.String(),
		"history_len", len(history),
		"complete", complete,
	)

	return &TurnResult{
		Text:     text,
		Stage:    stage,
		Complete: complete,
		Phase:    instruction.Phase,
	}, nil
}
