// Package execute runs the selected tools in order, one at a time, and
// folds their results into a single report and exit code.
package execute

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TurboCoder13/py-lintro-sub001/src/artifact"
	"github.com/TurboCoder13/py-lintro-sub001/src/config"
	"github.com/TurboCoder13/py-lintro-sub001/src/discover"
	"github.com/TurboCoder13/py-lintro-sub001/src/plan"
	"github.com/TurboCoder13/py-lintro-sub001/src/resolve"
	"github.com/TurboCoder13/py-lintro-sub001/src/tools"
)

var (
	// ErrInvalidPath is returned when a requested input path is missing or
	// unreadable. It aborts the whole run.
	ErrInvalidPath = errors.New("invalid input path")
	// ErrFailFast is returned when fail-fast stopped the run after a tool
	// failed to execute.
	ErrFailFast = errors.New("stopped by fail-fast")
	// ErrNoTools is returned when the selection leaves nothing to run in
	// either phase.
	ErrNoTools = errors.New("no tools selected to run")
)

// Request describes one run.
type Request struct {
	Mode        Mode
	Paths       []string
	Tools       []string                  // explicit selection; empty means every enabled tool
	ToolOptions map[string]map[string]any // CLI options per tool
	Excludes    []string                  // in addition to the default excludes
	IncludeVenv bool
	Timeout     time.Duration   // per-call override for every tool
	Changed     map[string]bool // restrict to these absolute paths; nil means no restriction
}

// Orchestrator drives tools through their lifecycle.
type Orchestrator struct {
	cfg       *config.Config
	registry  *tools.Registry
	resolver  *resolve.Resolver
	planner   *plan.Planner
	generator *artifact.Generator
	versions  tools.VersionChecker
	logger    *zap.Logger
	newRunID  func() string
	now       func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRegistry sets where tools are looked up (default tools.Default()).
func WithRegistry(r *tools.Registry) Option {
	return func(o *Orchestrator) { o.registry = r }
}

// WithResolver sets the settings resolver.
func WithResolver(r *resolve.Resolver) Option {
	return func(o *Orchestrator) { o.resolver = r }
}

// WithGenerator sets the artifact generator.
func WithGenerator(g *artifact.Generator) Option {
	return func(o *Orchestrator) { o.generator = g }
}

// WithVersionChecker sets the minimum-version check.
func WithVersionChecker(v tools.VersionChecker) Option {
	return func(o *Orchestrator) { o.versions = v }
}

// WithPlanner sets the order planner.
func WithPlanner(p *plan.Planner) Option {
	return func(o *Orchestrator) { o.planner = p }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New returns an orchestrator for cfg.
func New(cfg *config.Config, opts ...Option) *Orchestrator {
	if cfg == nil {
		cfg = config.Default()
	}
	o := &Orchestrator{
		cfg:      cfg,
		logger:   zap.NewNop(),
		newRunID: func() string { return uuid.NewString() },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = tools.Default()
	}
	if o.resolver == nil {
		o.resolver = resolve.New(cfg, resolve.WithLogger(o.logger))
	}
	if o.planner == nil {
		o.planner = plan.New(o.logger)
	}
	if o.generator == nil {
		o.generator = artifact.NewGenerator(artifact.WithLogger(o.logger))
	}
	if o.versions == nil {
		o.versions = tools.NewVersionChecker(nil)
	}
	return o
}

// Run executes the main phase, then the post-check phase. The report is
// returned even when err is non-nil. Errors: tools.ErrUnknownTool before
// anything runs, ErrNoTools when nothing is selected, ErrInvalidPath for
// bad input paths, ErrFailFast when fail-fast stopped the run after a tool
// failed.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Report, error) {
	if req.Mode == "" {
		req.Mode = ModeCheck
	}
	report := &Report{RunID: o.newRunID(), Mode: req.Mode, StartedAt: o.now()}
	defer func() { report.Duration = o.now().Sub(report.StartedAt) }()

	main, post, err := o.selectTools(req)
	if err != nil {
		return report, err
	}
	if len(main) == 0 && len(post) == 0 {
		return report, ErrNoTools
	}

	ordered := o.planner.Order(main, string(o.cfg.Execution.ToolOrder), o.cfg.Execution.CustomOrder, o.cfg.Execution.PriorityOverrides)
	log := o.logger.With(zap.String("run_id", report.RunID), zap.String("mode", string(req.Mode)))
	log.Debug("tool order", zap.Strings("tools", ordered), zap.Strings("post_checks", post))

	if stop, err := o.runPhase(ctx, ordered, req, report, false, log); stop {
		return report, err
	}

	if len(post) > 0 {
		if _, err := o.runPhase(ctx, post, req, report, true, log); err != nil {
			return report, err
		}
	}
	return report, nil
}

// runPhase runs names in order. stop is true when the run must not
// continue (fatal input error or fail-fast). With fail-fast, a tool that
// completed but reported issues also stops the run; that stop returns a
// nil error because the report already carries the failure.
func (o *Orchestrator) runPhase(ctx context.Context, names []string, req Request, report *Report, post bool, log *zap.Logger) (stop bool, err error) {
	for _, name := range names {
		outcome, err := o.runTool(ctx, name, req, post)
		if err != nil {
			return true, err
		}
		if post && outcome == nil {
			log.Debug("post-check tool unavailable, omitted", zap.String("tool", name))
			continue
		}
		outcome.PostCheck = post
		report.Add(*outcome)
		log.Debug("tool finished",
			zap.String("tool", name),
			zap.Stringer("state", outcome.State),
			zap.Int("issues", outcome.Result.IssuesCount),
			zap.Duration("elapsed", outcome.Duration))

		if !o.cfg.Execution.FailFast {
			continue
		}
		switch {
		case outcome.State == Failed:
			log.Info("fail-fast: stopping after failed tool", zap.String("tool", name))
			return true, fmt.Errorf("%w: %s: %v", ErrFailFast, name, outcome.Err)
		case outcome.State == Completed && !outcome.Result.Success:
			log.Info("fail-fast: stopping after tool reported issues", zap.String("tool", name))
			return true, nil
		}
	}
	return false, nil
}

// selectTools returns the main-phase names and the post-check names.
// Post-check tools never run in the main phase.
func (o *Orchestrator) selectTools(req Request) (main, post []string, err error) {
	if o.cfg.PostChecks.Enabled {
		for _, t := range o.cfg.PostChecks.Tools {
			t = strings.ToLower(t)
			if !slices.Contains(post, t) {
				post = append(post, t)
			}
		}
	}

	if len(req.Tools) > 0 {
		for _, t := range req.Tools {
			t = strings.ToLower(strings.TrimSpace(t))
			if !o.registry.Has(t) {
				return nil, nil, fmt.Errorf("%w: %s", tools.ErrUnknownTool, t)
			}
			if !slices.Contains(post, t) {
				main = append(main, t)
			}
		}
		return main, post, nil
	}

	for _, t := range o.registry.Names() {
		if t == tools.Pytest || slices.Contains(post, t) || !o.cfg.IsToolEnabled(t) {
			continue
		}
		if req.Mode == ModeFix {
			if spec, ok := tools.Lookup(t); ok && !spec.CanFix {
				continue
			}
		}
		main = append(main, t)
	}
	return main, post, nil
}

// runTool takes one tool from Pending to a terminal state. A nil outcome
// with nil error means a post-check tool that could not be instantiated
// and is not enforced.
func (o *Orchestrator) runTool(ctx context.Context, name string, req Request, post bool) (*Outcome, error) {
	start := o.now()
	outcome := &Outcome{Tool: name, State: Pending}
	finish := func(s State) *Outcome {
		outcome.State = s
		outcome.Duration = o.now().Sub(start)
		return outcome
	}

	tool, err := o.registry.Get(name)
	if err != nil {
		if !post {
			return nil, err
		}
		if !o.cfg.PostChecks.EnforceFailure {
			return nil, nil
		}
		outcome.Err = err
		outcome.Result = tools.Result{Name: name, Output: fmt.Sprintf("post-check tool %s is not available", name), IssuesCount: 1}
		return finish(Failed), nil
	}

	outcome.State = Preparing
	if err := tool.SetOptions(o.resolver.Resolve(name, req.ToolOptions[name])); err != nil {
		outcome.Err = err
		outcome.Result = tools.Result{Name: name, Output: err.Error(), IssuesCount: 1}
		return finish(Failed), nil
	}

	ectx, err := o.prepare(ctx, tool, req)
	if err != nil {
		return nil, err
	}
	if ectx.EarlyResult != nil {
		outcome.Result = *ectx.EarlyResult
		outcome.Reason = ectx.EarlyResult.Output
		return finish(Skipped), nil
	}

	outcome.State = Running
	path := o.generator.Generate(name, o.cfg, req.ToolOptions[name])
	defer o.generator.Cleanup(path)

	toolReq := tools.Request{
		Files:      ectx.RelFiles,
		Cwd:        ectx.Cwd,
		Timeout:    ectx.Timeout,
		ConfigArgs: artifact.InjectionArgs(name, path),
	}

	var res tools.Result
	if req.Mode == ModeFix {
		res, err = tool.Fix(ctx, toolReq)
	} else {
		res, err = tool.Check(ctx, toolReq)
	}
	res.Name = name
	if err != nil {
		outcome.Err = err
		res.Success = false
		res.IssuesCount = max(1, res.IssuesCount)
		if res.Output == "" {
			res.Output = err.Error()
		}
		outcome.Result = res
		return finish(Failed), nil
	}
	outcome.Result = res
	return finish(Completed), nil
}

// prepare runs the Preparing steps in order: fix support, version check,
// path validation, empty input, discovery, working directory, timeout.
func (o *Orchestrator) prepare(ctx context.Context, tool tools.Tool, req Request) (ExecutionContext, error) {
	spec := tool.Spec()
	var ectx ExecutionContext

	if req.Mode == ModeFix && !spec.CanFix {
		ectx.EarlyResult = skipResult(spec.Name, fmt.Sprintf("%s does not support fixing", spec.Name))
		return ectx, nil
	}

	if st := o.versions.CheckVersion(ctx, spec); !st.Satisfied {
		ectx.EarlyResult = skipResult(spec.Name, "Skipping "+spec.Name+": "+st.Reason)
		return ectx, nil
	}

	if err := discover.ValidatePaths(req.Paths); err != nil {
		return ectx, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	if len(req.Paths) == 0 {
		ectx.EarlyResult = skipResult(spec.Name, "No paths provided, nothing to do.")
		return ectx, nil
	}

	excludes := append(slices.Clone(discover.DefaultExcludes), req.Excludes...)
	files, err := discover.Files(req.Paths, discover.Options{
		Patterns:    spec.FilePatterns,
		Excludes:    excludes,
		IncludeVenv: req.IncludeVenv,
	})
	if err != nil {
		return ectx, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	files = discover.FilterChanged(files, req.Changed)
	if len(files) == 0 {
		ectx.EarlyResult = skipResult(spec.Name, fmt.Sprintf("No %s files found to check.", discover.ExtensionLabel(spec.FilePatterns)))
		return ectx, nil
	}

	ectx.Files = files
	if cwd, ok := discover.CommonDir(files); ok {
		ectx.Cwd = cwd
		ectx.RelFiles = discover.Relativize(files, cwd)
	} else {
		ectx.RelFiles = files
	}

	ectx.Timeout = o.timeout(tool, req)
	return ectx, nil
}

// timeout: per-call override, then the tool's "timeout" option (seconds),
// then the tool's default.
func (o *Orchestrator) timeout(tool tools.Tool, req Request) time.Duration {
	if req.Timeout > 0 {
		return req.Timeout
	}
	if v, ok := tool.Options()["timeout"]; ok {
		if secs, ok := tools.TimeoutSeconds(v); ok && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return tool.Spec().EffectiveTimeout()
}

// Generator exposes the artifact generator so callers can sweep it on exit.
func (o *Orchestrator) Generator() *artifact.Generator { return o.generator }

// Resolver exposes the settings resolver.
func (o *Orchestrator) Resolver() *resolve.Resolver { return o.resolver }
