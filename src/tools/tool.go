package tools

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for tool selection and invocation.
var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrFixNotSupported = errors.New("tool does not support fixing")
	ErrTimeout         = errors.New("tool timed out")
	ErrNotInstalled    = errors.New("tool not installed")
	ErrInvalidOption   = errors.New("invalid tool option")
)

// Request is the input to one Check or Fix call. Files are relative to Cwd.
type Request struct {
	Files      []string
	Cwd        string
	Timeout    time.Duration
	ConfigArgs []string // config injection flags, placed before files
}

// Result is the outcome of one tool run.
type Result struct {
	Name           string `json:"tool"`
	Success        bool   `json:"success"`
	Output         string `json:"output,omitempty"`
	IssuesCount    int    `json:"issues_count"`
	FixedCount     int    `json:"fixed_count,omitempty"`
	RemainingCount int    `json:"remaining_count,omitempty"`
}

// Tool is an adapter over one external executable.
type Tool interface {
	Spec() Spec
	Options() map[string]any
	SetOptions(opts map[string]any) error
	Check(ctx context.Context, req Request) (Result, error)
	// Fix returns ErrFixNotSupported when Spec().CanFix is false.
	Fix(ctx context.Context, req Request) (Result, error)
}
