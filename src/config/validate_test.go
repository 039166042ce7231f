package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	known := []string{"ruff", "black", "prettier"}

	tests := []struct {
		name     string
		cfg      *Config
		wantErr  string
		wantWarn string
	}{
		{
			name: "default is valid",
			cfg:  Default(),
		},
		{
			name:    "negative line length",
			cfg:     Default().WithGlobal(GlobalConfig{LineLength: IntPtr(-1)}),
			wantErr: "global.line_length",
		},
		{
			name: "unknown enabled tool",
			cfg: Default().WithExecution(ExecutionPolicy{
				ToolOrder:    OrderPriority,
				EnabledTools: []string{"ruff", "nosuch"},
			}),
			wantErr: `unknown tool "nosuch"`,
		},
		{
			name: "unknown strategy warns",
			cfg: Default().WithExecution(ExecutionPolicy{
				ToolOrder: OrderStrategy("random"),
			}),
			wantWarn: `unknown strategy "random"`,
		},
		{
			name:     "unknown tool section warns",
			cfg:      Default().WithTool("mystery", ToolConfig{Enabled: true}),
			wantWarn: "tools.mystery",
		},
		{
			name:    "unknown post-check tool",
			cfg:     Default().WithPostChecks(PostChecks{Enabled: true, Tools: []string{"ghost"}}),
			wantErr: "post_checks.tools[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings, err := Validate(tt.cfg, known)

			if tt.wantErr == "" && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
			}

			joined := strings.Join(warnings, "\n")
			if tt.wantWarn == "" && len(warnings) > 0 {
				t.Fatalf("unexpected warnings: %v", warnings)
			}
			if tt.wantWarn != "" && !strings.Contains(joined, tt.wantWarn) {
				t.Fatalf("warnings = %q, want containing %q", joined, tt.wantWarn)
			}
		})
	}
}

func TestMigrateLegacy(t *testing.T) {
	out, err := MigrateLegacy([]byte(`
[tool.lintro]
line_length = 100
enabled_tools = ["ruff"]

[tool.lintro.ruff]
select = ["E"]
`))
	if err != nil {
		t.Fatalf("MigrateLegacy: %v", err)
	}
	s := string(out)
	for _, want := range []string{"global:", "line_length: 100", "execution:", "enabled_tools:", "tools:", "ruff:"} {
		if !strings.Contains(s, want) {
			t.Errorf("migrated yaml missing %q:\n%s", want, s)
		}
	}

	if _, err := MigrateLegacy([]byte("[project]\nname = \"x\"\n")); err == nil {
		t.Error("expected error when [tool.lintro] is absent")
	}
}
