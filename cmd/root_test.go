package cmd

import (
	"strings"
	"testing"
)

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		want    string
	}{
		{
			name: "version flag",
			args: []string{"--version"},
			want: version,
		},
		{
			name: "help flag",
			args: []string{"--help"},
			want: "shopsavvy",
		},
		{
			name:    "unknown command",
			args:    []string{"nonexistent-command"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.want != "" && !strings.Contains(out, tt.want) {
				t.Errorf("output %q does not contain %q", out, tt.want)
			}
		})
	}
}

func TestRootCommand_VerboseFlag(t *testing.T) {
	// No subcommand: cobra prints help, nothing should panic
	_, _ = execute(t, "", "--verbose")
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	t.Setenv("SHOPSAVVY_LOG_LEVEL", "chatty")
	_, err := execute(t, "", "list", "--store", t.TempDir())
	if err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestRootCommand_InvalidResponseMode(t *testing.T) {
	t.Setenv("SHOPSAVVY_MODE_RESPONSE", "fancy")
	_, err := execute(t, "", "list", "--store", t.TempDir())
	if err == nil {
		t.Fatal("expected error for invalid response mode")
	}
}
