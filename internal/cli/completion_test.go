package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg", "dot", "png", "pdf", "json"}},
		{"p", []string{"png", "pdf"}},
		{"svg,", []string{"svg,dot", "svg,png", "svg,pdf", "svg,json"}},
		{"svg,d", []string{"svg,dot"}},
		{"svg,dot,png,pdf,json,", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, dir := completeFormats(nil, nil, tt.in)
			assert.Equal(t, tt.want, got)
			assert.NotZero(t, dir&cobra.ShellCompDirectiveNoFileComp)
		})
	}
}

func TestCompletionCommand(t *testing.T) {
	c, _ := setupCLI(t)
	for _, shell := range completionShells {
		root := c.RootCommand()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs([]string{"completion", shell})
		require.NoError(t, root.Execute(), shell)
		assert.Contains(t, out.String(), "auroramap", shell)
	}
	assert.Error(t, run(t, c, "completion", "tcsh"))
}
