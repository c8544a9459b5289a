package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmd_Structure(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "mergelog", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotEmpty(t, rootCmd.Example)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		flagName string
		wantFlag bool
	}{
		"config flag exists": {
			flagName: "config",
			wantFlag: true,
		},
		"debug flag exists": {
			flagName: "debug",
			wantFlag: true,
		},
		"no stray verbose flag": {
			flagName: "verbose",
			wantFlag: false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			flag := rootCmd.PersistentFlags().Lookup(tt.flagName)
			if tt.wantFlag {
				assert.NotNil(t, flag, "Flag %s should exist", tt.flagName)
			} else {
				assert.Nil(t, flag)
			}
		})
	}
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	t.Parallel()

	want := map[string]bool{
		"run":     false,
		"config":  false,
		"version": false,
	}
	for _, cmd := range rootCmd.Commands() {
		name := cmd.Name()
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		assert.True(t, found, "command %q should be registered", name)
	}
}

func TestRunCmd_Flags(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"repo", "pr", "date", "page-id", "no-comment", "dry-run"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "run flag %q should exist", name)
	}
}

func TestConfigCmd_Subcommands(t *testing.T) {
	t.Parallel()

	want := map[string]bool{
		"show":    false,
		"set":     false,
		"keys":    false,
		"path":    false,
		"init":    false,
		"migrate": false,
	}
	for _, cmd := range configCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		assert.True(t, found, "config subcommand %q should be registered", name)
	}
}
