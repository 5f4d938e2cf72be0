package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"serve", "series", "render", "validate"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "pricechart", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotNil(t, rootCmd.PersistentPreRunE)
	assert.NotNil(t, rootCmd.PersistentPostRun)
}

func TestServeCmd_Flags(t *testing.T) {
	f := serveCmd.Flags().Lookup("port")
	require.NotNil(t, f)
	assert.Equal(t, "0", f.DefValue)
}

func TestSeriesCmd_Flags(t *testing.T) {
	for name, def := range map[string]string{
		"mode":       "gap",
		"no-hover":   "false",
		"range":      "false",
		"fill-years": "false",
		"format":     "json",
	} {
		f := seriesCmd.Flags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, def, f.DefValue, name)
	}
}

func TestRenderCmd_Flags(t *testing.T) {
	for name, def := range map[string]string{
		"out":       "chart.png",
		"format":    "",
		"lock-year": "0",
		"mode":      "gap",
	} {
		f := renderCmd.Flags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, def, f.DefValue, name)
	}
}
