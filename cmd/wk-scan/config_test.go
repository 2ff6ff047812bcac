package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestSettingsPatch(t *testing.T) {
	p, err := settingsPatch("language", "en")
	require.NoError(t, err)
	require.Equal(t, "en", *p.Language)
	require.Nil(t, p.WorkDir)

	p, err = settingsPatch("internet", "true")
	require.NoError(t, err)
	require.True(t, *p.Internet)

	_, err = settingsPatch("debug", "maybe")
	require.Error(t, err)
	_, err = settingsPatch("colour", "red")
	require.Error(t, err)
}

func TestNeedsEngine(t *testing.T) {
	root := newRootCmd(&app{})
	for _, args := range [][]string{{"records"}, {"objects", "list"}, {"config", "set"}} {
		cmd, _, err := root.Find(args)
		require.NoError(t, err)
		require.True(t, needsEngine(cmd), args)
	}

	help := &cobra.Command{Use: "help"}
	root.AddCommand(help)
	require.False(t, needsEngine(help))
}
