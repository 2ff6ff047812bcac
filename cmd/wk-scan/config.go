package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"wk-scan/scanlog"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Show or change settings"}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the effective settings",
		RunE: func(_ *cobra.Command, _ []string) error {
			return printResult(a.svc.GetSettings())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Change one setting and save the settings file",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"work_dir", "language", "internet", "host", "listen", "debug"},
		RunE: func(_ *cobra.Command, args []string) error {
			patch, err := settingsPatch(args[0], args[1])
			if err != nil {
				return err
			}
			res := a.svc.SaveSettings(patch)
			if err := check(res); err != nil {
				return err
			}
			success("%s = %s", args[0], args[1])
			return nil
		},
	})
	return cmd
}

func settingsPatch(key, value string) (scanlog.SettingsPatch, error) {
	var p scanlog.SettingsPatch
	switch key {
	case "work_dir":
		p.WorkDir = &value
	case "language":
		p.Language = &value
	case "host":
		p.Host = &value
	case "listen":
		p.Listen = &value
	case "internet", "debug":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return p, fmt.Errorf("%s: %w", key, err)
		}
		if key == "internet" {
			p.Internet = &b
		} else {
			p.Debug = &b
		}
	default:
		return p, fmt.Errorf("unknown setting %q", key)
	}
	return p, nil
}
