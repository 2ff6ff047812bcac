package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wk-scan/scanlog"
)

type app struct {
	configPath string
	workDir    string
	language   string
	debug      bool

	settings scanlog.Settings
	log      *zap.SugaredLogger
	svc      *scanlog.Service
	closers  []func() error
}

func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "wk-scan",
		Short:         "Barcode scan log with per-day partitions, analytics and exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", scanlog.DefaultSettingsPath(), "Settings file path.")
	pf.StringVar(&a.workDir, "work-dir", "", "Working directory (overrides settings work_dir).")
	pf.StringVar(&a.language, "lang", "", "Message language: zh, en, vi, jap (overrides settings language).")
	pf.BoolVar(&a.debug, "debug", false, "Enable debug logs.")

	root.AddCommand(
		newServeCmd(a),
		newObjectsCmd(a),
		newRulesCmd(a),
		newScanCmd(a),
		newRecordsCmd(a),
		newSnapshotCmd(a),
		newHistoryCmd(a),
		newExportCmd(a),
		newBackupCmd(a),
		newConfigCmd(a),
		newJournalCmd(a),
	)
	return root
}

// open loads settings, applies explicitly set flags over them, takes the
// working directory lock and starts the service.
func (a *app) open(cmd *cobra.Command) error {
	if !needsEngine(cmd) {
		return nil
	}
	s, err := scanlog.LoadSettings(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("work-dir") {
		s.WorkDir = a.workDir
	}
	if flags.Changed("lang") {
		s.Language = a.language
	}
	if flags.Changed("debug") {
		s.Debug = a.debug
	}
	if err := s.Validate(); err != nil {
		return err
	}
	a.settings = s

	if err := scanlog.EnsureDir(s.WorkDir); err != nil {
		return err
	}
	lock, err := scanlog.AcquireInstanceLock(s.WorkDir)
	if errors.Is(err, scanlog.ErrLocked) {
		return fmt.Errorf("%w (%s); stop the running wk-scan first", err, s.WorkDir)
	}
	if err != nil {
		return err
	}
	a.closers = append(a.closers, lock.Release)

	log, sync := scanlog.NewLogger(s.WorkDir, s.Debug)
	a.log = log
	a.closers = append(a.closers, sync)

	svc, err := scanlog.NewService(a.configPath, s, log)
	if err != nil {
		_ = a.close()
		return err
	}
	svc.HoldInstanceLock(lock)
	a.svc = svc
	a.closers = append(a.closers, svc.Close)
	return nil
}

func needsEngine(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "help" || c.Name() == "completion" {
			return false
		}
	}
	return true
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// check prints a failed result and turns it into an error.
func check(res scanlog.Result) error {
	if res.OK() {
		return nil
	}
	if res.Data != nil {
		_ = printJSON(res.Data)
	}
	return fmt.Errorf("%s: %s", res.Code, res.Message)
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printResult(res scanlog.Result) error {
	if err := check(res); err != nil {
		return err
	}
	return printJSON(res.Data)
}

func success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(os.Stdout, format+"\n", args...)
}
