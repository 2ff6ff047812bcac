package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"wk-scan/scanlog"
)

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func newObjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "objects", Short: "Manage scan objects"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List scan objects",
		RunE: func(_ *cobra.Command, _ []string) error {
			res := a.svc.ListObjects()
			if err := check(res); err != nil {
				return err
			}
			tbl := table.NewWriter()
			tbl.SetOutputMirror(os.Stdout)
			tbl.SetStyle(table.StyleLight)
			tbl.AppendHeader(table.Row{"ID", "Name", "Value", "Material", "Rule type", "Rule"})
			for _, o := range res.Data.([]scanlog.ScanObject) {
				tbl.AppendRow(table.Row{o.ID, o.Name, o.Value, o.MaterialNumber, o.RuleType, o.Rule})
			}
			tbl.Render()
			return nil
		},
	})

	var obj scanlog.ScanObject
	var ruleType string
	save := &cobra.Command{
		Use:   "save",
		Short: "Create (no --id) or update a scan object; unset flags keep their value",
		RunE: func(_ *cobra.Command, _ []string) error {
			obj.RuleType = scanlog.RuleType(ruleType)
			res := a.svc.SaveObject(obj)
			if err := check(res); err != nil {
				return err
			}
			saved := res.Data.(scanlog.ScanObject)
			success("scan object saved id=%d value=%s", saved.ID, saved.Value)
			return nil
		},
	}
	save.Flags().IntVar(&obj.ID, "id", 0, "Object id to update; omit to create.")
	save.Flags().StringVar(&obj.Name, "name", "", "Display name.")
	save.Flags().StringVar(&obj.Value, "value", "", "Partition key; derived from the name when empty.")
	save.Flags().StringVar(&obj.MaterialNumber, "material", "", "Material number.")
	save.Flags().StringVar(&ruleType, "rule-type", "", "default, custom or material-number (default on create).")
	save.Flags().StringVar(&obj.Rule, "rule", "", "Barcode regular expression.")
	cmd.AddCommand(save)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a scan object from the catalog (partitions stay on disk)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := check(a.svc.DeleteObject(id)); err != nil {
				return err
			}
			success("scan object %d deleted", id)
			return nil
		},
	})
	return cmd
}

func newRulesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "rules", Short: "Manage scan rules"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List scan rules",
		RunE: func(_ *cobra.Command, _ []string) error {
			res := a.svc.ListRules()
			if err := check(res); err != nil {
				return err
			}
			tbl := table.NewWriter()
			tbl.SetOutputMirror(os.Stdout)
			tbl.SetStyle(table.StyleLight)
			tbl.AppendHeader(table.Row{"ID", "Name", "Pattern", "Default"})
			for _, r := range res.Data.([]scanlog.ScanRule) {
				tbl.AppendRow(table.Row{r.ID, r.Name, r.Value, r.IsDefault})
			}
			tbl.Render()
			return nil
		},
	})

	var rule scanlog.ScanRule
	save := &cobra.Command{
		Use:   "save",
		Short: "Create (no --id) or update a scan rule; unset flags keep their value",
		RunE: func(_ *cobra.Command, _ []string) error {
			res := a.svc.SaveRule(rule)
			if err := check(res); err != nil {
				return err
			}
			success("scan rule saved id=%d", res.Data.(scanlog.ScanRule).ID)
			return nil
		},
	}
	save.Flags().IntVar(&rule.ID, "id", 0, "Rule id to update; omit to create.")
	save.Flags().StringVar(&rule.Name, "name", "", "Display name.")
	save.Flags().StringVar(&rule.Value, "value", "", "Barcode regular expression.")
	save.Flags().BoolVar(&rule.IsDefault, "default", false, "Make this the default rule.")
	cmd.AddCommand(save)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a scan rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := check(a.svc.DeleteRule(id)); err != nil {
				return err
			}
			success("scan rule %d deleted", id)
			return nil
		},
	})
	return cmd
}
