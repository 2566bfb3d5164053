package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"guestlint/internal/diag"
	"guestlint/internal/rules"
)

var (
	rulesFormat   string
	rulesCategory string
	rulesVerbose  bool
)

func init() {
	rulesCmd.Flags().StringVarP(&rulesFormat, "format", "f", "pretty", "output format (pretty|json)")
	rulesCmd.Flags().StringVar(&rulesCategory, "category", "", "only list one category")
	rulesCmd.Flags().BoolVarP(&rulesVerbose, "verbose", "v", false, "include descriptions and fixes")
}

var rulesCmd = &cobra.Command{
	Use:          "rules [rule-id]",
	Short:        "List lint rules or show one rule in detail",
	SilenceUsage: true,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runRules,
}

type ruleJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Description string `json:"description,omitempty"`
	Fix         string `json:"fix,omitempty"`
	Doc         string `json:"doc,omitempty"`
}

func runRules(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	colorOn := useColor(cmd, os.Stdout)

	catalog, err := rules.NewCatalog()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return showRule(out, catalog, args[0], colorOn)
	}

	list, err := sortedRules(catalog, rulesCategory)
	if err != nil {
		return err
	}

	if rulesFormat == "json" {
		payload := make([]ruleJSON, 0, len(list))
		for _, r := range list {
			payload = append(payload, ruleJSON{
				ID:          r.ID,
				Name:        r.Name,
				Category:    r.Category.Key(),
				Severity:    r.Severity.String(),
				Description: r.Description,
				Fix:         r.FixTemplate,
				Doc:         r.DocReference,
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	var lastCat diag.Category
	first := true
	for _, r := range list {
		if first || r.Category != lastCat {
			header := r.Category.Key()
			if colorOn {
				header = color.New(color.Bold).Sprint(header)
			}
			if !first {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s:\n", header)
			first = false
			lastCat = r.Category
		}
		fmt.Fprintf(out, "  %-34s %-8s %s\n", r.ID, r.Severity, r.Name)
		if rulesVerbose {
			fmt.Fprintf(out, "      %s\n", strings.ReplaceAll(r.Description, "\n", "\n      "))
		}
	}
	return nil
}

// sortedRules returns the catalog rules, optionally filtered to one
// category, ordered by category then id. Rules() exposes the catalog's
// backing slice, so it is copied before sorting.
func sortedRules(catalog *rules.Catalog, category string) ([]rules.Rule, error) {
	list := append([]rules.Rule(nil), catalog.Rules()...)
	if category != "" {
		cat, ok := diag.CategoryFromKey(category)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", category)
		}
		filtered := list[:0]
		for _, r := range list {
			if r.Category == cat {
				filtered = append(filtered, r)
			}
		}
		list = filtered
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Category != list[j].Category {
			return list[i].Category < list[j].Category
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func showRule(out io.Writer, catalog *rules.Catalog, id string, colorOn bool) error {
	r, ok := catalog.Get(id)
	if !ok {
		return fmt.Errorf("unknown rule %q", id)
	}
	name := r.Name
	if colorOn {
		name = color.New(color.Bold).Sprint(name)
	}
	fmt.Fprintf(out, "%s (%s)\n", name, r.ID)
	fmt.Fprintf(out, "category: %s\nseverity: %s\n\n%s\n", r.Category.Key(), r.Severity, r.Description)
	if r.FixTemplate != "" {
		fmt.Fprintf(out, "\nsuggested fix: %s\n", r.FixTemplate)
	}
	if r.DocReference != "" {
		fmt.Fprintf(out, "see: %s\n", r.DocReference)
	}
	return nil
}
