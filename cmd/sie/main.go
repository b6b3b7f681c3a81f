// Command sie is a small inspection tool for SIE4 files: it summarizes file
// contents and re-encodes files between CP437 and UTF-8.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tinoosan/bokforing/internal/ledger"
	"github.com/tinoosan/bokforing/internal/sie"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sie",
		Short: "Inspect and convert SIE4 bookkeeping files",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newConvertCommand())
	return rootCmd
}

func readFile(path string) (sie.File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return sie.File{}, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := sie.Parse(sie.Decode(raw))
	if err != nil {
		return sie.File{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return *f, nil
}

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print a summary of a SIE4 file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "company:   %s\n", f.CompanyName)
			if f.OrgNumber != "" {
				fmt.Fprintf(out, "orgnr:     %s\n", f.OrgNumber)
			}
			if f.Program != "" {
				fmt.Fprintf(out, "program:   %s %s\n", f.Program, f.ProgramVer)
			}
			indexes := make([]int, 0, len(f.Years))
			for i := range f.Years {
				indexes = append(indexes, i)
			}
			sort.Sort(sort.Reverse(sort.IntSlice(indexes)))
			for _, i := range indexes {
				p := f.Years[i]
				fmt.Fprintf(out, "year %d:    %s – %s\n", i, p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
			}
			fmt.Fprintf(out, "accounts:  %d\n", len(f.Accounts))
			fmt.Fprintf(out, "vouchers:  %d\n", len(f.Vouchers))

			var debit ledger.Ore
			for _, v := range f.Vouchers {
				for _, tr := range v.Transactions {
					if tr.Amount > 0 {
						debit += tr.Amount
					}
				}
			}
			fmt.Fprintf(out, "turnover:  %s kr (total debit)\n", sie.FormatAmount(debit))
			return nil
		},
	}
}

func newConvertCommand() *cobra.Command {
	var toCP437 bool
	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Normalize a SIE4 file, re-encoding it as UTF-8 or CP437",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			text := sie.Decode(raw)
			// round through the parser so the output is normalized, not
			// merely transcoded
			f, err := sie.Parse(text)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}
			out := sie.Export(exportOptions(*f))
			data := []byte(out)
			if toCP437 {
				data = sie.EncodeCP437(out)
			}
			if err := os.WriteFile(args[1], data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", args[1], err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&toCP437, "cp437", false, "write CP437 (PC8) output instead of UTF-8")
	return cmd
}

// exportOptions maps a parsed file back onto export options, preserving what
// the input declared.
func exportOptions(f sie.File) sie.ExportOptions {
	opts := sie.ExportOptions{
		Program:     f.Program,
		ProgramVer:  f.ProgramVer,
		CompanyName: f.CompanyName,
		OrgNumber:   f.OrgNumber,
		Years:       f.Years,
		Accounts:    f.Accounts,
		Opening:     f.OpeningBalances,
		Closing:     f.ClosingBalances,
		Results:     f.Results,
		Vouchers:    f.Vouchers,
	}
	if !f.Generated.IsZero() {
		opts.Generated = f.Generated.Format("20060102")
	}
	if opts.Program == "" {
		opts.Program = "bokforing"
	}
	return opts
}
