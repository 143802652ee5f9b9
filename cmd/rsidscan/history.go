package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ZanMander/Forensic-linguistics/internal/archive"
)

func (c *cli) historyCmd() *cobra.Command {
	var (
		fingerprint string
		deleteID    string
		limit       int
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived analyses",
		Long: `History lists past analyses from the archive, newest first. With
--fingerprint it lists every analysis of one document, oldest first.
--delete removes one record by its full run ID, as printed by --json.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return usageErrorf("--limit must not be negative")
			}
			if deleteID != "" && (fingerprint != "" || asJSON) {
				return usageErrorf("--delete cannot be combined with --fingerprint or --json")
			}

			store, err := archive.Open(c.cfg.ArchivePath())
			if err != nil {
				return err
			}
			defer store.Close()

			if deleteID != "" {
				if err := store.Delete(cmd.Context(), deleteID); err != nil {
					return err
				}
				fmt.Fprintf(c.stdout, "Deleted analysis %s\n", deleteID)
				return nil
			}

			var records []*archive.Record
			if fingerprint != "" {
				records, err = store.ListByFingerprint(cmd.Context(), fingerprint)
				if err == nil && limit > 0 && len(records) > limit {
					records = records[len(records)-limit:]
				}
			} else {
				records, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			if asJSON {
				for _, r := range records {
					r.Payload = nil
				}
				if records == nil {
					records = []*archive.Record{}
				}
				enc := json.NewEncoder(c.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			return printHistory(c, records)
		},
	}

	cmd.Flags().StringVar(&fingerprint, "fingerprint", "", "only show analyses of the document with this SHA-256")
	cmd.Flags().StringVar(&deleteID, "delete", "", "remove the archived analysis with this run ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of records")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")
	return cmd
}

func printHistory(c *cli, records []*archive.Record) error {
	if len(records) == 0 {
		fmt.Fprintln(c.stdout, "No archived analyses.")
		return nil
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ANALYZED\tRUN\tFILE\tFINGERPRINT\tCOPY-PASTE\tCONFIDENCE\tCOMPLETION\tVERDICT")
	for _, r := range records {
		verdict := "clear"
		if r.Detected {
			verdict = "flagged"
		}
		if r.Degraded {
			verdict += " (degraded)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f%%\t%.0f%%\t%.0f%%\t%s\n",
			r.AnalyzedAt.Local().Format("2006-01-02 15:04"),
			shortID(r.ID, 8),
			r.FileName,
			shortID(r.Fingerprint, 12),
			r.CopyPasteScore*100,
			r.Confidence*100,
			r.CompletionScore*100,
			verdict,
		)
	}
	return tw.Flush()
}

func shortID(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
