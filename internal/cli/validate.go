package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"elsa-proficiency-test/internal/config"
	"elsa-proficiency-test/internal/domain"
	"github.com/spf13/cobra"
)

// NewValidateCmd checks a catalog and prints its outline.
func NewValidateCmd(configPath, catalogPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a catalog and print its sections and CEFR bands",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			c, err := loadCatalog(cfg, *catalogPath)
			if err != nil {
				return err
			}
			return printOutline(cmd.OutOrStdout(), c)
		},
	}
}

func printOutline(w io.Writer, c domain.Catalog) error {
	fmt.Fprintf(w, "%s (%s)\n\n", c.Title, c.ID)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tPAYLOAD\tITEMS\tPOINTS\tRETURN")
	for _, s := range c.Sections {
		items := len(s.Questions)
		if s.Prompt != nil {
			items = 1
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%v\n", s.ID, s.Payload(), items, s.TotalPoints, s.CanReturnLater)
	}
	fmt.Fprintf(tw, "total\t\t\t%d\t\n", c.MaxTotal())
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LEVEL\tNAME\tSCORES")
	for _, l := range c.Levels {
		fmt.Fprintf(tw, "%s\t%s\t%d-%d\n", l.Level, l.Name, l.MinScore, l.MaxScore)
	}
	return tw.Flush()
}
