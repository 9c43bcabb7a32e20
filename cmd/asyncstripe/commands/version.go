package commands

import (
	"fmt"

	"github.com/fivetwenty-io/asyncstripe/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the asyncstripe CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			type VersionInfo struct {
				Version string `json:"version" yaml:"version"`
				Commit  string `json:"commit"  yaml:"commit"`
				Built   string `json:"built"   yaml:"built"`
				Client  string `json:"client"  yaml:"client"`
			}

			format, err := outputFormat()
			if err != nil {
				return err
			}

			if format != constants.FormatTable {
				return encodeStructured(cmd.OutOrStdout(), format, VersionInfo{
					Version: version,
					Commit:  commit,
					Built:   date,
					Client:  constants.ClientName,
				})
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Property", "Value")
			_ = table.Append("Version", version)
			_ = table.Append("Commit", commit)
			_ = table.Append("Built", date)
			_ = table.Append("Client", constants.ClientName)

			if err := table.Render(); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}
}
