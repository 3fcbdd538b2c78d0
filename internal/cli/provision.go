package cli

import (
	"github.com/spf13/cobra"
)

type provisionResult struct {
	RootID     string `json:"rootId"`
	CategoryID string `json:"categoryId"`
	SubjectID  string `json:"subjectId"`
	Category   string `json:"category"`
	Subject    string `json:"subject"`
}

func (r *provisionResult) Headers() []string {
	return []string{"Level", "Name", "Folder ID"}
}

func (r *provisionResult) Rows() [][]string {
	return [][]string{
		{"root", "", r.RootID},
		{"category", r.Category, r.CategoryID},
		{"subject", r.Subject, r.SubjectID},
	}
}

func (r *provisionResult) EmptyMessage() string { return "no folders resolved" }

var provisionCmd = &cobra.Command{
	Use:   "provision <category> <subject>",
	Short: "Ensure the folder chain for a category and subject exists",
	Long: `Ensure the root / category / subject folder chain exists, creating
any missing level, and print the folder IDs. Running it again for the
same pair reuses the existing folders.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		writer := NewOutputWriter(globalFlags.OutputFormat, globalFlags.Quiet)
		category, subject := args[0], args[1]

		c, err := newClient()
		if err != nil {
			writer.WriteError("provision", err)
			return err
		}

		structure, err := c.ResolveFolderStructure(cmd.Context(), category, subject)
		if err != nil {
			writer.WriteError("provision", err)
			return err
		}

		return writer.WriteSuccess("provision", &provisionResult{
			RootID:     structure.RootID,
			CategoryID: structure.CategoryID,
			SubjectID:  structure.SubjectID,
			Category:   category,
			Subject:    subject,
		})
	},
}

func init() {
	rootCmd.AddCommand(provisionCmd)
}
