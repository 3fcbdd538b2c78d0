package cli

import (
	"os"
	"path/filepath"

	"github.com/awibisono/arsipdrive/internal/types"
	"github.com/spf13/cobra"
)

var (
	uploadCategory string
	uploadSubject  string
	uploadFolderID string
	uploadName     string
	uploadMimeType string
)

type uploadCmdResult struct {
	FileID         string `json:"fileId"`
	FileName       string `json:"fileName"`
	WebViewLink    string `json:"webViewLink,omitempty"`
	WebContentLink string `json:"webContentLink,omitempty"`
}

func (r *uploadCmdResult) Headers() []string {
	return []string{"File ID", "Name", "View Link"}
}

func (r *uploadCmdResult) Rows() [][]string {
	return [][]string{{r.FileID, r.FileName, orDash(r.WebViewLink)}}
}

func (r *uploadCmdResult) EmptyMessage() string { return "nothing uploaded" }

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a document into its category and subject folder",
	Long: `Upload a local file into the folder chain for --category and
--subject, provisioning missing folders first, or directly into a known
folder with --folder-id. The destination name defaults to the local
file name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		writer := NewOutputWriter(globalFlags.OutputFormat, globalFlags.Quiet)
		path := args[0]

		c, err := newClient()
		if err != nil {
			writer.WriteError("upload", err)
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			writer.WriteError("upload", err)
			return err
		}
		defer f.Close()

		name := uploadName
		if name == "" {
			name = filepath.Base(path)
		}

		var result *types.UploadResult
		if uploadFolderID != "" {
			result, err = c.UploadTo(cmd.Context(), f, uploadFolderID, name, uploadMimeType)
		} else {
			result, err = c.UploadFile(cmd.Context(), f, uploadCategory, uploadSubject, name, uploadMimeType)
		}
		if err != nil {
			writer.WriteError("upload", err)
			return err
		}

		return writer.WriteSuccess("upload", &uploadCmdResult{
			FileID:         result.FileID,
			FileName:       result.FileName,
			WebViewLink:    result.WebViewLink,
			WebContentLink: result.WebContentLink,
		})
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadCategory, "category", "", "Submission category (folder level below root)")
	uploadCmd.Flags().StringVar(&uploadSubject, "subject", "", "Submitter name (folder level below category)")
	uploadCmd.Flags().StringVar(&uploadFolderID, "folder-id", "", "Upload directly into this folder, skipping resolution")
	uploadCmd.Flags().StringVar(&uploadName, "name", "", "Destination file name (defaults to the local name)")
	uploadCmd.Flags().StringVar(&uploadMimeType, "mime-type", "", "MIME type (inferred from the extension when empty)")
	uploadCmd.MarkFlagsRequiredTogether("category", "subject")
	uploadCmd.MarkFlagsOneRequired("category", "folder-id")
	uploadCmd.MarkFlagsMutuallyExclusive("category", "folder-id")
	rootCmd.AddCommand(uploadCmd)
}
