package cli

import (
	"github.com/spf13/cobra"
)

var loginSilent bool

type loginResult struct {
	SignedIn bool   `json:"signedIn"`
	Account  string `json:"account,omitempty"`
	Expiry   string `json:"expiry,omitempty"`
}

func (r *loginResult) Headers() []string { return []string{"Signed In", "Account", "Expires"} }

func (r *loginResult) Rows() [][]string {
	return [][]string{{boolWord(r.SignedIn), orDash(r.Account), orDash(r.Expiry)}}
}

func (r *loginResult) EmptyMessage() string { return "not signed in" }

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the storage provider",
	Long: `Sign in to the storage provider. By default a browser consent flow
is opened; with --silent only an existing session is reused and no
interaction happens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		writer := NewOutputWriter(globalFlags.OutputFormat, globalFlags.Quiet)

		c, err := newClient()
		if err != nil {
			writer.WriteError("login", err)
			return err
		}

		signedIn, err := c.Authenticate(cmd.Context(), loginSilent)
		if err != nil {
			writer.WriteError("login", err)
			return err
		}

		result := &loginResult{SignedIn: signedIn}
		if session := c.Session(); session != nil {
			result.Account = session.Account
			if !session.Expiry.IsZero() {
				result.Expiry = session.Expiry.Format("2006-01-02 15:04:05")
			}
		}
		return writer.WriteSuccess("login", result)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and revoke the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		writer := NewOutputWriter(globalFlags.OutputFormat, globalFlags.Quiet)

		c, err := newClient()
		if err != nil {
			writer.WriteError("logout", err)
			return err
		}

		if err := c.SignOut(cmd.Context()); err != nil {
			writer.WriteError("logout", err)
			return err
		}
		return writer.WriteSuccess("logout", &loginResult{SignedIn: false})
	},
}

func init() {
	loginCmd.Flags().BoolVar(&loginSilent, "silent", false, "Only reuse an existing session; never prompt")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
