package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/droidctl/internal/droid"
)

var createProject bool

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a droid from the starter template",
	Long: `Create a new droid file seeded with the starter template.

The droid is created in the user-scope directory unless --project is
given. Names use lowercase letters, digits, hyphens and underscores.

Examples:
  droidctl create code-reviewer
  droidctl create deploy-helper --project`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}

		scope := droid.ScopeUser
		if createProject {
			scope = droid.ScopeProject
		}

		path, err := reg.CreateTemplate(args[0], scope)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created droid %q at %s\n", args[0], path)
		fmt.Fprintf(out, "Edit it with 'droidctl edit %s'.\n", args[0])
		return nil
	},
}

func init() {
	createCmd.Flags().BoolVarP(&createProject, "project", "p", false, "create in the project-scope directory")
	rootCmd.AddCommand(createCmd)
}
