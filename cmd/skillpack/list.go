package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hopeoverture/skillpack/pkg/discovery"
	"github.com/hopeoverture/skillpack/pkg/presenter"
	"github.com/hopeoverture/skillpack/pkg/skill"
)

var listCmd = &cobra.Command{
	Use:   "list [root]",
	Short: "List skill packages found under a directory tree",
	Long: `Discover every skill package under the given root and print its
name, directory, and description. Skills whose SKILL.md cannot be loaded
are reported as warnings and skipped.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		root := viper.GetString("skills_dir")
		if len(args) > 0 {
			root = args[0]
		}
		listSkillsCmd(root)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func listSkillsCmd(root string) {
	skillDirs, err := discovery.FindSkillDirs(root)
	if err != nil {
		presenter.Error(err, "Failed to discover skills")
		os.Exit(1)
	}

	if len(skillDirs) == 0 {
		presenter.Info(fmt.Sprintf("No skills found under %s", root))
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDIRECTORY\tDESCRIPTION")
	fmt.Fprintln(tw, "----\t---------\t-----------")

	for _, dir := range skillDirs {
		desc, err := skill.Load(dir)
		if err != nil {
			presenter.Warning(fmt.Sprintf("Skipping %s: %v", dir, err))
			continue
		}

		description := desc.Description
		if len(description) > 60 {
			description = description[:57] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", desc.Name, dir, description)
	}
	tw.Flush()
}
