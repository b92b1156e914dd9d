package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hopeoverture/skillpack/pkg/discovery"
	"github.com/hopeoverture/skillpack/pkg/logger"
	"github.com/hopeoverture/skillpack/pkg/packaging"
	"github.com/hopeoverture/skillpack/pkg/presenter"
)

var packageAllCmd = &cobra.Command{
	Use:   "package-all [root]",
	Short: "Package every skill found under a directory tree",
	Long: `Discover every skill package under the given root (any directory
containing a SKILL.md) and package each one. Failures do not stop the
batch: every skill is attempted, failures are reported together, and
the command exits non-zero if any skill could not be packaged.

Examples:
  skillpack package-all
  skillpack package-all skills -o ./dist`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root := viper.GetString("skills_dir")
		if len(args) > 0 {
			root = args[0]
		}
		config := getPackageConfigFromFlags(cmd)
		packageAllSkillsCmd(cmd, root, config)
	},
}

func init() {
	defaults := NewPackageConfig()
	packageAllCmd.Flags().StringP("output", "o", defaults.OutputDir, "Directory the archives are written to")
	rootCmd.AddCommand(packageAllCmd)
}

func packageAllSkillsCmd(cmd *cobra.Command, root string, config *PackageConfig) {
	log := logger.G(cmd.Context()).WithField("root", root)

	skillDirs, err := discovery.FindSkillDirs(root)
	if err != nil {
		presenter.Error(err, "Failed to discover skills")
		os.Exit(1)
	}
	if len(skillDirs) == 0 {
		presenter.Error(errors.Errorf("no skills found under %s", root), "Nothing to package")
		os.Exit(1)
	}

	log.WithField("count", len(skillDirs)).Debug("discovered skill packages")
	presenter.Info(fmt.Sprintf("Found %d skill(s) to package", len(skillDirs)))

	packager := packaging.New(packaging.WithExcludePatterns(config.Exclude...))

	var failures *multierror.Error
	packaged := 0

	for i, dir := range skillDirs {
		presenter.Section(fmt.Sprintf("[%d/%d] %s", i+1, len(skillDirs), dir))

		manifest, archivePath, err := packager.Package(dir, config.OutputDir)
		if err != nil {
			var validationErr *packaging.ValidationError
			if errors.As(err, &validationErr) {
				presenter.Issues(validationErr.Result)
			}
			presenter.Error(err, fmt.Sprintf("Failed to package %s", dir))
			failures = multierror.Append(failures, errors.Wrapf(err, "failed to package %s", dir))
			continue
		}

		packaged++
		presenter.Success(fmt.Sprintf("Packaged %s (%d files) -> %s", manifest.SkillName, len(manifest.Files), archivePath))
	}

	presenter.Info(fmt.Sprintf("Packaged %d/%d skill(s)", packaged, len(skillDirs)))

	if failures.ErrorOrNil() != nil {
		presenter.Error(failures, "Some skills failed to package")
		os.Exit(1)
	}
}
