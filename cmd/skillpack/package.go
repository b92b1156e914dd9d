package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hopeoverture/skillpack/pkg/logger"
	"github.com/hopeoverture/skillpack/pkg/packaging"
	"github.com/hopeoverture/skillpack/pkg/presenter"
)

type PackageConfig struct {
	OutputDir string
	Exclude   []string
}

func NewPackageConfig() *PackageConfig {
	return &PackageConfig{
		OutputDir: viper.GetString("output_dir"),
		Exclude:   viper.GetStringSlice("package.exclude"),
	}
}

var packageCmd = &cobra.Command{
	Use:   "package <path> [output-dir]",
	Short: "Package a skill directory into a distributable archive",
	Long: `Validate a skill package and, when valid, serialize it into a
deterministic zip archive with an embedded manifest of path/size/hash
triples. An invalid skill aborts before anything is written.

Examples:
  skillpack package skills/development/env-config-validator
  skillpack package skills/testing/a11y-checker-ci ./dist
  skillpack package . -o ./out`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		config := getPackageConfigFromFlags(cmd)
		if len(args) > 1 {
			config.OutputDir = args[1]
		}
		packageSkillCmd(cmd, args[0], config)
	},
}

func init() {
	defaults := NewPackageConfig()
	packageCmd.Flags().StringP("output", "o", defaults.OutputDir, "Directory the archive is written to")
	rootCmd.AddCommand(packageCmd)
}

func getPackageConfigFromFlags(cmd *cobra.Command) *PackageConfig {
	config := NewPackageConfig()
	if output, err := cmd.Flags().GetString("output"); err == nil && cmd.Flags().Changed("output") {
		config.OutputDir = output
	}
	return config
}

func packageSkillCmd(cmd *cobra.Command, path string, config *PackageConfig) {
	log := logger.G(cmd.Context()).WithField("path", path)
	log.Debug("packaging skill package")

	packager := packaging.New(packaging.WithExcludePatterns(config.Exclude...))

	manifest, archivePath, err := packager.Package(path, config.OutputDir)
	if err != nil {
		var validationErr *packaging.ValidationError
		if errors.As(err, &validationErr) {
			presenter.Issues(validationErr.Result)
		}
		presenter.Error(err, fmt.Sprintf("Failed to package %s", path))
		os.Exit(1)
	}

	log.WithField("files", len(manifest.Files)).Debug("archive written")
	presenter.Success(fmt.Sprintf("Packaged %s (%d files)", manifest.SkillName, len(manifest.Files)))
	presenter.Info(archivePath)
}
