package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hopeoverture/skillpack/pkg/logger"
	"github.com/hopeoverture/skillpack/pkg/presenter"
	"github.com/hopeoverture/skillpack/pkg/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a skill package directory",
	Long: `Validate a skill package against the structural contract: SKILL.md
frontmatter fields, naming rules, and directory layout. Every issue is
reported in a single pass; warnings alone do not fail validation.

Examples:
  skillpack validate skills/development/env-config-validator
  skillpack validate . --quiet`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		validateSkillCmd(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateSkillCmd(cmd *cobra.Command, path string) {
	log := logger.G(cmd.Context()).WithField("path", path)
	log.Debug("validating skill package")

	result := validation.New().Validate(path)
	presenter.Issues(result)

	if !result.Valid {
		os.Exit(1)
	}

	presenter.Success(fmt.Sprintf("Skill package %s is valid", path))
}
