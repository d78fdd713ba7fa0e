package main

import (
	"context"
	"errors"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/hokensys/shinsa/pkg/cmd"
	"github.com/hokensys/shinsa/pkg/log"
)

// ValidateCommand checks a configuration tree without starting the server:
// every document must pass schema validation, question flows must be
// structurally sound, and every reason template referenced by a judgment
// rule must exist.
func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a configuration document tree",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config-path",
				Usage:    "Configuration document source: a directory tree or a postgres:// URL",
				Required: true,
				Sources:  cli.EnvVars("CONFIG_PATH"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("validate")

			store, err := cmd.NewConfigStore(ctx, logger, command.String("config-path"), 0)
			if err != nil {
				return err
			}

			defer func() {
				_ = store.Close(ctx)
			}()

			var problems []error

			flows, err := store.QuestionFlows(ctx)
			if err != nil {
				problems = append(problems, fmt.Errorf("question flows: %w", err))
			}

			for _, flowConfig := range flows {
				if err := flowConfig.Validate(); err != nil {
					problems = append(problems, fmt.Errorf("question flow %q: %w", flowConfig.ID, err))
				}
			}

			templates, err := store.ReasonTemplates(ctx)
			if err != nil {
				problems = append(problems, fmt.Errorf("reason templates: %w", err))
			}

			templateIDs := make(map[string]bool, len(templates))
			for _, template := range templates {
				templateIDs[template.ID] = true
			}

			configs, err := store.JudgmentConfigs(ctx)
			if err != nil {
				problems = append(problems, fmt.Errorf("judgment rules: %w", err))
			}

			for _, config := range configs {
				for _, insuranceType := range config.Rules {
					for _, condition := range insuranceType.Conditions {
						templateID := condition.Result.ReasonTemplateID
						if templateID != "" && !templateIDs[templateID] {
							problems = append(problems, fmt.Errorf(
								"judgment rules %q: unknown reason template %q", config.ID, templateID))
						}
					}
				}
			}

			if _, err := store.ValidationRules(ctx); err != nil {
				problems = append(problems, fmt.Errorf("validation rules: %w", err))
			}

			if _, err := store.CalculationRules(ctx); err != nil {
				problems = append(problems, fmt.Errorf("calculation rules: %w", err))
			}

			if _, err := store.MasterData(ctx); err != nil {
				problems = append(problems, fmt.Errorf("master data: %w", err))
			}

			if len(problems) > 0 {
				for _, problem := range problems {
					logger.ErrorContext(ctx, "Configuration problem", "error", problem)
				}

				return errors.Join(problems...)
			}

			logger.InfoContext(ctx, "Configuration is valid",
				"question_flows", len(flows),
				"judgment_configs", len(configs),
				"reason_templates", len(templates),
			)

			return nil
		},
	}
}
