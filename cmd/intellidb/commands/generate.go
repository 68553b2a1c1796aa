// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bartekus/intellidb/internal/artifact"
	"github.com/bartekus/intellidb/internal/prompt"
	"github.com/bartekus/intellidb/internal/runner"
)

// Default token budgets per command.
const (
	tokensLarge = 3000
	tokensSmall = 2000
)

// generator describes a command that produces exactly one file.
type generator struct {
	kind  artifact.Kind
	short string
	long  string
	// modelHelp enables --model/-m when non-empty.
	modelHelp string
	tokens    int
}

// newMiddlewareCommand returns the `intellidb middleware` command.
func (a *app) newMiddlewareCommand() *cobra.Command {
	return a.newGenerateCommand(generator{
		kind:   artifact.KindMiddleware,
		short:  "Generate an HTTP middleware class",
		long:   `Generates a middleware class in app/Http/Middleware implementing handle($request, $next).`,
		tokens: tokensLarge,
	})
}

// newRepositoryCommand returns the `intellidb repository` command.
func (a *app) newRepositoryCommand() *cobra.Command {
	return a.newGenerateCommand(generator{
		kind:      artifact.KindRepository,
		short:     "Generate a standalone repository class",
		long:      `Generates a repository class in app/Repositories, optionally tailored to an Eloquent model.`,
		modelHelp: "Eloquent model the repository works with",
		tokens:    tokensSmall,
	})
}

func (a *app) newModelCommand() *cobra.Command {
	return a.newGenerateCommand(generator{
		kind:   artifact.KindModel,
		short:  "Generate an Eloquent model",
		tokens: tokensSmall,
	})
}

func (a *app) newMigrationCommand() *cobra.Command {
	return a.newGenerateCommand(generator{
		kind:  artifact.KindMigration,
		short: "Generate a database migration",
		long: `Generates a timestamped migration in database/migrations. The table is derived
from the migration name (CreateUsersTable -> users) unless --model is given.`,
		modelHelp: "model whose table the migration targets",
		tokens:    tokensSmall,
	})
}

func (a *app) newFactoryCommand() *cobra.Command {
	return a.newGenerateCommand(generator{
		kind:      artifact.KindFactory,
		short:     "Generate a model factory",
		long:      `Generates <Model>Factory in database/factories. The model defaults to the name without a Factory suffix.`,
		modelHelp: "model the factory builds",
		tokens:    tokensSmall,
	})
}

func (a *app) newRuleCommand() *cobra.Command {
	return a.newGenerateCommand(generator{
		kind:   artifact.KindRule,
		short:  "Generate a custom validation rule",
		tokens: tokensSmall,
	})
}

func (a *app) newGenerateCommand(g generator) *cobra.Command {
	var description, path, model string

	cmd := &cobra.Command{
		Use:     string(g.kind) + " <name>",
		Aliases: []string{"ai:" + string(g.kind)},
		Short:   g.short,
		Long:    g.long,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := artifact.NewRequest(g.kind, args[0], model, description, path)
			req.MaxTokens = a.maxTokens
			if g.kind == artifact.KindFactory && req.ModelName == "" {
				req.ModelName = strings.TrimSuffix(req.Name, "Factory")
			}
			return report(a.generate(cmd, req, g.tokens))
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "what the generated class should do")
	cmd.Flags().StringVarP(&path, "path", "p", "", fmt.Sprintf("output directory (default %s)", g.kind.DefaultDir()))
	if g.modelHelp != "" {
		cmd.Flags().StringVarP(&model, "model", "m", "", g.modelHelp)
	}
	return cmd
}

func (a *app) generate(cmd *cobra.Command, req artifact.Request, defaultTokens int) error {
	if err := req.Validate(); err != nil {
		return err
	}

	s, err := a.newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	subject := req.Name
	if req.Kind == artifact.KindFactory {
		subject = req.Model()
	}

	label := req.Kind.Label()
	step := runner.Step{
		Kind:      string(req.Kind),
		Label:     label,
		Prompt:    prompt.Build(req),
		MaxTokens: s.tokens(req.MaxTokens, defaultTokens),
		Dir:       s.dir(req.Path, req.Kind.DefaultDir()),
		FileName:  artifact.FileName(req.Kind, subject, a.now()),
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generating %s for [%s] ...\n", label, req.Name)

	if _, err := s.runner.Run(cmd.Context(), cmd.Name(), req.Name, []runner.Step{step}); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s created successfully!\n", label)
	return nil
}
