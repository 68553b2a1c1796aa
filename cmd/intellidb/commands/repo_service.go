package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bartekus/intellidb/internal/artifact"
	"github.com/bartekus/intellidb/internal/prompt"
	"github.com/bartekus/intellidb/internal/runner"
)

// bundleKinds are generated in this order by repo-service.
var bundleKinds = []artifact.Kind{
	artifact.KindRepositoryInterface,
	artifact.KindEloquentRepository,
	artifact.KindService,
}

// newRepoServiceCommand returns the `intellidb repo-service` command, which
// generates a repository contract, its Eloquent implementation and a
// service, plus the model with --create-model.
func (a *app) newRepoServiceCommand() *cobra.Command {
	var (
		description string
		path        string
		model       string
		createModel bool
	)

	cmd := &cobra.Command{
		Use:     "repo-service <name>",
		Aliases: []string{"ai:repo-service"},
		Short:   "Generate a repository interface, Eloquent repository and service",
		Long: `Generates, in order:
  <base>/Repositories/Contracts/<Name>RepositoryInterface.php
  <base>/Repositories/Eloquent<Name>Repository.php
  <base>/Services/<Name>Service.php
  <base>/Models/<Model>.php (with --create-model)
where <base> is --path or the app directory. Generation stops at the first
failure; files already written are kept and the rest are recorded as skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := artifact.NewRequest(artifact.KindService, args[0], model, description, path)
			req.MaxTokens = a.maxTokens
			req.CreateModel = createModel
			return report(a.generateBundle(cmd, req))
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "what the repository and service should do")
	cmd.Flags().StringVarP(&path, "path", "p", "", "base directory replacing app/")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Eloquent model (default: the name)")
	cmd.Flags().BoolVar(&createModel, "create-model", false, "also generate the Eloquent model")
	return cmd
}

func (a *app) generateBundle(cmd *cobra.Command, req artifact.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	s, err := a.newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	steps := bundleSteps(req, s.dir(req.Path, "app"), s.tokens(req.MaxTokens, tokensLarge))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generating Repository + Service for [%s] ...\n", req.Name)

	if _, err := s.runner.Run(cmd.Context(), cmd.Name(), req.Name, steps); err != nil {
		return err
	}

	fmt.Fprintln(out, "All files were generated successfully!")
	return nil
}

// bundleSteps builds the repo-service steps. Every step shares the bundle
// description so the generated classes agree with each other.
func bundleSteps(req artifact.Request, base string, maxTokens int) []runner.Step {
	desc := req.DescriptionOrDefault()

	kinds := bundleKinds
	if req.CreateModel {
		kinds = append(append([]artifact.Kind{}, bundleKinds...), artifact.KindModel)
	}

	steps := make([]runner.Step, 0, len(kinds))
	for _, k := range kinds {
		stepReq := req
		stepReq.Kind = k
		stepReq.Description = desc
		name := req.Name
		if k == artifact.KindModel {
			stepReq.Name = req.Model()
			stepReq.ModelName = ""
			name = stepReq.Name
		}

		steps = append(steps, runner.Step{
			Kind:      string(k),
			Label:     k.Label(),
			Prompt:    prompt.Build(stepReq),
			MaxTokens: maxTokens,
			Dir:       filepath.Join(base, k.AppSubDir()),
			FileName:  artifact.FileName(k, name, time.Time{}),
		})
	}
	return steps
}
