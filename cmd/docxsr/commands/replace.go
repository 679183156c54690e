// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"context"
	"sync/atomic"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/docxsr/pkg/config"
	"github.com/walteh/docxsr/pkg/docx"
	"github.com/walteh/docxsr/pkg/engine"
	"github.com/walteh/docxsr/pkg/operation"
	"github.com/walteh/docxsr/pkg/status"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// NewReplaceCmd creates a new replace command
func NewReplaceCmd() *cobra.Command {
	var (
		configPath  string
		find        string
		replacement string
		regex       bool
		ignoreCase  bool
		max         int
		output      string
		overwrite   bool
		async       bool
	)

	cmd := &cobra.Command{
		Use:   "replace GLOB...",
		Short: "Apply replacement rules to documents",
		Long: `Replace applies search/replace rules to every matching document and
writes the results to new files (or over the originals with --overwrite).
Rules come from a config file, or from --find/--replace for a single rule.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "replace").Logger().WithContext(cmd.Context())
			logger := zerolog.Ctx(ctx)

			cfg, err := buildConfig(ctx, configPath, config.Rule{
				Find:       find,
				Replace:    replacement,
				Regex:      regex,
				IgnoreCase: ignoreCase,
				Max:        max,
			}, output, overwrite, async)
			if err != nil {
				return err
			}

			paths, err := expandGlobs(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return errors.Errorf("no documents match %v", args)
			}
			if cfg.Output != "" && len(paths) > 1 {
				pterm.Warning.Println("--output ignored for multiple documents, derived names used instead")
				cfg.Output = ""
			}

			mgr := status.New(logger)
			mgr.StartOperation(ctx, len(paths))

			if cfg.Async {
				eg, egCtx := errgroup.WithContext(ctx)
				var done atomic.Int64
				for _, path := range paths {
					path := path
					eg.Go(func() error {
						mgr.TrackDocument(egCtx, path, processDocument(egCtx, path, cfg))
						mgr.UpdateProgress(egCtx, int(done.Add(1)))
						return nil
					})
				}
				if err := eg.Wait(); err != nil {
					return err
				}
			} else {
				for i, path := range paths {
					mgr.TrackDocument(ctx, path, processDocument(ctx, path, cfg))
					mgr.UpdateProgress(ctx, i+1)
				}
			}
			mgr.FinishOperation(ctx)

			docs, err := mgr.ListDocuments(ctx)
			if err != nil {
				return err
			}
			for _, info := range docs {
				switch info.Status {
				case status.StatusModified:
					pterm.Success.Printf("%s → %s (%d replacements)\n", info.Path, info.Output, info.Applied)
				case status.StatusPartial:
					pterm.Warning.Printf("%s → %s (%d applied, %d failed)\n", info.Path, info.Output, info.Applied, info.Failed)
				case status.StatusFailed:
					pterm.Error.Printf("%s: %v\n", info.Path, info.Error)
				default:
					pterm.Info.Printf("%s unchanged\n", info.Path)
				}
			}

			s := mgr.Summarize()
			pterm.Info.Printf("%d documents: %d modified, %d partial, %d unchanged, %d failed (%d replacements)\n",
				s.Documents, s.Modified, s.Partial, s.Unchanged, s.Failed, s.Applied)

			if s.Failed > 0 || s.Partial > 0 {
				return errors.Errorf("%d documents had failures", s.Failed+s.Partial)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "rule config file (.yaml or .hcl)")
	cmd.Flags().StringVarP(&find, "find", "p", "", "text or pattern to search for")
	cmd.Flags().StringVarP(&replacement, "replace", "r", "", "replacement text (a template with --regex)")
	cmd.Flags().BoolVarP(&regex, "regex", "e", false, "treat --find as a regular expression")
	cmd.Flags().BoolVarP(&ignoreCase, "ignore-case", "i", false, "case-insensitive matching")
	cmd.Flags().IntVar(&max, "max", 0, "maximum replacements per rule per document, 0 is unlimited")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (single document only)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "allow clobbering existing files")
	cmd.Flags().BoolVar(&async, "async", false, "process documents concurrently")

	return cmd
}

// buildConfig resolves the effective config: a rule file when given, else a
// single rule assembled from flags. Flags override the file's output options.
func buildConfig(ctx context.Context, path string, flagRule config.Rule, output string, overwrite, async bool) (*config.Config, error) {
	if path != "" {
		cfg, err := config.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		if output != "" {
			cfg.Output = output
		}
		if overwrite {
			cfg.Overwrite = true
		}
		if async {
			cfg.Async = true
		}
		return cfg, nil
	}

	if flagRule.Find == "" {
		return nil, errors.Errorf("either --config or --find is required")
	}
	cfg := &config.Config{
		Rules:     []config.Rule{flagRule},
		Output:    output,
		Overwrite: overwrite,
		Async:     async,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// processDocument applies every rule to one document and saves it when
// anything changed. Failures are recorded, never thrown past the document.
func processDocument(ctx context.Context, path string, cfg *config.Config) status.DocumentInfo {
	info := status.DocumentInfo{Path: path}

	fail := func(err error) status.DocumentInfo {
		info.Status = status.StatusFailed
		info.Error = err
		return info
	}

	f, err := docx.Open(path)
	if err != nil {
		return fail(err)
	}
	op, err := operation.New(operation.Options{Document: f.Document()})
	if err != nil {
		return fail(err)
	}

	for _, rule := range cfg.Rules {
		re, err := rule.Pattern()
		if err != nil {
			return fail(err)
		}
		matches, err := op.SearchParagraphs(ctx, re)
		if err != nil {
			return fail(err)
		}
		if rule.Max > 0 && len(matches) > rule.Max {
			matches = matches[:rule.Max]
		}
		info.Matches += len(matches)
		if len(matches) == 0 {
			continue
		}

		var strategy engine.Strategy
		if rule.Regex {
			strategy = engine.Substitution{Pattern: re, Template: rule.Replace}
		} else {
			strategy = engine.Literal{Text: rule.Replace}
		}

		outcomes, err := op.ReplaceAll(ctx, matches, strategy)
		if err != nil {
			return fail(err)
		}
		for _, out := range outcomes {
			if out.Status == engine.OutcomeApplied {
				info.Applied++
			} else {
				info.Failed++
			}
		}
	}

	if info.Applied > 0 {
		written, err := f.Save(ctx, cfg.Output, cfg.Overwrite)
		if err != nil {
			return fail(err)
		}
		info.Output = written
	}

	switch {
	case info.Failed > 0:
		info.Status = status.StatusPartial
	case info.Applied > 0:
		info.Status = status.StatusModified
	default:
		info.Status = status.StatusUnchanged
	}
	return info
}
