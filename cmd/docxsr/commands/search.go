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
	"regexp"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/docxsr/pkg/docx"
	"github.com/walteh/docxsr/pkg/log"
	"github.com/walteh/docxsr/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewSearchCmd creates a new search command
func NewSearchCmd() *cobra.Command {
	var (
		regex      bool
		ignoreCase bool
		jsonPath   string
	)

	cmd := &cobra.Command{
		Use:   "search PATTERN GLOB...",
		Short: "List pattern matches in documents",
		Long: `Search lists every match of the pattern across the given documents,
with surrounding context and associated hyperlink URLs. Documents are
never modified.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "search").Logger().WithContext(cmd.Context())

			pattern := args[0]
			paths, err := expandGlobs(args[1:])
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return errors.Errorf("no documents match %v", args[1:])
			}

			logger := log.New(cmd.OutOrStdout(), zerolog.GlobalLevel())
			logger.Header("searching " + pattern)

			var reports []log.Report
			for _, path := range paths {
				f, err := docx.Open(path)
				if err != nil {
					return errors.Errorf("opening %s: %w", path, err)
				}

				op, err := operation.New(operation.Options{Document: f.Document()})
				if err != nil {
					return err
				}
				re, err := compilePattern(op, pattern, regex, ignoreCase)
				if err != nil {
					return err
				}
				matches, err := op.SearchParagraphs(ctx, re)
				if err != nil {
					return errors.Errorf("searching %s: %w", path, err)
				}

				entries := make([]log.MatchEntry, len(matches))
				for i, m := range matches {
					entries[i] = log.EntryFor(m, pattern)
				}

				logger.Infof("%s", path)
				logger.ListMatches(ctx, entries)
				reports = append(reports, log.NewReport(path, entries))
			}

			if jsonPath != "" {
				if err := log.SaveReports(jsonPath, reports); err != nil {
					return err
				}
				logger.Successf("wrote match report to %s", jsonPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&regex, "regex", "e", false, "treat the pattern as a regular expression")
	cmd.Flags().BoolVarP(&ignoreCase, "ignore-case", "i", false, "case-insensitive matching")
	cmd.Flags().StringVar(&jsonPath, "json", "", "write a JSON match report to this path")

	return cmd
}

func compilePattern(op *operation.Operator, pattern string, regex, ignoreCase bool) (*regexp.Regexp, error) {
	if regex {
		return op.Compile(pattern, ignoreCase)
	}
	return op.CompileLiteral(pattern, ignoreCase)
}
