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

package config

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/docxsr/pkg/match"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 Rule represents one search/replace rule applied to every document
type Rule struct {
	Find       string `json:"find" yaml:"find"`                                 // Literal string or regex to search for
	Replace    string `json:"replace" yaml:"replace"`                           // Replacement text (a template when Regex is set)
	Regex      bool   `json:"regex,omitempty" yaml:"regex,omitempty"`           // Treat Find as a regex, Replace as a template
	IgnoreCase bool   `json:"ignore_case,omitempty" yaml:"ignore_case,omitempty"` // Case-insensitive matching
	Max        int    `json:"max,omitempty" yaml:"max,omitempty"`               // Maximum replacements, 0 means unlimited
}

// Pattern compiles the rule's search expression.
func (r Rule) Pattern() (*regexp.Regexp, error) {
	if r.Regex {
		return match.Compile(r.Find, r.IgnoreCase)
	}
	return match.CompileLiteral(r.Find, r.IgnoreCase)
}

// 📚 Config represents the complete configuration
type Config struct {
	Rules     []Rule `json:"rules" yaml:"rules"`
	Output    string `json:"output,omitempty" yaml:"output,omitempty"`       // Output path, empty derives <base>-new.docx
	Overwrite bool   `json:"overwrite,omitempty" yaml:"overwrite,omitempty"` // Allow clobbering existing files
	Async     bool   `json:"async,omitempty" yaml:"async,omitempty"`         // Process documents concurrently
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks if the configuration is valid. Regex rules are compiled
// eagerly so a bad pattern fails at load time, not mid-batch.
func (cfg *Config) Validate() error {
	if len(cfg.Rules) == 0 {
		return errors.Errorf("at least one rule is required")
	}
	for i, r := range cfg.Rules {
		if r.Find == "" {
			return errors.Errorf("rule %d: find is required", i)
		}
		if r.Max < 0 {
			return errors.Errorf("rule %d: max must be >= 0", i)
		}
		if _, err := r.Pattern(); err != nil {
			return errors.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	out := cfg.Output
	if out == "" {
		out = "<derived>"
	}
	return fmt.Sprintf("%d rules -> %s", len(cfg.Rules), out)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}
