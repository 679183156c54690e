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

package status

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 DocumentStatus represents the outcome of processing one document
type DocumentStatus int

const (
	StatusUnknown   DocumentStatus = iota
	StatusUnchanged                // Searched, nothing matched or nothing applied
	StatusModified                 // Every targeted match applied
	StatusPartial                  // Some matches applied, some failed
	StatusFailed                   // Document could not be processed
)

// String returns a string representation of DocumentStatus
func (s DocumentStatus) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusModified:
		return "modified"
	case StatusPartial:
		return "partial"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 DocumentInfo contains the processing record of one document
type DocumentInfo struct {
	Path    string         // Input path of the document
	Output  string         // Path the result was written to, if any
	Status  DocumentStatus // Processing outcome
	Matches int            // Matches found
	Applied int            // Replacements applied
	Failed  int            // Replacements that failed
	Error   error          // Any error associated with this document
}

// 📈 Reporter tracks document outcomes and reports batch progress
type Reporter interface {
	TrackDocument(ctx context.Context, path string, info DocumentInfo)
	GetDocumentInfo(ctx context.Context, path string) (DocumentInfo, error)
	ListDocuments(ctx context.Context) ([]DocumentInfo, error)

	StartOperation(ctx context.Context, total int)
	UpdateProgress(ctx context.Context, processed int)
	FinishOperation(ctx context.Context)
}

// 🔧 Manager implements Reporter for a batch of documents
type Manager struct {
	logger    *zerolog.Logger
	formatter Formatter

	mu        sync.RWMutex
	documents map[string]DocumentInfo

	total     int
	processed int
}

// 🏭 New creates a new status manager
func New(logger *zerolog.Logger) *Manager {
	return &Manager{
		logger:    logger,
		formatter: NewDefaultFormatter(),
		documents: make(map[string]DocumentInfo),
	}
}

func (m *Manager) TrackDocument(ctx context.Context, path string, info DocumentInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.documents[path] = info
	msg := m.formatter.FormatDocument(info)
	if info.Error != nil {
		msg = m.formatter.FormatError(info.Error)
	}
	m.logger.Info().
		Str("path", path).
		Stringer("status", info.Status).
		Int("matches", info.Matches).
		Int("applied", info.Applied).
		Int("failed", info.Failed).
		Msg(msg)
}

func (m *Manager) GetDocumentInfo(ctx context.Context, path string) (DocumentInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.documents[path]
	if !ok {
		return DocumentInfo{}, errors.Errorf("document not tracked: %s", path)
	}
	return info, nil
}

func (m *Manager) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]DocumentInfo, 0, len(m.documents))
	for _, info := range m.documents {
		docs = append(docs, info)
	}
	sort.Slice(docs, func(a, b int) bool { return docs[a].Path < docs[b].Path })
	return docs, nil
}

func (m *Manager) StartOperation(ctx context.Context, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = total
	m.processed = 0
	msg := m.formatter.FormatProgress(0, total)
	m.logger.Info().Int("total", total).Msg(msg)
}

func (m *Manager) UpdateProgress(ctx context.Context, processed int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processed = processed
	msg := m.formatter.FormatProgress(processed, m.total)
	m.logger.Info().
		Int("processed", processed).
		Int("total", m.total).
		Msg(msg)
}

func (m *Manager) FinishOperation(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg := m.formatter.FormatProgress(m.total, m.total)
	m.logger.Info().
		Int("processed", m.total).
		Int("total", m.total).
		Msg(msg)
}

// 📋 Summary aggregates the batch outcome.
type Summary struct {
	Documents int
	Modified  int
	Partial   int
	Unchanged int
	Failed    int
	Matches   int
	Applied   int
}

// Summarize folds every tracked document into totals for the CLI footer.
func (m *Manager) Summarize() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var s Summary
	for _, info := range m.documents {
		s.Documents++
		s.Matches += info.Matches
		s.Applied += info.Applied
		switch info.Status {
		case StatusModified:
			s.Modified++
		case StatusPartial:
			s.Partial++
		case StatusFailed:
			s.Failed++
		default:
			s.Unchanged++
		}
	}
	return s
}
