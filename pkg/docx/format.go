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

package docx

import "github.com/walteh/docxsr/pkg/document"

// 🎨 runFormat carries the raw WordprocessingML formatting of a run, so
// replacement runs reproduce the original markup verbatim. The raw field is
// populated only on zero-width runs that preserve non-text content.
type runFormat struct {
	runAttrs string // raw attribute text of the owning <w:r> start tag
	props    string // raw <w:rPr>…</w:rPr> block, empty when absent
	raw      string // opaque preserved markup, zero-width runs only
	block    bool   // raw sits at paragraph level, outside any <w:r>
}

func (f *runFormat) Clone() document.Formatting {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}
