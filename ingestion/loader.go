// Copyright 2025 Poiesic Systems
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


package ingestion

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/datamill/core"
)

// loader is an internal interface for decoding one raw file format.
// Implementations receive the whole file and must preserve file order.
type loader interface {
	// load decodes data into samples whose IDs are "<source>_<index>".
	load(data []byte, source string) ([]core.Sample, error)
}

// loaders maps lower-cased file extensions to their decoder.
var loaders = map[string]loader{
	".json": jsonLoader{},
	".csv":  csvLoader{},
	".txt":  textLoader{},
	".text": textLoader{},
	"":      textLoader{},
}

// Load reads a raw dataset file and returns its samples in file order.
//
// The format is chosen by extension, case-insensitively: .json, .csv, and
// .txt, .text, or no extension for line-delimited text. Any other extension
// yields core.ErrUnsupportedFormat. A missing file yields core.ErrNotFound and
// content that is not valid UTF-8 or does not parse yields core.ErrFormat.
func Load(path, source string) ([]core.Sample, error) {
	ext := strings.ToLower(filepath.Ext(path))
	l, ok := loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q (use .json, .csv, or .txt)", core.ErrUnsupportedFormat, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: input file %s", core.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read input file %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", core.ErrFormat, path)
	}

	samples, err := l.load(data, source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}

func newSample(source string, index int, input, output string) core.Sample {
	return core.Sample{
		ID:     core.SampleID(source, index),
		Input:  input,
		Output: output,
		Source: source,
	}
}
