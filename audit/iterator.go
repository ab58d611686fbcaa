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


package audit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/poiesic/datamill/core"
)

const (
	// DefaultBatchSize is the default number of versions handed to each callback
	DefaultBatchSize = 50
)

// VersionIterator walks the version directories under a datasets directory.
// Hidden entries are skipped, which covers in-flight staging directories
// and replaced versions awaiting removal.
type VersionIterator struct {
	root      string
	batchSize int
}

// NewVersionIterator creates a new version iterator.
// batchSize: number of versions per callback (must be > 0)
func NewVersionIterator(root string, batchSize int) *VersionIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &VersionIterator{
		root:      root,
		batchSize: batchSize,
	}
}

// Versions returns the version names under the root in sorted order.
// A missing root yields core.ErrNotFound.
func (it *VersionIterator) Versions() ([]string, error) {
	entries, err := os.ReadDir(it.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: datasets directory %s", core.ErrNotFound, it.root)
		}
		return nil, fmt.Errorf("failed to list %s: %w", it.root, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

// ForEach calls fn with successive batches of version names.
// Iteration stops on first error from fn or when all versions are visited.
// Context cancellation is checked between batches.
func (it *VersionIterator) ForEach(ctx context.Context, fn func([]string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	names, err := it.Versions()
	if err != nil {
		return err
	}

	for batch := range slices.Chunk(names, it.batchSize) {
		if err := fn(batch); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
