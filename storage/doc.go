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


// Package storage provides the catalog abstraction for datamill.
//
// The dataset catalog is an index over the version directories that the
// ingestion pipeline writes. The directories stay the source of truth: the
// catalog records where each version lives, its hash and sample count, and
// when it was built, so versions can be listed and looked up by content
// without walking the artifact tree.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces:
//
//	catalog, err := badger.OpenCatalog(path)  // returns storage.DatasetCatalog
//
// Internal package constructors may return concrete types since they're only
// used within the implementation package.
//
// # Usage
//
//	catalog, err := badger.OpenCatalog("artifacts/catalog")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer catalog.Close()
//
// Use in tests with in-memory storage:
//
//	catalog, err := badger.NewMemoryCatalog()
//
// # Thread Safety
//
// All catalog implementations must be safe for concurrent use; batch
// builds record their versions from several goroutines at once.
package storage
