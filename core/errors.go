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


package core

import "errors"

// Error taxonomy shared by every datamill package.
var (
	// ErrNotFound indicates a missing input file, config file, or artifact directory.
	ErrNotFound = errors.New("not found")

	// ErrFormat indicates malformed content: bad JSON or CSV structure,
	// wrong root shape, or too few columns.
	ErrFormat = errors.New("format error")

	// ErrUnsupportedFormat indicates an input file extension with no loader.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrValidation indicates a configuration or record that violates domain rules.
	ErrValidation = errors.New("validation error")
)

// Validation refinements. They are always wrapped together with ErrValidation.
var (
	// ErrMissingField indicates a required configuration key is absent.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidType indicates a configuration value has the wrong type.
	ErrInvalidType = errors.New("invalid type")

	// ErrInvalidVersionName indicates a version name that cannot name a directory.
	ErrInvalidVersionName = errors.New("invalid version name")

	// ErrOutOfRange indicates a numeric value outside its allowed range.
	ErrOutOfRange = errors.New("value out of range")
)
