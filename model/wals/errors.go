// Copyright 2025 Skill Recommendation System Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wals

import (
	"fmt"

	"github.com/juju/errors"
)

var (
	// ErrInvalidConfig reports malformed hyper-parameters or an empty
	// candidate grid. It is returned before any computation starts.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInsufficientData reports an empty interaction matrix or a
	// validation split without held-out entries.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrNoKnownItems reports that every query identifier was unknown to
	// the column vocabulary.
	ErrNoKnownItems = errors.New("no known items")
)

// Side of a factorization, used to locate failed solves.
type Side string

const (
	RowSide    Side = "row"
	ColumnSide Side = "column"
)

// IllConditionedError reports a per-row or per-column linear system that is
// singular beyond numerical tolerance. It carries the offending side and
// dense index so the failure can be diagnosed without re-running.
type IllConditionedError struct {
	Side  Side
	Index int
}

func (e *IllConditionedError) Error() string {
	return fmt.Sprintf("ill-conditioned system at %s %d", e.Side, e.Index)
}
