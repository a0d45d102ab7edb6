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

package base

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndex(t *testing.T) {
	// create a index
	index := NewMapIndex()
	assert.Equal(t, int32(0), index.Len())
	// add identifiers
	index.Add("occupation-1")
	index.Add("occupation-2")
	index.Add("occupation-4")
	index.Add("occupation-2") // duplicate keeps the first position
	assert.Equal(t, int32(3), index.Len())
	// convert identifiers to numbers
	assert.Equal(t, int32(0), index.ToNumber("occupation-1"))
	assert.Equal(t, int32(1), index.ToNumber("occupation-2"))
	assert.Equal(t, int32(2), index.ToNumber("occupation-4"))
	assert.Equal(t, NotId, index.ToNumber("occupation-3"))
	// convert numbers to identifiers
	assert.Equal(t, "occupation-1", index.ToName(0))
	assert.Equal(t, "occupation-2", index.ToName(1))
	assert.Equal(t, "occupation-4", index.ToName(2))
	assert.Equal(t, []string{"occupation-1", "occupation-2", "occupation-4"}, index.GetNames())
}

func TestIndex_Marshal(t *testing.T) {
	index := NewMapIndex()
	index.Add("skill-a")
	index.Add("skill-b")
	index.Add("skill-c")
	// marshal
	buf := bytes.NewBuffer(nil)
	err := MarshalIndex(buf, index)
	assert.NoError(t, err)
	// unmarshal
	decoded, err := UnmarshalIndex(buf)
	assert.NoError(t, err)
	assert.Equal(t, index, decoded)
}

func TestIndex_Nil(t *testing.T) {
	var index *Index
	assert.Equal(t, int32(0), index.Len())
}
