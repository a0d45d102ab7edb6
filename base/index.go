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
	"encoding/binary"
	"io"

	"github.com/juju/errors"

	"github.com/egesia1/Skill-Recommendation-System/base/encoding"
)

// Index manages the map between external identifiers and dense indices. An
// external identifier is an occupation code or a skill URI. The dense index
// is the row or column position inside factor matrices, optimized for faster
// parameter access and less memory usage. The order of identifiers is the
// insertion order and is immutable once training starts.
type Index struct {
	Numbers map[string]int32 // external identifier -> dense index
	Names   []string         // dense index -> external identifier
}

// NotId represents an identifier that doesn't exist in the index.
const NotId = int32(-1)

// NewMapIndex creates an empty Index.
func NewMapIndex() *Index {
	idx := new(Index)
	idx.Numbers = make(map[string]int32)
	idx.Names = make([]string, 0)
	return idx
}

// Len returns the number of indexed identifiers.
func (idx *Index) Len() int32 {
	if idx == nil {
		return 0
	}
	return int32(len(idx.Names))
}

// Add adds a new identifier to the index. Duplicates are ignored so the
// first insertion fixes the dense index.
func (idx *Index) Add(name string) {
	if _, exist := idx.Numbers[name]; !exist {
		idx.Numbers[name] = int32(len(idx.Names))
		idx.Names = append(idx.Names, name)
	}
}

// ToNumber converts an external identifier to a dense index.
func (idx *Index) ToNumber(name string) int32 {
	if denseId, exist := idx.Numbers[name]; exist {
		return denseId
	}
	return NotId
}

// ToName converts a dense index to an external identifier.
func (idx *Index) ToName(index int32) string {
	return idx.Names[index]
}

// GetNames returns all identifiers in dense index order.
func (idx *Index) GetNames() []string {
	return idx.Names
}

// Marshal writes the index into a byte stream.
func (idx *Index) Marshal(w io.Writer) error {
	// write length
	err := binary.Write(w, binary.LittleEndian, int32(len(idx.Names)))
	if err != nil {
		return errors.Trace(err)
	}
	// write names
	for _, s := range idx.Names {
		err = encoding.WriteString(w, s)
		if err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// Unmarshal reads the index from a byte stream.
func (idx *Index) Unmarshal(r io.Reader) error {
	// read length
	var n int32
	err := binary.Read(r, binary.LittleEndian, &n)
	if err != nil {
		return errors.Trace(err)
	}
	// read names
	idx.Names = make([]string, 0, n)
	idx.Numbers = make(map[string]int32, n)
	for i := 0; i < int(n); i++ {
		name, err := encoding.ReadString(r)
		if err != nil {
			return errors.Trace(err)
		}
		idx.Add(name)
	}
	return nil
}

// MarshalIndex writes an index into a byte stream.
func MarshalIndex(w io.Writer, index *Index) error {
	return index.Marshal(w)
}

// UnmarshalIndex reads an index from a byte stream.
func UnmarshalIndex(r io.Reader) (*Index, error) {
	index := &Index{}
	if err := index.Unmarshal(r); err != nil {
		return nil, errors.Trace(err)
	}
	return index, nil
}
