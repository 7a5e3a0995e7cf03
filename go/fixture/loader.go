// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package fixture

import (
	"fmt"
	"io/fs"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/sha3"
)

// Loader reads fixture documents from a file system and decodes them.
// Decoded documents are cached by the keccak256 hash of their content, so
// repeated loads of an unchanged document skip the decoding step.
type Loader struct {
	fsys  fs.FS
	cache *lru.Cache[Hash, Fixture]
}

// DefaultCacheSize is the number of decoded documents retained by a loader
// if no other size is requested.
const DefaultCacheSize = 64

// NewLoader creates a loader reading documents from the given file system.
// A cacheSize of 0 selects DefaultCacheSize, negative values disable the
// cache.
func NewLoader(fsys fs.FS, cacheSize int) (*Loader, error) {
	if cacheSize == 0 {
		cacheSize = DefaultCacheSize
	}
	var cache *lru.Cache[Hash, Fixture]
	if cacheSize > 0 {
		var err error
		cache, err = lru.New[Hash, Fixture](cacheSize)
		if err != nil {
			return nil, err
		}
	}
	return &Loader{fsys: fsys, cache: cache}, nil
}

// NewDirLoader creates a loader for the fixture documents located in the
// given directory.
func NewDirLoader(dir string) (*Loader, error) {
	return NewLoader(os.DirFS(dir), DefaultCacheSize)
}

// Load reads and decodes the document with the given name.
func (l *Loader) Load(name string) (Fixture, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", name, err)
	}
	res, err := l.decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fixture %s: %w", name, err)
	}
	return res, nil
}

func (l *Loader) decode(data []byte) (Fixture, error) {
	if l.cache == nil {
		return Decode(data)
	}
	key := Fingerprint(data)
	if res, found := l.cache.Get(key); found {
		return res, nil
	}
	res, err := Decode(data)
	if err != nil {
		return nil, err
	}
	l.cache.Add(key, res)
	return res, nil
}

// Fingerprint computes the keccak256 hash of a fixture document.
func Fingerprint(data []byte) Hash {
	var res Hash
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	hasher.Sum(res[0:0])
	return res
}
