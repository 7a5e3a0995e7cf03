// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package store persists the outcomes of test cases across runs, which
// allows the driver to report regressions.
package store

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

const (
	failing byte = 0
	passing byte = 1
)

// History is a LevelDB backed record of the latest outcome of each test
// case. It is safe for concurrent use.
type History struct {
	db *leveldb.DB
}

// Open opens or creates the history database in the given directory.
func Open(path string) (*History, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{ErrorIfMissing: false})
	if err != nil {
		return nil, fmt.Errorf("failed to open history at %s: %w", path, err)
	}
	return &History{db: db}, nil
}

// Get returns the recorded outcome of the given test case. The found flag
// is false if no outcome was recorded before.
func (h *History) Get(fixture, testCase string) (passed bool, found bool, err error) {
	data, err := h.db.Get(key(fixture, testCase), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	if len(data) != 1 || data[0] > passing {
		return false, false, fmt.Errorf("invalid history entry for %s/%s: %x", fixture, testCase, data)
	}
	return data[0] == passing, true, nil
}

// Record stores the outcome of the given test case and returns the outcome
// recorded before, if any.
func (h *History) Record(fixture, testCase string, passed bool) (wasPassing bool, found bool, err error) {
	wasPassing, found, err = h.Get(fixture, testCase)
	if err != nil {
		return false, false, err
	}
	value := failing
	if passed {
		value = passing
	}
	if err := h.db.Put(key(fixture, testCase), []byte{value}, nil); err != nil {
		return false, false, err
	}
	return wasPassing, found, nil
}

// Close releases the database.
func (h *History) Close() error {
	return h.db.Close()
}

func key(fixture, testCase string) []byte {
	return []byte(fixture + "/" + testCase)
}
