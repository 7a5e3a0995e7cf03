// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package protocol

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
)

// This file provides a registry for engines that can be tested by the
// harness. Engine packages register their factory in their init code, so
// that importing an engine package makes it available to the driver.

// GetEngine performs a lookup for the given name (case-insensitive) in the
// registry. The result is nil if no engine was registered under the given
// name.
func GetEngine(name string) Factory {
	engineRegistryLock.Lock()
	defer engineRegistryLock.Unlock()
	return engineRegistry[strings.ToLower(name)]
}

// GetAllRegisteredEngines obtains all registered engines.
func GetAllRegisteredEngines() map[string]Factory {
	engineRegistryLock.Lock()
	defer engineRegistryLock.Unlock()
	return maps.Clone(engineRegistry)
}

// GetEngineNames lists the names of all registered engines in order.
func GetEngineNames() []string {
	engineRegistryLock.Lock()
	defer engineRegistryLock.Unlock()
	res := maps.Keys(engineRegistry)
	sort.Strings(res)
	return res
}

// RegisterEngine registers a new engine under the given name. The name is
// not case-sensitive. An error is returned if an engine was bound to the
// same name before, or the factory is nil.
func RegisterEngine(name string, factory Factory) error {
	key := strings.ToLower(name)
	if factory == nil {
		return fmt.Errorf("invalid initialization: cannot register nil-factory using `%s`", key)
	}
	engineRegistryLock.Lock()
	defer engineRegistryLock.Unlock()
	if _, found := engineRegistry[key]; found {
		return fmt.Errorf("invalid initialization: multiple factories registered for `%s`", key)
	}
	engineRegistry[key] = factory
	return nil
}

// MustRegisterEngine is like RegisterEngine but panics on failure. It is
// intended to be used by package initialization code.
func MustRegisterEngine(name string, factory Factory) {
	if err := RegisterEngine(name, factory); err != nil {
		panic(err)
	}
}

var engineRegistry = map[string]Factory{}
var engineRegistryLock sync.Mutex
