// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package runner

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Fantom-foundation/evm-compat/go/fixture"
	"github.com/dsnet/golib/unitconv"
	"github.com/sirupsen/logrus"
)

// runParallel distributes the given test cases among a team of workers.
// Results are collected per position and returned in the order of the
// given names, so the outcome does not depend on the scheduling.
func (r *Runner) runParallel(fixtureName string, names []string, document fixture.Fixture) ([]CaseResult, bool) {
	// Cases are fed into a channel by this goroutine and consumed by a team
	// of workers. Additionally, a goroutine periodically reports progress.
	// Workers are started before the producer to avoid dead-locks.

	var testCounter atomic.Int64
	var abortTests atomic.Bool

	done := make(chan bool)
	printerDone := make(chan bool)
	go func() {
		defer close(printerDone)
		if r.config.ProgressInterval <= 0 {
			<-done
			return
		}
		ticker := time.NewTicker(r.config.ProgressInterval)
		defer ticker.Stop()
		startTime := time.Now()
		lastTime := startTime
		lastTestCounter := int64(0)
		for {
			select {
			case <-done:
				return
			case curTime := <-ticker.C:
				cur := testCounter.Load()
				rate := float64(cur-lastTestCounter) / curTime.Sub(lastTime).Seconds()
				lastTime = curTime
				lastTestCounter = cur
				r.log.WithFields(logrus.Fields{
					"fixture": fixtureName,
					"elapsed": curTime.Sub(startTime).Round(time.Second),
				}).Infof("processing ~%s test cases per second, %d of %d done",
					unitconv.FormatPrefix(rate, unitconv.SI, 0), cur, len(names))
			}
		}
	}()

	results := make([]CaseResult, len(names))
	executed := make([]bool, len(names))

	var workers sync.WaitGroup
	workers.Add(r.config.Jobs)
	indexes := make(chan int, 10*r.config.Jobs)
	for i := 0; i < r.config.Jobs; i++ {
		go func() {
			defer workers.Done()
			for index := range indexes {
				if abortTests.Load() {
					continue // < drain the channel
				}
				name := names[index]
				testCase := document[name]
				results[index] = r.runCase(fixtureName, name, &testCase)
				executed[index] = true
				testCounter.Add(1)
				if r.config.FailFast && results[index].Outcome != Passed {
					abortTests.Store(true)
				}
			}
		}()
	}

	for i := range names {
		indexes <- i
	}
	close(indexes)
	workers.Wait() // < releases when all test cases are processed

	close(done)   // < signals progress printer to stop
	<-printerDone // < blocks until channel is closed by progress printer

	res := make([]CaseResult, 0, len(names))
	for i, result := range results {
		if executed[i] {
			res = append(res, result)
		}
	}
	return res, abortTests.Load()
}
