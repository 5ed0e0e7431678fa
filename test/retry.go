// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package test

import (
	"fmt"
	"time"
)

// Retry calls fn every retryPeriod until it succeeds or maxWaitTime passes.
func Retry[T any](fn func() (T, error), retryPeriod, maxWaitTime time.Duration) (T, error) {
	startTime := time.Now()
	for {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		if time.Since(startTime) > maxWaitTime {
			return v, fmt.Errorf("retry timeout, latest err: %w", err)
		}
		time.Sleep(retryPeriod)
	}
}
