// Package main provides the csim cache simulator command.
//
// csim replays a valgrind memory trace against a set-associative cache with
// LRU replacement and prints the number of hits, misses and evictions.
package main

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			logrus.Error(ee.err)
			os.Exit(ee.code)
		}

		logrus.Error(err)
		os.Exit(1)
	}
}
