// Command hxsize sizes heat exchangers from case files.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("hxsize failed")
		os.Exit(1)
	}
}
