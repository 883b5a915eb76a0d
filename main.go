package main

import (
	"os"
	"runtime/pprof"

	log "github.com/sirupsen/logrus"

	"github.com/lumipallolabs/folderdiff/cmd"
)

func main() {
	// Enable CPU profiling if CPUPROFILE env var is set
	if cpuProfile := os.Getenv("CPUPROFILE"); cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.WithError(err).Fatal("Could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.WithError(err).Fatal("Could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Infof("CPU profiling enabled, writing to %s", cpuProfile)
	}

	cmd.Execute()
}
