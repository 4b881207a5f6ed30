package main

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/airbusgeo/geocube-insar/service"
)

type config struct {
	AppPort    string
	WorkingDir string
	StorageURI string
	MaxTries   int
	DateLayout string

	PgqDbConnection string
	PsProject       string
	JobQueue        string
	EventQueue      string
}

func newAppConfig() (*config, error) {
	config := config{}
	maxTries, err := strconv.Atoi(service.Getenv("PROCESSOR_MAX_TRIES", "15"))
	if err != nil {
		return nil, fmt.Errorf("PROCESSOR_MAX_TRIES: %w", err)
	}
	// Global config
	flag.StringVar(&config.AppPort, "port", "9000", "port of the probes (/termination_cost, /healthz)")
	flag.StringVar(&config.WorkingDir, "workdir", "/local-ssd", "working directory to store intermediate results")
	flag.StringVar(&config.StorageURI, "storage-uri", "", "storage uri (currently supported: local, gs). To get the products of the pairs and store the merged products.")
	flag.IntVar(&config.MaxTries, "max-tries", maxTries, "maximum number of tries of a job (must be less than the configured number of tries of the job queue)")
	flag.StringVar(&config.DateLayout, "date-layout", "", "default layout of the dates in the name of the unwrapped phase bands (golang time layout, e.g. 2006-01-02 or 02Jan2006)")

	// Messaging
	flag.StringVar(&config.PgqDbConnection, "pgq-connection", "", "enable pgq messaging system with a connection to the database")
	flag.StringVar(&config.PsProject, "ps-project", "", "pubsub subscription project (gcp only/not required in local usage)")
	flag.StringVar(&config.JobQueue, "job-queue", "", "name of the queue for merge jobs (pgqueue or pubsub subscription)")
	flag.StringVar(&config.EventQueue, "event-queue", "", "name of the queue for job events (pgqueue or pubsub topic)")
	flag.Parse()

	if config.WorkingDir == "" {
		return nil, fmt.Errorf("missing workdir config flag")
	}
	if config.StorageURI == "" {
		return nil, fmt.Errorf("wrong storage-uri config flag")
	}
	if config.MaxTries <= 0 {
		return nil, fmt.Errorf("max-tries must be positive")
	}
	return &config, nil
}
