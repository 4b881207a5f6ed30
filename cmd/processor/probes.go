package main

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
)

// jobTracker records when the current job started
type jobTracker struct {
	started atomic.Int64
}

func (j *jobTracker) start() { j.started.Store(time.Now().UnixNano()) }
func (j *jobTracker) stop()  { j.started.Store(0) }

// terminationCost returns the number of milliseconds since the current job was leased, or 0
func (j *jobTracker) terminationCost() int64 {
	started := j.started.Load()
	if started == 0 {
		return 0
	}
	return time.Since(time.Unix(0, started)).Milliseconds()
}

func newProbesHandler(jobs *jobTracker) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/termination_cost", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprintf(w, "%d", jobs.terminationCost())
	}).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	}).Methods(http.MethodGet)
	return r
}
