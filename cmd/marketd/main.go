package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/openmint/nft-marketplace/internal/config"
	"github.com/openmint/nft-marketplace/internal/daemon"
	"go.uber.org/zap"
)

func main() {
	config.Init()

	go health()

	daemon.Execute()
}

func health() {
	if err := http.ListenAndServe(":"+config.Get().HealthPort, router()); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to start health server")
	}
}

func router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "OK")
	}).Methods("GET")

	return r
}
