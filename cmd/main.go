package main

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	v1handlers "github.com/mediconnect/assistant/internal/api/v1/handlers"
	"github.com/mediconnect/assistant/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{
		Use:   "mediconnect-assistant",
		Short: "MediConnect streaming assistant service",
	}

	root.AddCommand(serveCMD())
	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func setupRouter(svc *services.Services) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		v1handlers.HandleHealth(svc, w, req)
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	v1handlers.RegisterV1Routes(r, svc)
	return r
}
