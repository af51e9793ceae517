// Command gateway runs the remote inference gateway: config resolution,
// accelerator probe, then an HTTP server exposing the model/inference/echo
// routes (spec.md §6), grounded on
// original_source/server/__main__.py's Flask route list.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/itohio/inferlite/pkg/core/accelerator"
	"github.com/itohio/inferlite/pkg/core/config"
	"github.com/itohio/inferlite/pkg/core/logger"
	"github.com/itohio/inferlite/pkg/gateway"
	"github.com/itohio/inferlite/pkg/gateway/wire"
)

func main() {
	logger.Log.Debug().Msg("Run")
	defer logger.Log.Debug().Msg("Exit")

	cfg := config.FromEnv()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.Load(path); err != nil {
			logger.Log.Fatal().Err(err).Str("path", path).Msg("failed to load config file")
		}
	}

	if cfg.ModelDir != "" {
		if info, err := os.Stat(cfg.ModelDir); err != nil || !info.IsDir() {
			logger.Log.Fatal().Str("model_dir", cfg.ModelDir).Msg("configured model directory doesn't exist")
		}
	}

	if err := accelerator.Probe(); err != nil {
		logger.Log.Fatal().Err(err).Msg("accelerator probe failed")
	}

	gw := gateway.New(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/model", handleLoadModel(gw))
	mux.HandleFunc("/api/inference", handleInference(gw))
	mux.HandleFunc("/api/echo/", handleEcho(gw))
	mux.Handle("/ex/", http.StripPrefix("/ex/", http.FileServer(http.Dir("examples"))))

	logger.Log.Info().Str("addr", cfg.Addr()).Msg("listening")
	if err := http.ListenAndServe(cfg.Addr(), mux); err != nil {
		logger.Log.Fatal().Err(err).Msg("server exited")
	}
}

func handleLoadModel(gw *gateway.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req wire.LoadModelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}

		writeJSON(w, gw.LoadModel(req))
	}
}

func handleInference(gw *gateway.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req wire.InferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}

		writeJSON(w, gw.Infer(req))
	}
}

func handleEcho(gw *gateway.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := strings.TrimPrefix(r.URL.Path, "/api/echo/")
		w.Write([]byte(gw.Echo(s)))
	}
}

// writeJSON always responds 200 OK: errors travel inside the body as a
// wire.Error, not as an HTTP status (spec.md §7: "HTTP status remains
// 200").
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error().Err(err).Msg("failed to encode response")
	}
}
