package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	_ "net/http/pprof" // Profiling
	"time"

	"geballer-core/internal/engine"
	"geballer-core/internal/network"
	"geballer-core/internal/version"
	"geballer-core/pkg/logger"

	"github.com/gorilla/mux"
)

type Server struct {
	World  *engine.World
	Hub    *network.Broadcaster
	Port   string
	router *mux.Router
}

func New(world *engine.World, hub *network.Broadcaster, port string) *Server {
	s := &Server{
		World: world,
		Hub:   hub,
		Port:  port,
	}
	s.router = s.routes()
	return s
}

// Handler возвращает роутер (нужен тестам и для встраивания).
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(enableCORS)

	r.HandleFunc("/ws", s.handleWS)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)

	// pprof регистрируется в DefaultServeMux
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	NewDebugHandler(s.World).RegisterRoutes(r.PathPrefix("/debug").Subrouter())
	return r
}

// Run запускает HTTP сервер и останавливает его при отмене ctx.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        ":" + s.Port,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Warn("http shutdown failed")
		}
	}()

	logger.Log.Infof("Geballer debug server running on :%s", s.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Разрешаем запросы с любого источника (локальный debug-клиент)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(version.Info())
}
