package web

import (
	"crypto/hmac"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"tithe/internal/back"
	"tithe/internal/config"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(s.authenticate)

	r.Get("/", noContent)

	// I intend the v1 to be a hacky, quick'n dirty implementation, with no
	// pagination nor any fancy stuff.
	r.Get("/v1/players", s.getPlayers)
	r.Get("/v1/player/{id}/payments", s.getPlayerPayments)
	r.Get("/v1/dashboard", s.getDashboard)

	return r
}

// Server is a read-only JSON API for operators, it exposes the same data
// the admin-only bot commands do.
type Server struct {
	http   *http.Server
	back   *back.Back
	config *config.Config
}

func NewServer(back *back.Back, conf *config.Config) *Server {
	s := &Server{
		back:   back,
		config: conf,
	}

	s.http = &http.Server{
		Addr:         conf.WebListenAddr,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  10 * time.Second,
		Handler:      s.setupRouter(),
	}

	return s
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// authenticate requires the configured bearer token on every request. When
// no token is configured the API answers to anyone, only do that behind a
// firewall.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.WebToken != "" {
			header := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !hmac.Equal([]byte(header), []byte(s.config.WebToken)) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) Serve(wg *sync.WaitGroup, done <-chan struct{}) {
	if s.config.WebListenAddr == "" {
		log.Println("info: no web listen address, skipping HTTP server")
		return
	}

	log.Println("info: starting HTTP server")
	wg.Add(1)
	defer wg.Done()

	go func() {
		err := s.http.ListenAndServe()
		if err == http.ErrServerClosed {
			log.Println("info: HTTP server closed")
			return
		}

		log.Fatalf("webserver crashed: %s", err)
	}()

	<-done
	if err := s.http.Close(); err != nil {
		log.Printf("warning: unable to close webserver: %s", err)
	}
}

func (s *Server) response(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	response, err := json.Marshal(data)
	if err != nil {
		log.Printf("error: unable to marshal response: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(code)

	if _, err := w.Write(response); err != nil {
		log.Printf("error: unable to send response: %s", err)
	}
}

func (s *Server) error(w http.ResponseWriter, err error, code int) {
	log.Printf("error: %s", err)
	w.WriteHeader(code)
}
