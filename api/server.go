package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status reports what the streamer is playing.
type Status interface {
	Current() string
	Names() []string
}

type Api struct {
	listen   string
	static   string
	gatherer prometheus.Gatherer
	status   Status
	logger   logr.Logger
}

// NewApi creates an Api serving on listen. Static files are served from the static
// directory when one is given.
func NewApi(listen, static string, gatherer prometheus.Gatherer, status Status, logger logr.Logger) *Api {
	a := new(Api)
	a.listen = listen
	a.static = static
	a.gatherer = gatherer
	a.status = status
	a.logger = logger
	return a
}

// Handler routes the api endpoints.
func (a *Api) Handler() http.Handler {
	mux := http.NewServeMux()
	if a.static != "" {
		mux.Handle("/", http.FileServer(http.Dir(a.static)))
	}
	mux.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/animations", a.handleAnimations)
	return mux
}

type animationsResponse struct {
	Current    string   `json:"current"`
	Animations []string `json:"animations"`
}

func (a *Api) handleAnimations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := animationsResponse{Current: a.status.Current(), Animations: a.status.Names()}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		a.logger.Error(err, "writing animations")
	}
}

// Serve listens until ctx is done, then shuts the server down.
func (a *Api) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              a.listen,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", a.listen)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
