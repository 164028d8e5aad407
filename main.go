package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"agrigate/internal/background"
	"agrigate/internal/config"
	"agrigate/internal/gate"
	"agrigate/internal/metrics"
	"agrigate/internal/session"
	"agrigate/internal/validate"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type app struct {
	title    string
	sessions *session.Manager
	gate     *gate.Controller
	backdrop *background.Fetcher
	metrics  *metrics.Collector
	registry *prometheus.Registry
	now      func() time.Time
}

func newApp(settings *config.SettingsType, sessions *session.Manager) (*app, error) {
	mode, err := validate.ParseMatchMode(settings.Get(config.EMAIL_POLICY))
	if err != nil {
		return nil, err
	}
	policy := validate.NewPolicy(mode, settings.Get(config.EMAIL_DOMAIN))

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	backdrop := background.NewFetcher(
		settings.Get(config.BACKGROUND_IMAGE_URL),
		settings.Duration(config.BACKGROUND_FETCH_TIMEOUT),
		settings.Duration(config.BACKGROUND_CACHE_TTL),
		background.WithRecorder(collector),
	)

	return &app{
		title:    settings.Get(config.APP_TITLE),
		sessions: sessions,
		gate:     gate.NewController(policy, settings.IsTrue(config.DECORATED_CHROME)),
		backdrop: backdrop,
		metrics:  collector,
		registry: registry,
		now:      time.Now,
	}, nil
}

/*
   ---------------------------
   Request logging
   ---------------------------
*/

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
		log.Printf(
			"request: status=%d bytes=%d dur=%s method=%s path=%s remote=%s xff=%q ua=%q",
			rec.status,
			rec.bytes,
			time.Since(start).Truncate(time.Millisecond),
			r.Method,
			r.URL.Path,
			r.RemoteAddr,
			xff,
			r.UserAgent(),
		)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

/*
   ---------------------------
   Router
   ---------------------------
*/

func getAgriGateRouter(a *app) http.Handler {

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(securityHeaders)
	router.Use(a.sessions.LoadAndSave)

	router.Handle("/static/*", http.FileServer(http.FS(staticFiles)))
	router.Get("/", a.handleGate)
	router.Get("/login", a.handleGate)
	router.Post("/login", a.handleLoginPost)
	router.HandleFunc("/logout", a.handleLogout)
	router.Handle("/metrics", metrics.Handler(a.registry))

	router.HandleFunc("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok\n")); err != nil {
			log.Printf("failed to write health response: %v", err)
		}
	})

	apiCfg := huma.DefaultConfig("AgriGate", "1.0.0")
	apiCfg.OpenAPIPath = ""
	apiCfg.DocsPath = ""
	apiCfg.SchemasPath = ""
	api := humachi.New(router, apiCfg)
	registerAPI(api, a)

	return logRequests(router)
}

type validateInput struct {
	Body struct {
		Email    string `json:"email,omitempty" doc:"Email typed into the login form"`
		Password string `json:"password,omitempty" doc:"Password typed into the login form"`
	}
}

type validateOutput struct {
	Body validate.Result
}

type sessionOutput struct {
	Body struct {
		Authenticated bool   `json:"authenticated"`
		Identity      string `json:"identity"`
		State         string `json:"state"`
	}
}

func registerAPI(api huma.API, a *app) {
	huma.Post(api, "/api/validate", func(_ context.Context, in *validateInput) (*validateOutput, error) {
		res := a.gate.Policy().Validate(strings.TrimSpace(in.Body.Email), in.Body.Password)
		return &validateOutput{Body: res}, nil
	}, func(op *huma.Operation) {
		op.Summary = "Check login input without signing in"
	})

	huma.Get(api, "/api/session", func(ctx context.Context, _ *struct{}) (*sessionOutput, error) {
		st := a.sessions.State(ctx)
		out := &sessionOutput{}
		out.Body.Authenticated = st.Authenticated
		out.Body.Identity = st.Identity
		out.Body.State = gate.StateOf(st).String()
		return out, nil
	})

	group := huma.NewGroup(api, "/api")
	group.UseMiddleware(a.sessions.SessionMiddleware())
	huma.Post(group, "/crop", func(ctx context.Context, _ *struct{}) (*huma.StreamResponse, error) {
		st, ok := session.StateFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("not signed in")
		}
		return &huma.StreamResponse{
			Body: func(ctx huma.Context) {
				req, w := humachi.Unwrap(ctx)
				a.handleCropSubmit(w, req, st)
			},
		}, nil
	}, func(op *huma.Operation) {
		op.Hidden = true
	})
}

/*
   ---------------------------
   Main
   ---------------------------
*/

func main() {

	settings := config.NewSettingType(true)

	a, err := newApp(settings, session.NewManager(settings))
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	go a.backdrop.Warm(context.Background())

	addr := settings.Get(config.LISTEN_ADDR)
	srv := &http.Server{
		Addr:    addr,
		Handler: getAgriGateRouter(a),

		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	if !settings.IsTrue(config.TLS_ENABLED) {
		log.Printf("Starting AgriGate on %s", addr)
		log.Fatal(srv.ListenAndServe())
	}

	certPath := settings.Get(config.TLS_CERT)
	keyPath := settings.Get(config.TLS_KEY)
	if err := ensureTLSCert(certPath, keyPath); err != nil {
		log.Fatalf("failed to ensure TLS certs: %v", err)
	}
	srv.TLSConfig = newTLSConfig()

	log.Printf("Starting AgriGate with TLS on %s", addr)
	log.Fatal(srv.ListenAndServeTLS(certPath, keyPath))
}
