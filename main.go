package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	auth "Thermex/internal/auth"
	"Thermex/internal/calc/batch"
	"Thermex/internal/calc/exchanger"
	"Thermex/internal/calc/importer"
	"Thermex/internal/calc/recommend"
	"Thermex/internal/calc/report"
	"Thermex/internal/config"
	"Thermex/internal/repo"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, calc *exchanger.Calculator, authEnv *auth.Authenv) {
	limiter := auth.NewIPRateLimiter(5, 10)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")

	exchangerH := &exchanger.Handler{Calculator: calc}
	api.HandleFunc("/exchanger/catalog", exchangerH.Catalog).Methods("GET")

	secureApi := api.PathPrefix("/exchanger").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	batchH := &batch.Handler{Calculator: calc}
	importH := &importer.Handler{Calculator: calc}
	recommendH := &recommend.Handler{Calculator: calc}
	reportH := &report.Handler{Calculator: calc}

	secureApi.HandleFunc("/size", exchangerH.Calc).Methods("POST")
	secureApi.HandleFunc("/batch", batchH.Calc).Methods("POST")
	secureApi.HandleFunc("/import", importH.Import).Methods("POST")
	secureApi.HandleFunc("/template", importH.Template).Methods("GET")
	secureApi.HandleFunc("/recommend", recommendH.Calc).Methods("POST")
	secureApi.HandleFunc("/report/pdf", reportH.Generate).Methods("POST")

	mux.Handle("/metrics", promhttp.Handler()).Methods("GET")
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods("GET")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	env := config.LoadEnv()
	env.ConfigureLogger()
	if env.TokenKey == "" {
		log.Fatal("TOKEN_KEY environment variable is not set")
	}
	if env.AdminPasswordHash == "" {
		log.Warn("ADMIN_PASSWORD_HASH is not set, logins will be refused")
	}

	constants, err := config.LoadConstants(env.ConstantsFile)
	if err != nil {
		log.WithError(err).Fatal("load constants")
	}

	provider, closeProvider, err := repo.OpenProvider(ctx, env.FluidSource, env.DatabaseURL)
	if err != nil {
		log.WithError(err).WithField("source", env.FluidSource).Fatal("open fluid property source")
	}
	defer closeProvider()

	calc := exchanger.NewCalculator(constants, provider, log.StandardLogger())
	authEnv := &auth.Authenv{
		JWTkey:       []byte(env.TokenKey),
		Login:        env.AdminLogin,
		PasswordHash: env.AdminPasswordHash,
	}

	mux := mux.NewRouter()
	HandleList(mux, calc, authEnv)
	handler := CORS(mux)

	server := &http.Server{
		Addr:              env.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.WithFields(log.Fields{
		"addr":         env.Addr,
		"fluid_source": env.FluidSource,
		"tls":          env.TLSCert != "",
	}).Info("starting server")

	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		if env.TLSCert != "" && env.TLSKey != "" {
			err = server.ListenAndServeTLS(env.TLSCert, env.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	wg.Wait()
	log.Info("server stopped")
}
