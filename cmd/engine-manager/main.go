// cmd/engine-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"staffing-engine/internal/common/aws"
	"staffing-engine/internal/common/config"
	"staffing-engine/internal/common/database"
	engineerrors "staffing-engine/internal/common/errors"
	"staffing-engine/internal/common/logger"
	"staffing-engine/internal/common/observability"
	"staffing-engine/internal/engine/credentials"
	"staffing-engine/internal/engine/matching"
	"staffing-engine/internal/engine/workflow"
	"staffing-engine/internal/search"
	"staffing-engine/internal/store"
	"staffing-engine/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting engine manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init AWS Clients ---
	ses, err := aws.NewSESClient(ctx, cfg.AWS.Region, cfg.AWS.SenderAddress)
	if err != nil {
		zapLog.Fatal("ses client failed", zap.Error(err))
	}

	sns, err := aws.NewSNSAuditPublisher(ctx, cfg.AWS.Region, cfg.AWS.AuditTopicARN)
	if err != nil {
		zapLog.Fatal("sns publisher failed", zap.Error(err))
	}
	zapLog.Info("AWS clients initialized")

	// --- Load Credential Registry ---
	reg, err := registry.Load(cfg.Engine.RegistryPath)
	if err != nil {
		zapLog.Fatal("credential registry load failed",
			zap.Error(err),
			zap.String("path", cfg.Engine.RegistryPath),
		)
	}
	zapLog.Info("Credential registry loaded", zap.String("path", cfg.Engine.RegistryPath))

	// --- Assemble the Engine ---
	validator := credentials.NewValidator(reg)

	scorer, err := matching.NewScorer(cfg.Engine.Scoring, validator, reg)
	if err != nil {
		// Misconfigured weights or an incomplete availability matrix must
		// stop the process before any match is computed.
		zapLog.Fatal("scorer configuration invalid", zap.Error(err))
	}

	ranker := matching.NewRanker(scorer, validator, log)

	st := store.New(pg, redis, cfg.Database.Redis.CacheTTL, log)
	searchClient := search.NewClient(esClient, cfg.Database.Elasticsearch, log)

	engine := workflow.NewEngine(st, sns, ses, obs, cfg.Engine.PresentationExpiry, log)

	zapLog.Info("Engine assembled successfully")

	// --- Presentation Expiry Sweep ---
	sweepCtx, stopSweep := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case now := <-ticker.C:
				expired, err := engine.ExpireStale(sweepCtx, now.UTC())
				if err != nil {
					zapLog.Error("presentation expiry sweep failed", zap.Error(err))
					continue
				}
				if expired > 0 {
					zapLog.Info("expired stale presentations", zap.Int("count", expired))
				}
			}
		}
	}()

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/match/candidates", func(w http.ResponseWriter, r *http.Request) {
			jobID := r.URL.Query().Get("job_id")
			if jobID == "" {
				http.Error(w, `{"error":"job_id is required"}`, http.StatusBadRequest)
				return
			}
			limit := 10
			if raw := r.URL.Query().Get("limit"); raw != "" {
				if n, err := strconv.Atoi(raw); err == nil && n > 0 {
					limit = n
				}
			}

			job, err := st.GetJob(r.Context(), jobID)
			if err != nil {
				status := http.StatusInternalServerError
				if engineerrors.IsNotFound(err) {
					status = http.StatusNotFound
				}
				http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), status)
				return
			}

			pool, err := searchClient.SearchProfessionals(r.Context(), search.PoolQuery{
				Specialty: job.Specialty,
				Size:      limit * 10,
			})
			if err != nil {
				http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadGateway)
				return
			}

			start := time.Now()
			top, err := ranker.TopCandidates(r.Context(), job, pool, time.Now().UTC(), limit)
			if err != nil {
				http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusUnprocessableEntity)
				return
			}
			obs.RecordScoreDuration(r.Context(), time.Since(start))

			type rankedOut struct {
				ProfessionalID      string `json:"professionalId"`
				Name                string `json:"name"`
				Score               int    `json:"score"`
				Standing            string `json:"credentialStanding"`
				ProfileCompleteness int    `json:"profileCompleteness"`
			}
			out := make([]rankedOut, 0, len(top))
			for _, c := range top {
				out = append(out, rankedOut{
					ProfessionalID:      c.Professional.ID,
					Name:                c.Professional.FirstName + " " + c.Professional.LastName,
					Score:               c.Score,
					Standing:            string(c.Standing),
					ProfileCompleteness: c.Professional.ProfileCompleteness(),
				})
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"jobId":      job.ID,
				"candidates": out,
			})
		})
		http.HandleFunc("/match/jobs", func(w http.ResponseWriter, r *http.Request) {
			professionalID := r.URL.Query().Get("professional_id")
			if professionalID == "" {
				http.Error(w, `{"error":"professional_id is required"}`, http.StatusBadRequest)
				return
			}
			limit := 10
			if raw := r.URL.Query().Get("limit"); raw != "" {
				if n, err := strconv.Atoi(raw); err == nil && n > 0 {
					limit = n
				}
			}

			professional, err := st.GetProfessional(r.Context(), professionalID)
			if err != nil {
				status := http.StatusInternalServerError
				if engineerrors.IsNotFound(err) {
					status = http.StatusNotFound
				}
				http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), status)
				return
			}

			pool, err := searchClient.SearchOpenJobs(r.Context(), search.PoolQuery{
				Specialty: professional.Specialty,
				Size:      limit * 10,
			})
			if err != nil {
				http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadGateway)
				return
			}
			if len(pool) == 0 {
				// The index can lag behind Postgres; fall back to the
				// system of record before reporting an empty pool.
				pool, err = st.ListOpenJobs(r.Context(), professional.Specialty)
				if err != nil {
					http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusInternalServerError)
					return
				}
			}

			start := time.Now()
			top, err := ranker.TopJobs(r.Context(), professional, pool, time.Now().UTC(), limit)
			if err != nil {
				http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusUnprocessableEntity)
				return
			}
			obs.RecordScoreDuration(r.Context(), time.Since(start))

			type jobOut struct {
				JobID     string `json:"jobId"`
				Title     string `json:"title"`
				Specialty string `json:"specialty"`
				Score     int    `json:"score"`
			}
			out := make([]jobOut, 0, len(top))
			for _, j := range top {
				out = append(out, jobOut{
					JobID:     j.Job.ID,
					Title:     j.Job.Title,
					Specialty: j.Job.Specialty,
					Score:     j.Score,
				})
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"professionalId": professional.ID,
				"jobs":           out,
			})
		})
		http.HandleFunc("/audit/events", func(w http.ResponseWriter, r *http.Request) {
			aggregateID := r.URL.Query().Get("aggregate_id")
			if aggregateID == "" {
				http.Error(w, `{"error":"aggregate_id is required"}`, http.StatusBadRequest)
				return
			}

			events, err := st.ListAuditEvents(r.Context(), aggregateID)
			if err != nil {
				http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"aggregateId": aggregateID,
				"events":      events,
			})
		})
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := http.ListenAndServe(cfg.Metrics.Address, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping engine...")
	stopSweep()

	zapLog.Info("Engine manager stopped gracefully")
}
