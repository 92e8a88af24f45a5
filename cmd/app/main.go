// Command app runs the transcription service against a set of local
// files or media URLs given as arguments, streaming progress to the
// log and printing transcript locations when all jobs finish.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"transcriber-service/internal/config"
	"transcriber-service/internal/diagnostics"
	"transcriber-service/internal/domain"
	"transcriber-service/internal/jobs"
	"transcriber-service/internal/logging"
	"transcriber-service/internal/metrics"
	"transcriber-service/internal/service"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	logging.Configure(logging.Config{Level: cfg.LogLevel})
	log := logging.Component("app")

	if err := cfg.EnsureDirs(); err != nil {
		log.Error().Err(err).Msg("cannot prepare working directories")
		return 1
	}

	report := diagnostics.NewChecker().Run(cfg)
	for _, item := range report.Items {
		level := zerolog.InfoLevel
		if item.Status == domain.DiagnosticStatusFail {
			level = zerolog.WarnLevel
		}
		log.WithLevel(level).Str("check", item.ID).Str("status", string(item.Status)).Msg(item.Message)
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: app <media file or URL> [...]")
		return 2
	}

	m := metrics.New(nil)
	svc := service.New(cfg, m, logging.Component("service"))
	defer svc.Close()

	sessionID := uuid.NewString()
	submitted := make([]domain.Job, 0, len(args))
	for _, arg := range args {
		var job domain.Job
		var err error
		if isURL(arg) {
			job, err = svc.SubmitURLJob(context.Background(), sessionID, arg, arg)
		} else {
			job, err = svc.SubmitFileJob(context.Background(), sessionID, arg, arg)
		}
		if err != nil {
			log.Error().Err(err).Str("source", arg).Msg("submission rejected")
			continue
		}
		submitted = append(submitted, job)
		log.Info().Str("jobId", job.ID).Str("source", arg).Msg("job submitted")
	}
	if len(submitted) == 0 {
		return 1
	}

	failed := waitForJobs(svc, log, sessionID)

	for _, job := range svc.ListTranscriptions(sessionID) {
		fmt.Printf("%s\t%s\n", job.DisplayName, job.TranscriptPath)
	}
	if failed > 0 {
		log.Error().Int("failed", failed).Msg("some jobs did not complete")
		return 1
	}
	return 0
}

// waitForJobs polls the event stream until every job is terminal and
// returns the number of failures.
func waitForJobs(svc *service.Service, log zerolog.Logger, sessionID string) int {
	var since int64
	for {
		for _, event := range svc.Events(sessionID, since) {
			since = event.Seq
			switch event.Type {
			case jobs.EventTypeError:
				log.Error().Str("jobId", event.JobID).Msg(event.Message)
			case jobs.EventTypeResult:
				log.Info().Str("jobId", event.JobID).Str("textPath", event.TextPath).Msg(event.Message)
			case jobs.EventTypeStatus:
				log.Info().Str("jobId", event.JobID).Str("status", string(event.Status)).Msg(event.Message)
			default:
				log.Debug().Str("jobId", event.JobID).Msg(event.Message)
			}
		}

		status := svc.Status(sessionID)
		if status.ActiveJobs == 0 {
			return status.FailedJobs
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// isURL distinguishes URL submissions from local paths.
func isURL(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}

// serveMetrics exposes the Prometheus endpoint.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log := logging.Component("metrics")
	log.Info().Str("addr", addr).Msg("metrics endpoint listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics endpoint stopped")
	}
}
