// Command addressbook is a CLI client for the contacts backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"addressbook/internal/api"
	"addressbook/internal/cache"
	"addressbook/internal/contacts/service"
	"addressbook/internal/platform/config"
	"addressbook/internal/platform/logger"
	"addressbook/internal/platform/metrics"
	"addressbook/internal/platform/tracer"
	"addressbook/internal/session"
	"addressbook/internal/session/tokenstore"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const commandTimeout = 30 * time.Second

func usage(w io.Writer) {
	fmt.Fprint(w, `addressbook CLI
Usage:
  addressbook [-api URL] [-policy deauthenticate|retry_later] [-metrics] <cmd> [args]

Account:
  register        -email <email> -password <pw> -name <display name>
  login           -email <email> -password <pw>
  logout
  whoami
  status                                    (local token state, no request)
  display-name    -name <display name>
  verify-password -password <pw>            (required before passwd/deactivate)
  passwd          -new <pw>
  deactivate
  activate        -email <email> -password <pw>

Contacts:
  list   [-page N] [-size N] [-sort field[:asc|desc]]
         [-filter field -op operator -value v [-value v ...]]
  get    <id> [id ...]
  add    -first <name> -last <name> -email <email> -phone <+1-555-123-456>
  edit   -id <id> [-first ..] [-last ..] [-email ..] [-phone ..]
  rm     <id> [id ...]

  version
`)
}

// app wires the SDK for one CLI invocation.
type app struct {
	cfg      config.Client
	tokens   tokenstore.Store
	session  *session.Controller
	contacts *service.Service
	logger   *slog.Logger
	stdout   io.Writer
}

func newApp(cfg config.Client, tokens tokenstore.Store, log *slog.Logger, m *metrics.Metrics, stdout io.Writer) (*app, error) {
	client, err := api.New(api.Config{BaseURL: cfg.APIURL, Timeout: cfg.HTTPTimeout},
		api.WithLogger(log),
		api.WithMetrics(m),
		api.WithTracer(tracer.NewOTel()),
	)
	if err != nil {
		return nil, err
	}
	reads := cache.New(cache.WithLogger(log), cache.WithMetrics(m))
	ctrl := session.New(client, tokens, reads,
		session.WithLogger(log),
		session.WithMetrics(m),
		session.WithTransportPolicy(cfg.TransportPolicy),
		session.WithOnLogout(func() { log.Debug("session ended") }),
	)
	return &app{
		cfg:      cfg,
		tokens:   tokens,
		session:  ctrl,
		contacts: service.New(client, ctrl, reads, service.WithLogger(log)),
		logger:   log,
		stdout:   stdout,
	}, nil
}

func (a *app) close() {
	a.session.Close()
}

func main() {
	cfg := config.FromEnv()

	apiURL := flag.String("api", cfg.APIURL, "backend base URL")
	policy := flag.String("policy", cfg.TransportPolicy, "transport failure policy (deauthenticate|retry_later)")
	dumpMetrics := flag.Bool("metrics", false, "print client metrics to stderr on exit")
	flag.Usage = func() { usage(os.Stderr) }
	flag.Parse()

	if flag.NArg() < 1 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cfg.APIURL = *apiURL
	if *policy == config.PolicyRetryLater {
		cfg.TransportPolicy = config.PolicyRetryLater
	}

	log := logger.New(cfg.LogLevel)
	tokens, err := tokenstore.NewFileStore(cfg.TokenDir, cfg.APIURL)
	if err != nil {
		fail(err)
	}

	reg := prometheus.NewRegistry()
	a, err := newApp(cfg, tokens, log, metrics.New(reg), os.Stdout)
	if err != nil {
		fail(err)
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	err = a.run(ctx, flag.Args())
	if *dumpMetrics {
		writeMetrics(os.Stderr, reg)
	}
	if errors.Is(err, errUsage) {
		usage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", describe(err))
	os.Exit(1)
}

// writeMetrics prints every non-zero counter sample as name{labels} value.
func writeMetrics(w io.Writer, reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		fmt.Fprintln(w, "metrics:", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			value := m.GetCounter().GetValue()
			if h := m.GetHistogram(); h != nil {
				value = float64(h.GetSampleCount())
			}
			if value == 0 {
				continue
			}
			labels := ""
			for _, lp := range m.GetLabel() {
				if labels != "" {
					labels += ","
				}
				labels += lp.GetName() + "=" + lp.GetValue()
			}
			fmt.Fprintf(w, "%s{%s} %g\n", mf.GetName(), labels, value)
		}
	}
}
