// Command dbm-sandbox serves the in-memory DBM over TCP so applications can
// be developed without a real server. It can add latency and inject
// failures, and exposes Prometheus metrics over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/Ratio1/dbm_sdk_go/internal/devseed"
	"github.com/Ratio1/dbm_sdk_go/pkg/dbm/mock"
)

func main() {
	addr := flag.String("addr", ":1978", "gRPC listen address")
	metricsAddr := flag.String("metrics-addr", ":9478", "HTTP address for /metrics (empty disables)")
	seed := flag.String("seed", "", "path to JSON seed for the mock databases")
	dbms := flag.String("dbms", "tree", "comma separated database classes (tree, hash)")
	serverID := flag.Int("server-id", 1, "server id announced to replicas")
	latency := flag.Duration("latency", 0, "artificial latency to inject per request")
	fail := flag.String("fail", "", "failure injection (rate=<float>,code=<grpc code>)")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("parse log level: %v", err)
	}
	log.SetLevel(level)

	classes, err := parseClasses(*dbms)
	if err != nil {
		log.Fatalf("parse dbms flag: %v", err)
	}
	failCfg, err := parseFailConfig(*fail)
	if err != nil {
		log.Fatalf("parse fail flag: %v", err)
	}

	srv := mock.New(mock.WithDBMs(classes...), mock.WithServerID(int32(*serverID)), mock.WithLogger(log))
	if *seed != "" {
		records, err := devseed.LoadSeed(*seed)
		if err != nil {
			log.Fatalf("load seed: %v", err)
		}
		if err := srv.Seed(records); err != nil {
			log.Fatalf("apply seed: %v", err)
		}
		log.WithField("records", len(records)).Info("seed applied")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mw := newMiddleware(*latency, failCfg, reg, log)

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}

	fmt.Println()
	fmt.Println("export DBM_RUNTIME_MODE=grpc")
	host := *addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	fmt.Printf("export DBM_ADDRESS=%s\n", host)
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(ctx, lis,
			grpc.ChainUnaryInterceptor(mw.unary),
			grpc.ChainStreamInterceptor(mw.stream),
		)
	})
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		httpSrv := &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			log.WithField("address", *metricsAddr).Info("metrics listening")
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		log.Fatalf("sandbox failed: %v", err)
	}
	log.Info("sandbox stopped")
}

func parseClasses(raw string) ([]mock.Class, error) {
	var out []mock.Class
	for _, part := range strings.Split(raw, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "":
		case "tree":
			out = append(out, mock.ClassTree)
		case "hash":
			out = append(out, mock.ClassHash)
		default:
			return nil, fmt.Errorf("unknown database class %q", part)
		}
	}
	return out, nil
}
