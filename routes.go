// SPDX-FileCopyrightText: 2025 The adbridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/adbridge-io/adbridge/upload"
	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"github.com/xmidt-org/candlelight"
	"github.com/xmidt-org/httpaux"
	"github.com/xmidt-org/httpaux/recovery"
	"github.com/xmidt-org/touchstone/touchhttp"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	defaultPrimaryAddress = ":6600"
	defaultOpsAddress     = ":6601"
)

type RoutesIn struct {
	fx.In
	V              *viper.Viper
	Logger         *zap.Logger
	LC             fx.Lifecycle
	PrimaryMetrics touchhttp.ServerInstrumenter `name:"servers.primary.metrics"`
	OpsMetrics     touchhttp.ServerInstrumenter `name:"servers.ops.metrics"`
	Handlers       PrimaryHandlersIn
	Gatherer       prometheus.Gatherer
	// Tracing is used to set up tracing instrumentation code.
	Tracing candlelight.Tracing
}

type PrimaryHandlersIn struct {
	fx.In
	Upload      upload.Handler `name:"upload_handler"`
	BatchStatus upload.Handler `name:"batch_status_handler"`
	BatchList   upload.Handler `name:"batch_list_handler"`
}

// BuildRoutes wires the primary API server and the ops server (health and
// metrics) into the application lifecycle.
func BuildRoutes(in RoutesIn) {
	chain := alice.New(recovery.Middleware(recovery.WithStatusCode(555)))

	primary := mux.NewRouter()
	options := []otelmux.Option{
		otelmux.WithTracerProvider(in.Tracing.TracerProvider()),
		otelmux.WithPropagators(in.Tracing.Propagator()),
	}
	primary.Use(otelmux.Middleware("server_primary", options...),
		candlelight.EchoFirstTraceNodeInfo(in.Tracing, false))

	audiencePath := fmt.Sprintf("/%s/audiences/{scope}", apiBase)
	primary.Handle(audiencePath+"/records", in.Handlers.Upload).Methods(http.MethodPost)
	primary.Handle(audiencePath+"/batches", in.Handlers.BatchList).Methods(http.MethodGet)
	primary.Handle(audiencePath+"/batches/{batchId}", in.Handlers.BatchStatus).Methods(http.MethodGet)

	ops := mux.NewRouter()
	ops.Handle("/health", httpaux.ConstantHandler{StatusCode: http.StatusOK}).Methods(http.MethodGet)
	ops.Handle("/metrics", promhttp.HandlerFor(in.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	startServer(in.LC, in.Logger, "primary",
		addressOrDefault(in.V, "servers.primary.address", defaultPrimaryAddress),
		in.PrimaryMetrics.Then(chain.Then(primary)))
	startServer(in.LC, in.Logger, "ops",
		addressOrDefault(in.V, "servers.ops.address", defaultOpsAddress),
		in.OpsMetrics.Then(ops))
}

func startServer(lc fx.Lifecycle, logger *zap.Logger, name, address string, handler http.Handler) {
	server := &http.Server{
		Addr:    address,
		Handler: handler,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			listener, err := net.Listen("tcp", address)
			if err != nil {
				return err
			}
			logger.Info("starting server", zap.String("server", name), zap.String("address", address))
			go func() {
				err := server.Serve(listener)
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server exited", zap.String("server", name), zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}

func addressOrDefault(v *viper.Viper, key, defaultAddress string) string {
	if address := v.GetString(key); address != "" {
		return address
	}
	return defaultAddress
}
