/**
 * Copyright 2025 The adbridge Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/adbridge-io/adbridge/journal"
	"github.com/adbridge-io/adbridge/journal/db"
	"github.com/adbridge-io/adbridge/pipeline"
	"github.com/adbridge-io/adbridge/platform"
	"github.com/adbridge-io/adbridge/refnames"
	"github.com/adbridge-io/adbridge/upload"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/arrange"
	"github.com/xmidt-org/candlelight"
	"github.com/xmidt-org/sallust"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	applicationName = "adbridge"

	apiBase = "api/v1"
)

var (
	GitCommit = "undefined"
	Version   = "undefined"
	BuildTime = "undefined"
)

func main() {
	v, logger, err := setup(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	app := fx.New(
		arrange.LoggerFunc(logger.Sugar().Infof),
		fx.Supply(logger, v),
		provideMetrics(),
		provideServerMetrics(),
		db.Provide(),
		upload.ProvideHandlers(),
		fx.Provide(
			candlelight.New,
			newTracing,
			newJournalConfigs,
			newPlatformClient,
			newReferenceLookup,
			newPipeline,
			func(p *pipeline.Pipeline) upload.Processor { return p },
		),

		fx.Invoke(
			BuildRoutes,
		),
	)

	switch err := app.Err(); {
	case errors.Is(err, pflag.ErrHelp):
		return
	case err == nil:
		app.Run()
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func newTracing(v *viper.Viper) (candlelight.Config, error) {
	var config candlelight.Config
	err := v.UnmarshalKey("tracing", &config)
	if err != nil {
		return candlelight.Config{}, err
	}
	config.ApplicationName = applicationName
	return config, nil
}

func newJournalConfigs(v *viper.Viper) (db.Configs, error) {
	var configs db.Configs
	err := v.UnmarshalKey("journal", &configs)
	return configs, err
}

type platformClientIn struct {
	fx.In
	V        *viper.Viper
	Logger   *zap.Logger
	Measures platform.Measures
}

func newPlatformClient(in platformClientIn) (*platform.Client, error) {
	var config platform.ClientConfig
	if err := in.V.UnmarshalKey("platform", &config); err != nil {
		return nil, err
	}
	config.Logger = in.Logger
	measures := in.Measures
	return platform.NewClient(config, &measures, sallust.Get)
}

type referenceLookupIn struct {
	fx.In
	V      *viper.Viper
	Logger *zap.Logger
}

func newReferenceLookup(in referenceLookupIn) (refnames.Lookup, error) {
	var config refnames.ClientConfig
	if err := in.V.UnmarshalKey("references", &config); err != nil {
		return nil, err
	}
	config.Logger = in.Logger
	return refnames.NewClient(config, sallust.Get)
}

type pipelineIn struct {
	fx.In
	V        *viper.Viper
	Client   *platform.Client
	Lookup   refnames.Lookup
	Journal  journal.J
	Measures platform.Measures
}

func newPipeline(in pipelineIn) (*pipeline.Pipeline, error) {
	var config pipeline.Config
	if err := in.V.UnmarshalKey("pipeline", &config); err != nil {
		return nil, err
	}
	measures := in.Measures
	return pipeline.New(config, in.Client, in.Lookup, in.Journal, &measures, sallust.Get)
}
