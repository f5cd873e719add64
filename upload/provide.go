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

package upload

import (
	"net/http"

	"github.com/adbridge-io/adbridge/journal"
	kithttp "github.com/go-kit/kit/transport/http"
	"go.uber.org/fx"
)

type Handler http.Handler

type uploadHandlerIn struct {
	fx.In
	Processor Processor
}

type journalHandlerIn struct {
	fx.In
	Journal journal.J
}

// ProvideHandlers fetches all dependencies and builds the main handlers for
// the upload service.
func ProvideHandlers() fx.Option {
	return fx.Provide(
		fx.Annotated{
			Name:   "upload_handler",
			Target: newUploadHandler,
		},
		fx.Annotated{
			Name:   "batch_status_handler",
			Target: newBatchStatusHandler,
		},
		fx.Annotated{
			Name:   "batch_list_handler",
			Target: newBatchListHandler,
		},
	)
}

func newUploadHandler(in uploadHandlerIn) Handler {
	return kithttp.NewServer(
		newUploadEndpoint(in.Processor),
		decodeUploadRequest,
		encodeUploadResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

func newBatchStatusHandler(in journalHandlerIn) Handler {
	return kithttp.NewServer(
		newBatchStatusEndpoint(in.Journal),
		decodeBatchStatusRequest,
		encodeBatchStatusResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

func newBatchListHandler(in journalHandlerIn) Handler {
	return kithttp.NewServer(
		newBatchListEndpoint(in.Journal),
		decodeBatchListRequest,
		encodeBatchListResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}
