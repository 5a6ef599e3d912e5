// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package timeseries

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite/types"

	"github.com/adrianomelo/lynx/internal/config"
	"github.com/adrianomelo/lynx/internal/models"
)

// Timestream dimension names.
const (
	DimensionCountry       = "country"
	DimensionReferer       = "referer"
	DimensionUserAgentName = "userAgentName"
	DimensionID            = "id"
)

// recordWriter is the subset of *timestreamwrite.Client used here.
type recordWriter interface {
	WriteRecords(ctx context.Context, params *timestreamwrite.WriteRecordsInput, optFns ...func(*timestreamwrite.Options)) (*timestreamwrite.WriteRecordsOutput, error)
}

// TimestreamWriter writes one record per event to Amazon Timestream.
type TimestreamWriter struct {
	client      recordWriter
	database    string
	table       string
	measureName string
	closed      atomic.Bool
}

// NewTimestreamWriter loads AWS credentials from the default chain and
// builds a client with the configured retry budget, timeout and pool size.
func NewTimestreamWriter(ctx context.Context, cfg *config.TimestreamConfig) (*TimestreamWriter, error) {
	httpClient := awshttp.NewBuildableClient().
		WithTimeout(cfg.RequestTimeout).
		WithTransportOptions(func(tr *http.Transport) {
			tr.MaxConnsPerHost = cfg.MaxConnections
			tr.MaxIdleConns = cfg.MaxConnections
			tr.MaxIdleConnsPerHost = cfg.MaxConnections
		})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithHTTPClient(httpClient),
		awsconfig.WithRetryMaxAttempts(cfg.MaxRetries+1),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var opts []func(*timestreamwrite.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *timestreamwrite.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return newTimestreamWriter(timestreamwrite.NewFromConfig(awsCfg, opts...), cfg), nil
}

func newTimestreamWriter(client recordWriter, cfg *config.TimestreamConfig) *TimestreamWriter {
	measure := cfg.MeasureName
	if measure == "" {
		measure = models.MeasurePageView
	}
	return &TimestreamWriter{
		client:      client,
		database:    cfg.Database,
		table:       cfg.Table,
		measureName: measure,
	}
}

func (w *TimestreamWriter) Name() string {
	return config.BackendTimestream
}

// Write sends a single record. Retries happen inside the SDK.
func (w *TimestreamWriter) Write(ctx context.Context, event *models.TrackingEvent) error {
	if w.closed.Load() {
		return ErrWriterClosed
	}

	_, err := w.client.WriteRecords(ctx, &timestreamwrite.WriteRecordsInput{
		DatabaseName: aws.String(w.database),
		TableName:    aws.String(w.table),
		Records:      []types.Record{buildRecord(w.measureName, event)},
	})
	if err != nil {
		return fmt.Errorf("timestream write %s.%s: %w", w.database, w.table, err)
	}
	return nil
}

// Close marks the writer closed. The SDK client holds no resources that need releasing.
func (w *TimestreamWriter) Close() error {
	w.closed.Store(true)
	return nil
}

// buildRecord renders the page-view record: four dimensions, a boolean
// "true" measure and a millisecond timestamp.
func buildRecord(measureName string, event *models.TrackingEvent) types.Record {
	return types.Record{
		Dimensions: []types.Dimension{
			{Name: aws.String(DimensionCountry), Value: aws.String(orUnknown(event.Country))},
			{Name: aws.String(DimensionReferer), Value: aws.String(orUnknown(event.Referer))},
			{Name: aws.String(DimensionUserAgentName), Value: aws.String(event.UserAgent.Name())},
			{Name: aws.String(DimensionID), Value: aws.String(event.ID.String())},
		},
		MeasureName:      aws.String(measureName),
		MeasureValue:     aws.String("true"),
		MeasureValueType: types.MeasureValueTypeBoolean,
		Time:             aws.String(strconv.FormatInt(event.TimestampMillis(), 10)),
		TimeUnit:         types.TimeUnitMilliseconds,
	}
}

// orUnknown keeps empty strings out of dimensions; Timestream rejects empty dimension values.
func orUnknown(v string) string {
	if v == "" {
		return models.Unknown
	}
	return v
}
