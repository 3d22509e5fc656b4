package model

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"StockSense/internal/domain/models"
	domsvc "StockSense/internal/domain/service"
	"StockSense/internal/service/metrics"
)

type predictRequest struct {
	Instances [][][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
}

type statusResponse struct {
	ModelVersionStatus []struct {
		Version string `json:"version"`
		State   string `json:"state"`
	} `json:"model_version_status"`
}

// ServingModel calls a TensorFlow Serving style REST endpoint:
// POST {base}/v1/models/{name}:predict with {"instances": batch}.
type ServingModel struct {
	base    *HTTPServiceBase
	name    string
	retries int
}

// NewServingModel builds the client. retries is the number of extra attempts
// on transient failures.
func NewServingModel(baseURL, name string, timeout time.Duration, retries int) *ServingModel {
	return &ServingModel{
		base:    NewHTTPServiceBase(baseURL, timeout),
		name:    name,
		retries: retries,
	}
}

// Predict returns one row per batch entry.
func (m *ServingModel) Predict(ctx context.Context, batch [][][]float64) (out [][]float64, err error) {
	start := time.Now()
	defer func() { metrics.Observe("model", "predict", start, err) }()

	var resp predictResponse
	path := "/v1/models/" + url.PathEscape(m.name) + ":predict"
	if err := m.base.PostJSONWithRetry(ctx, path, predictRequest{Instances: batch}, &resp, m.retries+1); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrUpstreamService, err)
	}
	if len(resp.Predictions) != len(batch) {
		return nil, fmt.Errorf("%w: model returned %d predictions for %d instances",
			models.ErrUpstreamService, len(resp.Predictions), len(batch))
	}
	return resp.Predictions, nil
}

// Health reports whether the served model has a version in state AVAILABLE.
func (m *ServingModel) Health(ctx context.Context) error {
	var resp statusResponse
	if err := m.base.GetJSON(ctx, "/v1/models/"+url.PathEscape(m.name), &resp); err != nil {
		return err
	}
	for _, v := range resp.ModelVersionStatus {
		if v.State == "AVAILABLE" {
			return nil
		}
	}
	return fmt.Errorf("model %s has no available version", m.name)
}

var _ domsvc.SequenceModel = (*ServingModel)(nil)
