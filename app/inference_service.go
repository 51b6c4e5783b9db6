package app

import (
	"context"

	"gobrix/internal/inference"
)

// InferredPrediction pairs the resolution outcome with a prediction when one was possible.
type InferredPrediction struct {
	Inference  inference.Inference `json:"inference"`
	Prediction *Prediction         `json:"prediction,omitempty"`
}

// InferenceService predicts from shelf-level signals.
type InferenceService struct {
	bridge      *inference.Bridge
	predictions *PredictionService
}

// NewInferenceService wires the service.
func NewInferenceService(bridge *inference.Bridge, predictions *PredictionService) *InferenceService {
	return &InferenceService{bridge: bridge, predictions: predictions}
}

// Infer resolves signals and predicts when enough was resolved. Missing data
// is reported through Inference, never as an error.
func (s *InferenceService) Infer(ctx context.Context, signals inference.Signals) (*InferredPrediction, error) {
	inf := s.bridge.Infer(signals)
	out := &InferredPrediction{Inference: inf}
	if !inf.CanPredict {
		return out, nil
	}
	p, err := s.predictions.Predict(ctx, *inf.Input)
	if err != nil {
		return nil, err
	}
	out.Prediction = p
	return out, nil
}
