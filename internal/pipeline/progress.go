// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"go.uber.org/zap"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// ProgressSink receives progress events as stages advance. Implementations
// must tolerate being called from the runner's worker goroutines.
type ProgressSink interface {
	Publish(event types.ProgressEvent)
}

// LogSink publishes progress events to the logger.
type LogSink struct {
	Logger *zap.Logger
}

func (s *LogSink) Publish(event types.ProgressEvent) {
	s.Logger.Info("progress",
		zap.String("survey_id", event.SurveyID),
		zap.String("agent", string(event.Agent)),
		zap.Int("progress", event.Progress),
		zap.String("message", event.Message))
}
