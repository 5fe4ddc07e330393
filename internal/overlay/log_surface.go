package overlay

import "go.uber.org/zap"

// LogSurface writes boxes to the log instead of the screen
type LogSurface struct {
	logger *zap.SugaredLogger
}

// NewLogSurface creates a surface for headless runs
func NewLogSurface(logger *zap.SugaredLogger) *LogSurface {
	return &LogSurface{logger: logger}
}

func (s *LogSurface) Draw(boxes []Box) error {
	for _, box := range boxes {
		s.logger.Infow("overlay",
			"rect", box.Rect.String(),
			"text", box.Text,
			"placeholder", box.Placeholder,
		)
	}
	return nil
}

func (s *LogSurface) Clear() error {
	s.logger.Debugw("overlay cleared")
	return nil
}
