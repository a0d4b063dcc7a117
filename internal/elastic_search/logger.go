package elastic_search

import "go.uber.org/zap"

// ElasticLogger adapts the elastic trace log to zap.
type ElasticLogger struct{}

func (l ElasticLogger) Printf(format string, v ...interface{}) {
	zap.S().Debugf(format, v...)
}
