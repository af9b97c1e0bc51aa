package log

import "go.uber.org/zap"

var (
	SourceCloudflare = zap.String("source", "cloudflare")
	SourceMongo      = zap.String("source", "mongodb")
	SourceSQL        = zap.String("source", "sql")
	SourceAPI        = zap.String("source", "api")
	SourceSSM        = zap.String("source", "ssm")
)
