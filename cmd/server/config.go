package main

import "time"

type Config struct {
	Host                      string        `env:"HOST,default=localhost"`
	Port                      int           `env:"PORT,default=8080"`
	LogLevel                  string        `env:"LOG_LEVEL,required=true"`
	BadgerFilepath            string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath             string        `env:"BLUGE_FILEPATH,required=true"`
	UploadDir                 string        `env:"UPLOAD_DIR,default=./uploads"`
	QueueSize                 int           `env:"QUEUE_SIZE,default=1024"`
	ConnectionBufferSize      int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	SinkTimeout               time.Duration `env:"SINK_TIMEOUT,default=1s"`
	DrainPeriod               time.Duration `env:"DRAIN_PERIOD,default=100ms"`
	IdleRoomTTL               time.Duration `env:"IDLE_ROOM_TTL,default=30m"`
	ReapInterval              time.Duration `env:"REAP_INTERVAL,default=1m"`
	HeartbeatInterval         time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`
	RestartInterval           time.Duration `env:"RESTART_INTERVAL,default=1s"`
	LimitMessages             *int          `env:"LIMIT_MESSAGES"`
	SearchLimit               int           `env:"SEARCH_LIMIT,default=20"`
	MaxContentLength          int           `env:"MAX_CONTENT_LENGTH,default=4096"`
	ModerationCharReplacement rune          `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
	JWTSecret                 string        `env:"JWT_SECRET,required=true"`
	AdminPasswordHash         string        `env:"ADMIN_PASSWORD_HASH,required=true"`
	AuthTokenDuration         time.Duration `env:"AUTH_TOKEN_DURATION,default=12h"`
}
