package config

import (
	"os"
	"strconv"
)

type Config struct {
	HTTPAddr    string
	MySQLDSN    string
	RedisAddr   string
	ServiceName string
	WorkerCount int
	QueueSize   int
}

func Load() Config {
	return Config{
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		MySQLDSN:    getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/bookstore?parseTime=true&multiStatements=true"),
		RedisAddr:   getenv("REDIS_ADDR", "localhost:6379"),
		ServiceName: getenv("SERVICE_NAME", "bookstore"),
		WorkerCount: getenvInt("WORKER_COUNT", 10),
		QueueSize:   getenvInt("QUEUE_SIZE", 1024),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
