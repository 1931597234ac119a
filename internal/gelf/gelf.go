// Package gelf forwards std log output to a Graylog GELF UDP input.
package gelf

import (
	"encoding/json"
	"net"
	"os"
	"strings"
	"time"
)

// Syslog levels used by GELF.
const (
	LevelError   = 3
	LevelWarning = 4
	LevelInfo    = 6
)

type message struct {
	Version      string  `json:"version"`
	Host         string  `json:"host"`
	ShortMessage string  `json:"short_message"`
	Timestamp    float64 `json:"timestamp"`
	Level        int     `json:"level"`
	Service      string  `json:"_service"`
}

// Writer sends one GELF message per Write call. Use it with
// log.SetOutput(io.MultiWriter(os.Stderr, w)).
type Writer struct {
	conn     net.Conn
	hostname string
	service  string
}

func New(addr, service string) (*Writer, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = service
	}

	return &Writer{conn: conn, hostname: hostname, service: service}, nil
}

// stripLogPrefix removes the "2006/01/02 15:04:05 " prefix of the std logger.
func stripLogPrefix(msg string) string {
	if len(msg) > 20 && msg[4] == '/' && msg[7] == '/' && msg[10] == ' ' && msg[13] == ':' && msg[19] == ' ' {
		return msg[20:]
	}
	return msg
}

func levelOf(msg string) int {
	switch {
	case strings.HasPrefix(msg, "[ERROR]"), strings.Contains(msg, "PANIC:"), strings.Contains(msg, "Fatal"):
		return LevelError
	case strings.HasPrefix(msg, "Warning:"):
		return LevelWarning
	}
	return LevelInfo
}

// Write never fails the log call; delivery is fire-and-forget.
func (w *Writer) Write(p []byte) (int, error) {
	short := stripLogPrefix(strings.TrimRight(string(p), "\n"))
	payload, err := json.Marshal(message{
		Version:      "1.1",
		Host:         w.hostname,
		ShortMessage: short,
		Timestamp:    float64(time.Now().UnixNano()) / 1e9,
		Level:        levelOf(short),
		Service:      w.service,
	})
	if err == nil {
		w.conn.Write(payload)
	}
	return len(p), nil
}

func (w *Writer) Close() error {
	return w.conn.Close()
}
