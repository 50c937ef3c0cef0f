// Package logger configures the process-wide logrus logger.
package logger

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"
)

// PlainFormatter renders "LEVEL timestamp message key=value..." lines.
type PlainFormatter struct {
	TimestampFormat string
}

var levelDesc = map[log.Level]string{
	log.PanicLevel: "PANIC",
	log.FatalLevel: "FATAL",
	log.ErrorLevel: "ERROR",
	log.WarnLevel:  "WARN ",
	log.InfoLevel:  "INFO ",
	log.DebugLevel: "DEBUG",
	log.TraceLevel: "TRACE",
}

func (f PlainFormatter) Format(entry *log.Entry) ([]byte, error) {
	var b strings.Builder
	b.WriteString(levelDesc[entry.Level])
	b.WriteByte(' ')
	b.WriteString(entry.Time.Format(f.TimestampFormat))
	b.WriteByte(' ')
	b.WriteString(entry.Message)
	for _, k := range slices.Sorted(maps.Keys(entry.Data)) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// Setup points the standard logger at out with the plain formatter and the
// given level. An unknown level falls back to info.
func Setup(level string, out io.Writer) error {
	std := log.StandardLogger()
	std.SetOutput(out)
	std.SetFormatter(PlainFormatter{TimestampFormat: "2006-01-02 15:04:05"})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		std.SetLevel(log.InfoLevel)
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	std.SetLevel(lvl)
	return nil
}
