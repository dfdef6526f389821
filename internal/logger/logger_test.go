package logger_test

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/kernelio/fskit/internal/logger"
	"github.com/stretchr/testify/assert"
)

func fetchOutputAtLevel(t *testing.T, level logger.Level, format logger.Format, fns []func(*logger.Logger)) []string {
	t.Helper()
	var buf bytes.Buffer
	l := logger.New(&buf, level, format)

	var out []string
	for _, fn := range fns {
		fn(l)
		out = append(out, buf.String())
		buf.Reset()
	}
	return out
}

func TestSeverityThreshold(t *testing.T) {
	fns := []func(*logger.Logger){
		func(l *logger.Logger) { l.Tracef("www.traceExample.com") },
		func(l *logger.Logger) { l.Debugf("www.debugExample.com") },
		func(l *logger.Logger) { l.Infof("www.infoExample.com") },
		func(l *logger.Logger) { l.Warnf("www.warningExample.com") },
		func(l *logger.Logger) { l.Errorf("www.errorExample.com") },
	}

	out := fetchOutputAtLevel(t, logger.LevelWarning, logger.Text, fns)

	assert.Empty(t, out[0], "TRACE below WARNING threshold must be suppressed")
	assert.Empty(t, out[1], "DEBUG below WARNING threshold must be suppressed")
	assert.Empty(t, out[2], "INFO below WARNING threshold must be suppressed")
	assert.Regexp(t, regexp.MustCompile(`severity=WARNING`), out[3])
	assert.Regexp(t, regexp.MustCompile(`severity=ERROR`), out[4])
}

func TestTraceBelowDebug(t *testing.T) {
	out := fetchOutputAtLevel(t, logger.LevelTrace, logger.Text, []func(*logger.Logger){
		func(l *logger.Logger) { l.Tracef("hi") },
	})
	assert.Regexp(t, regexp.MustCompile(`severity=TRACE`), out[0])
}

func TestJSONFormat(t *testing.T) {
	out := fetchOutputAtLevel(t, logger.LevelInfo, logger.JSON, []func(*logger.Logger){
		func(l *logger.Logger) { l.Infof("hello %s", "world") },
	})
	assert.Contains(t, out[0], `"message":"hello world"`)
	assert.Contains(t, out[0], `"severity":"INFO"`)
}

func TestSetDefaultRedirectsPackageLevelCalls(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.Default()
	defer logger.SetDefault(prev)

	logger.SetDefault(logger.New(&buf, logger.LevelInfo, logger.Text))
	logger.Infof("redirected")

	assert.Contains(t, buf.String(), "redirected")
}
