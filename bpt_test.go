package bpt

import (
	"bytes"
	"flag"
	"testing"

	"tlog.app/go/tlog"
)

var flagv = flag.Bool("tlog-v", false, "log tree structural events")

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", bytes.TrimSuffix(p, []byte{'\n'}))

	return len(p), nil
}

func initLogger(t testing.TB) {
	if !*flagv {
		return
	}

	SetLogger(tlog.New(tlog.NewConsoleWriter(testWriter{t: t}, tlog.LstdFlags)))

	t.Cleanup(func() {
		SetLogger(nil)
	})
}
