package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSession(t *testing.T) {
	m := New()

	m.RecordSessionStarted()
	m.RecordSessionStarted()
	if got := testutil.ToFloat64(m.ActiveSessions); got != 2 {
		t.Errorf("active sessions = %v, want 2", got)
	}

	m.RecordCapture("timeout", 3*time.Second)
	m.RecordCapture("manual", time.Second)
	m.RecordCapture("timeout", 2*time.Second)
	m.RecordSessionDone()

	if got := testutil.ToFloat64(m.SessionsStarted); got != 2 {
		t.Errorf("sessions started = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SessionsFinished.WithLabelValues("timeout")); got != 2 {
		t.Errorf("timeout sessions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ActiveSessions); got != 1 {
		t.Errorf("active sessions = %v, want 1", got)
	}
}

func TestRecordStage(t *testing.T) {
	m := New()

	m.RecordStage(StageTranscribe, 200*time.Millisecond, nil)
	m.RecordStage(StageTranscribe, time.Second, errors.New("boom"))
	m.RecordStage(StageTranslate, time.Second, nil)

	if got := testutil.ToFloat64(m.StageFailures.WithLabelValues(StageTranscribe)); got != 1 {
		t.Errorf("transcribe failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.StageFailures.WithLabelValues(StageTranslate)); got != 0 {
		t.Errorf("translate failures = %v, want 0", got)
	}
	if got := testutil.CollectAndCount(m.StageDuration); got != 2 {
		t.Errorf("stage duration series = %d, want 2", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.RecordSessionStarted()
	m.RecordCapture("manual", time.Second)
	m.RecordStage(StageSave, time.Second, errors.New("x"))
	m.RecordSessionDone()
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordSessionStarted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "aslbridge_sessions_started_total 1") {
		t.Errorf("metrics output missing sessions counter:\n%s", body)
	}
}
