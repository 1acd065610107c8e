package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mealprep/pkg/logger"
)

// records decodes newline-delimited JSON log output.
func records(buf *bytes.Buffer) []map[string]any {
	GinkgoHelper()
	var out []map[string]any
	for line := range strings.Lines(buf.String()) {
		var rec map[string]any
		Expect(json.Unmarshal([]byte(line), &rec)).To(Succeed())
		out = append(out, rec)
	}
	return out
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("disk full")
}

var _ = Describe("New", func() {
	var buf bytes.Buffer

	BeforeEach(func() {
		buf.Reset()
	})

	It("writes text records at Info by default", func() {
		l := logger.New(logger.WithWriter(&buf))
		l.Debug("hidden")
		l.Info("plan stored", "plan_id", 7)

		Expect(buf.String()).NotTo(ContainSubstring("hidden"))
		Expect(buf.String()).To(ContainSubstring("plan stored"))
		Expect(buf.String()).To(ContainSubstring("plan_id=7"))
	})

	It("enables debug records with WithDebug", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithDebug(true))
		l.Debug("snapshot skipped")

		Expect(buf.String()).To(ContainSubstring("snapshot skipped"))
	})

	It("honors an explicit level", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithLevel(slog.LevelWarn))
		l.Info("quiet")
		l.Warn("loud")

		Expect(buf.String()).NotTo(ContainSubstring("quiet"))
		Expect(buf.String()).To(ContainSubstring("loud"))
	})

	It("writes JSON records", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
		l.Info("agent session created", "session_id", "s-1")

		recs := records(&buf)
		Expect(recs).To(HaveLen(1))
		Expect(recs[0]).To(HaveKeyWithValue("msg", "agent session created"))
		Expect(recs[0]).To(HaveKeyWithValue("session_id", "s-1"))
	})

	It("tags JSON records with the component", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithComponent("serve"))
		l.WithGroup("request").Info("handled", "path", "/api/chat")

		recs := records(&buf)
		Expect(recs[0]).To(HaveKeyWithValue("component", "serve"))
		Expect(recs[0]).To(HaveKeyWithValue("request", HaveKeyWithValue("path", "/api/chat")))
	})

	It("prefers the pretty handler over JSON", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true), logger.WithJSON(true), logger.WithComponent("chat"))
		l.Info("pretty output")

		Expect(buf.String()).To(ContainSubstring("pretty output"))
		Expect(buf.String()).To(ContainSubstring("chat"))
		Expect(buf.String()).NotTo(HavePrefix("{"))
	})

	It("writes to every writer", func() {
		var other bytes.Buffer
		l := logger.New(logger.WithWriters(&buf, &other))
		l.Info("twice")

		Expect(buf.String()).To(ContainSubstring("twice"))
		Expect(other.String()).To(ContainSubstring("twice"))
	})
})

var _ = Describe("OpenFile", func() {
	It("appends JSON records to the file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "mealprep.log")

		for _, msg := range []string{"first", "second"} {
			l, closer, err := logger.OpenFile(path, logger.WithComponent("serve"))
			Expect(err).NotTo(HaveOccurred())
			l.Info(msg)
			Expect(closer.Close()).To(Succeed())
		}

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		recs := records(bytes.NewBuffer(data))
		Expect(recs).To(HaveLen(2))
		Expect(recs[0]).To(HaveKeyWithValue("msg", "first"))
		Expect(recs[1]).To(HaveKeyWithValue("msg", "second"))
		Expect(recs[1]).To(HaveKeyWithValue("component", "serve"))
	})

	It("fails for an unwritable path", func() {
		_, _, err := logger.OpenFile(filepath.Join(GinkgoT().TempDir(), "missing", "mealprep.log"))
		Expect(err).To(MatchError(ContainSubstring("opening log file")))
	})
})

var _ = Describe("Nop", func() {
	It("is disabled at every level", func() {
		l := logger.Nop()
		for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelError} {
			Expect(l.Handler().Enabled(context.Background(), level)).To(BeFalse())
		}
		Expect(func() {
			l.With("key", "value").WithGroup("g").Error("msg")
		}).NotTo(Panic())
	})
})

var _ = Describe("Multi", func() {
	var text, js bytes.Buffer

	BeforeEach(func() {
		text.Reset()
		js.Reset()
	})

	It("sends records to every logger", func() {
		multi := logger.Multi(
			logger.New(logger.WithWriter(&text)),
			logger.New(logger.WithWriter(&js), logger.WithJSON(true)),
		)
		multi.With("session_id", "s-1").Info("reply recorded")

		Expect(text.String()).To(ContainSubstring("reply recorded"))
		Expect(records(&js)[0]).To(HaveKeyWithValue("session_id", "s-1"))
	})

	It("respects each logger's level", func() {
		multi := logger.Multi(
			logger.New(logger.WithWriter(&text)),
			logger.New(logger.WithWriter(&js), logger.WithJSON(true), logger.WithDebug(true)),
		)
		multi.Debug("detail")

		Expect(text.String()).To(BeEmpty())
		Expect(records(&js)).To(HaveLen(1))
	})

	It("nests groups in every logger", func() {
		multi := logger.Multi(logger.New(logger.WithWriter(&js), logger.WithJSON(true)))
		multi.WithGroup("plan").Info("stored", "id", 3)

		Expect(records(&js)[0]).To(HaveKeyWithValue("plan", HaveKeyWithValue("id", BeNumerically("==", 3))))
	})

	It("skips nil loggers", func() {
		multi := logger.Multi(nil, logger.New(logger.WithWriter(&text)))
		multi.Info("still works")

		Expect(text.String()).To(ContainSubstring("still works"))
	})

	It("reports handler errors after writing to the others", func() {
		failing := slog.New(failingHandler{slog.NewTextHandler(&bytes.Buffer{}, nil)})
		h := logger.Multi(failing, logger.New(logger.WithWriter(&text))).Handler()

		r := slog.NewRecord(time.Now(), slog.LevelInfo, "written anyway", 0)
		Expect(h.Handle(context.Background(), r)).To(MatchError("disk full"))
		Expect(text.String()).To(ContainSubstring("written anyway"))
	})
})
