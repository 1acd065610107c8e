package agent

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/papercomputeco/mealprep/pkg/sse"
)

// SnapshotFunc receives the full response text seen so far. Each call
// replaces the previous value.
type SnapshotFunc func(text string)

// ReadSnapshots consumes an agent SSE body and reports text snapshots.
//
// "[DONE]" frames are skipped. Frames that are not valid JSON are logged
// and skipped. An event carrying an error ends the read with a
// *ProtocolError. The returned text is the latest snapshot; a stream that
// ends without one yields ErrNoTextReceived.
//
// When tee is non-nil every raw byte read from r is copied to it.
func ReadSnapshots(r io.Reader, tee io.Writer, onSnapshot SnapshotFunc, log *slog.Logger) (string, error) {
	frames := sse.NewTeeReader(r, tee)

	var (
		latest string
		got    bool
	)
	for {
		f, err := frames.Next()
		if err != nil {
			return "", err
		}
		if f == nil {
			break
		}
		if f.IsDone() {
			continue
		}

		ev := &Event{}
		if err := json.Unmarshal([]byte(f.Data), ev); err != nil {
			log.Warn("skipping malformed agent frame", "error", err, "frame", f.Data)
			continue
		}

		if msg, failed := ev.Failure(); failed {
			return "", &ProtocolError{Message: msg}
		}

		text, ok := ev.SnapshotText()
		if !ok {
			continue
		}
		latest, got = text, true
		if onSnapshot != nil {
			onSnapshot(latest)
		}
	}

	if !got {
		return "", ErrNoTextReceived
	}
	return latest, nil
}
