// Package export hands build results to the architect.
//
// Each export opens a fresh channel named "export:<uuid>" and sends a
// [Payload] holding the generation seed and the flattened materials. The
// architect answers on the same channel with [Update]s until it reports
// completion or failure.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/worksite/pkg/builder"
	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/observability"
	"github.com/matzehuels/worksite/pkg/random"
)

// ErrRejected is returned when the architect reports a failure.
var ErrRejected = errors.New("export rejected by architect")

// Payload is the message sent when a channel opens. Seed is the raw seed
// value; the receiver re-seeds from it.
type Payload struct {
	Seed   int64           `json:"seed"`
	Result json.RawMessage `json:"result"`
}

// NewPayload builds the payload for one flattened build.
func NewPayload(seed random.Seed, flat *builder.FlatResult) (Payload, error) {
	materials, err := flat.MaterialsToJSON()
	if err != nil {
		return Payload{}, err
	}
	return Payload{Seed: seed.Value(), Result: materials}, nil
}

// Update is a progress message from the architect.
type Update struct {
	Done bool   `json:"isDone,omitempty"`
	Fail string `json:"fail,omitempty"`
}

// Final reports whether no more updates follow.
func (u Update) Final() bool { return u.Done || u.Fail != "" }

// Channel delivers a payload on a named channel. Open blocks until the
// architect sends a final update or ctx ends. onUpdate sees every update,
// the final one included.
type Channel interface {
	Open(ctx context.Context, name string, p Payload, onUpdate func(Update)) error
}

// Exporter opens channels on a transport.
type Exporter struct {
	Channel Channel
	Logger  *log.Logger
}

// New returns an exporter. A nil logger discards output.
func New(ch Channel, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Exporter{Channel: ch, Logger: logger}
}

// ChannelName returns a fresh export channel name.
func ChannelName() string {
	return "export:" + uuid.NewString()
}

// Export sends p and waits for the architect. It returns the channel name
// used. A failure reported by the architect wraps ErrRejected.
func (e *Exporter) Export(ctx context.Context, p Payload, onUpdate func(Update)) (string, error) {
	name := ChannelName()
	logger := e.Logger.With("channel", name)
	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, name)
	start := time.Now()

	var final Update
	err := e.Channel.Open(ctx, name, p, func(u Update) {
		if u.Final() {
			final = u
		}
		logger.Debug("architect update", "done", u.Done, "fail", u.Fail)
		if onUpdate != nil {
			onUpdate(u)
		}
	})
	if err == nil && final.Fail != "" {
		err = werrors.Wrap(werrors.ErrCodeInternal, ErrRejected, "%s", final.Fail)
	}
	hooks.OnExportComplete(ctx, name, len(p.Result), time.Since(start), err)
	if err != nil {
		logger.Error("export failed", "err", err)
		return name, err
	}
	logger.Info("exported", "seed", p.Seed, "bytes", len(p.Result), "duration", time.Since(start))
	return name, nil
}
