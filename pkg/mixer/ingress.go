package mixer

import (
	"context"
	"fmt"
	log "github.com/echocat/slf4g"
	"github.com/gorilla/websocket"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const DefaultIngressReadLimit = 1 << 20

// NewWebsocketIngress creates a handler which accepts one websocket per
// participant. Register it with a pattern containing {identity}, like
// "/audio/{identity}". Every binary message is expected to be little endian
// s16 PCM in the shape configured for the mixer.
func NewWebsocketIngress(m *Mixer) *WebsocketIngress {
	return &WebsocketIngress{
		Mixer:     m,
		ReadLimit: DefaultIngressReadLimit,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

type WebsocketIngress struct {
	Mixer     *Mixer
	Upgrader  websocket.Upgrader
	ReadLimit int64
}

func (this *WebsocketIngress) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity := r.PathValue("identity")
	if identity == "" {
		identity = r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	}
	if identity == "" {
		http.Error(w, "missing source identity", http.StatusBadRequest)
		return
	}
	logger := log.With("source", identity)

	conn, err := this.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithError(err).
			Info("Cannot upgrade audio source connection.")
		return
	}
	if this.ReadLimit > 0 {
		conn.SetReadLimit(this.ReadLimit)
	}

	conf := this.Mixer.Configuration()
	src := &websocketSource{
		identity:   identity,
		conn:       conn,
		sampleRate: conf.SampleRate,
		channels:   conf.Channels,
	}
	if err := this.Mixer.Attach(identity, src); err != nil {
		logger.WithError(err).
			Warn("Audio source rejected.")
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()), time.Now().Add(2*time.Second))
		_ = src.Close()
	}
}

type websocketSource struct {
	identity   string
	conn       *websocket.Conn
	sampleRate int
	channels   int
	closeOnce  sync.Once
}

func (this *websocketSource) ReadFrame(ctx context.Context) (Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Frame{}, err
		}
		typ, data, err := this.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return Frame{}, io.EOF
			}
			return Frame{}, err
		}
		if typ != websocket.BinaryMessage {
			continue
		}
		f, err := FrameFromPCM(data, this.sampleRate, this.channels)
		if err != nil {
			log.With("source", this.identity).
				WithError(err).
				Debug("Malformed audio frame received. Ignoring...")
			continue
		}
		return f, nil
	}
}

func (this *websocketSource) Close() (rErr error) {
	this.closeOnce.Do(func() {
		rErr = this.conn.Close()
	})
	return rErr
}

// Pump writes every mixed frame as little endian s16 PCM to w until the
// mixer is closed or ctx is done.
func Pump(ctx context.Context, m *Mixer, w io.Writer) error {
	for {
		f, ok := m.Next(ctx)
		if !ok {
			return nil
		}
		if _, err := w.Write(f.PCM()); err != nil {
			return fmt.Errorf("cannot write mixed audio: %w", err)
		}
	}
}
