package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/facilitator"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/mixer"
	log "github.com/echocat/slf4g"
	"io"
	"net/http"
	"strings"
)

const maxRequestBody = 64 << 10

// server exposes the facilitator to the meeting room: participants stream
// audio to /audio/{identity}, the speech-to-text side posts to /transcript
// and the host UI uses the remaining endpoints.
type server struct {
	facilitator *facilitator.Facilitator
	metrics     *metrics
	mux         *http.ServeMux
}

func newServer(f *facilitator.Facilitator, m *mixer.Mixer) *server {
	result := &server{
		facilitator: f,
		metrics:     newMetrics(f, m),
		mux:         http.NewServeMux(),
	}
	result.mux.Handle("/audio/{identity}", mixer.NewWebsocketIngress(m))
	result.mux.HandleFunc("GET /agenda", result.handleAgenda)
	result.mux.HandleFunc("GET /time", result.handleTime)
	result.mux.HandleFunc("POST /transcript", result.handleTranscript)
	result.mux.HandleFunc("POST /ask", result.handleAsk)
	result.mux.HandleFunc("POST /commands/{command}", result.handleCommand)
	result.mux.Handle("GET /metrics", result.metrics.Handler())
	return result
}

func (this *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	this.mux.ServeHTTP(w, r)
}

func (this *server) handleAgenda(w http.ResponseWriter, _ *http.Request) {
	this.respond(w, http.StatusOK, this.facilitator.Snapshot())
}

type timeResponse struct {
	agenda.TimeStatus
	Text string `json:"text"`
}

func (this *server) handleTime(w http.ResponseWriter, _ *http.Request) {
	status := this.facilitator.TimeStatus()
	this.respond(w, http.StatusOK, timeResponse{status, facilitator.FormatTimeStatus(status)})
}

func (this *server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	var ev facilitator.TranscriptEvent
	if err := this.decode(r, &ev); err != nil {
		this.fail(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(ev.Text) == "" {
		this.fail(w, http.StatusBadRequest, errors.New("text is required"))
		return
	}
	this.facilitator.HandleTranscript(ev)
	w.WriteHeader(http.StatusAccepted)
}

type askRequest struct {
	Asker    string `json:"asker"`
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

func (this *server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := this.decode(r, &req); err != nil {
		this.fail(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		this.fail(w, http.StatusBadRequest, errors.New("question is required"))
		return
	}
	if req.Asker == "" {
		req.Asker = "host"
	}
	this.respond(w, http.StatusOK, askResponse{this.facilitator.Ask(req.Asker, req.Question)})
}

func (this *server) handleCommand(w http.ResponseWriter, r *http.Request) {
	command := r.PathValue("command")
	status, err := this.execute(command, r)
	if status == http.StatusNotFound {
		command = "unknown"
	}
	this.metrics.command(command, status)
	if err != nil {
		this.fail(w, status, err)
		return
	}

	log.With("command", command).
		Debug("Command executed.")
	this.respond(w, status, this.facilitator.Snapshot())
}

func (this *server) execute(command string, r *http.Request) (int, error) {
	switch command {
	case "skip":
		if !this.facilitator.Skip() {
			return http.StatusConflict, errors.New("there is no item to skip")
		}
	case "extend":
		if !this.facilitator.Extend() {
			return http.StatusConflict, errors.New("there is no item to extend")
		}
	case "style":
		var style agenda.Style
		if err := style.Set(r.URL.Query().Get("value")); err != nil {
			return http.StatusBadRequest, fmt.Errorf("%w; possible values: %v", err, agenda.AllStyles)
		}
		this.facilitator.SetStyle(style)
	case "quiet":
		this.facilitator.RequestSilence()
	case "end":
		this.facilitator.End()
	default:
		return http.StatusNotFound, fmt.Errorf("unknown command: %s", command)
	}
	return http.StatusOK, nil
}

func (this *server) decode(r *http.Request, target any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("malformed request: %w", err)
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func (this *server) fail(w http.ResponseWriter, status int, err error) {
	this.respond(w, status, errorResponse{err.Error()})
}

func (this *server) respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).
			Debug("Cannot write response.")
	}
}
