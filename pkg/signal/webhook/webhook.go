package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/common"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/credentials"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/signal"
	log "github.com/echocat/slf4g"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

var ErrNoUrl = errors.New("no webhook url configured")

// Webhook posts the agenda state as JSON to an URL whenever it changes.
type Webhook struct {
	conf         *Configuration
	saveConfFunc func() error
	mutex        sync.Mutex

	token     string
	lastState atomic.Pointer[state]

	client http.Client
}

// Update forgets the last posted state, so the next Ensure posts in any case.
func (this *Webhook) Update() error {
	this.lastState.Store(nil)
	return nil
}

func (this *Webhook) Ensure(ctx signal.Context) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	snapshot := ctx.Snapshot()
	target := state{
		timestamp: time.Now(),
		state:     ctx.State(),
		snapshot:  snapshot,
	}

	logger := log.With("url", this.conf.Url).
		With("state", target.state)

	if v := this.lastState.Load(); v != nil {
		if v.timestamp.Add(this.conf.DeadZoneInterval).After(target.timestamp) && v.isEqualTo(&target) {
			logger.Trace("Agenda state already posted (while dead zone timeout). No update needed.")
			return nil
		}
	}

	sReq := statePostRequest{
		State:     target.state,
		MeetingId: snapshot.MeetingID,
		Title:     snapshot.Title,
		Overtime:  snapshot.MeetingOvertime,
		Ended:     snapshot.Ended,
		Items:     []statePostItem{},
		Notes:     snapshot.Notes,
		Timestamp: snapshot.ServerNow,
	}
	for item, err := range ctx.Items() {
		if err != nil {
			return err
		}
		if item.State.IsRunning() {
			sReq.CurrentTopic = item.Topic
		}
		sReq.Items = append(sReq.Items, statePostItem{
			item.ID,
			item.Topic,
			item.State,
			item.DurationMinutes,
			item.ActualElapsed,
		})
	}

	sReqB, err := json.Marshal(sReq)
	if err != nil {
		return err
	}

	rsp, err := this.do(http.MethodPost, func(req *http.Request) error {
		req.Header.Set("Content-Type", "application/json")
		req.Body = io.NopCloser(bytes.NewReader(sReqB))
		req.ContentLength = int64(len(sReqB))
		return nil
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = rsp.Body.Close()
	}()
	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d - %s", rsp.StatusCode, rsp.Status)
	}

	logger.Debug("Agenda state posted.")
	this.lastState.Store(&target)

	return nil
}

func (this *Webhook) Initialize(conf *Configuration, saveConfFunc func() error) error {
	if conf.Url == "" {
		return ErrNoUrl
	}
	this.conf = conf
	this.saveConfFunc = saveConfFunc

	cred, err := this.loadCredentials()
	if err != nil {
		return err
	}
	this.token = cred.WebhookToken

	return nil
}

func (this *Webhook) loadCredentials() (credentials.Credentials, error) {
	var v credentials.Credentials
	if _, err := v.ReadFromStore(); err != nil {
		return credentials.Credentials{}, err
	}

	v.Merge(credentials.Credentials{WebhookToken: this.conf.Token})

	return v, nil
}

func (this *Webhook) storeCredentials(cred credentials.Credentials) error {
	supported, err := credentials.Update(func(v *credentials.Credentials) {
		v.WebhookToken = cred.WebhookToken
	})
	if err != nil {
		return err
	}
	if supported {
		return nil
	}

	this.conf.Token = cred.WebhookToken
	return this.saveConfFunc()
}

// resolveToken asks for a new token after the current one was rejected.
func (this *Webhook) resolveToken() (string, error) {
	if !this.conf.PromptForToken {
		return "", fmt.Errorf("webhook %s rejected the token", this.conf.Url)
	}

	log.With("url", this.conf.Url).
		Error("Webhook rejected the token.")

	var cred credentials.Credentials
	if err := common.RequestStringContentIfRequiredFromTerminal(&cred.WebhookToken, "webhook token", false, true); err != nil {
		return "", fmt.Errorf("cannot request token: %w", err)
	}
	if err := this.storeCredentials(cred); err != nil {
		return "", fmt.Errorf("cannot store credentials: %w", err)
	}
	return cred.WebhookToken, nil
}

func (this *Webhook) do(method string, cb ...func(req *http.Request) error) (rsp *http.Response, err error) {
	do := func() (*http.Response, error) {
		ctx, cancelFunc := context.WithTimeout(context.Background(), this.conf.Timeout)
		defer cancelFunc()

		req, err := http.NewRequestWithContext(ctx, method, this.conf.Url, nil)
		if err != nil {
			return nil, err
		}
		if this.token != "" {
			req.Header.Set("Authorization", "Bearer "+this.token)
		}
		for _, cbi := range cb {
			if err := cbi(req); err != nil {
				return nil, err
			}
		}

		rsp, err := this.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to access %v: %w", req.URL, err)
		}

		// The body has to be read before the timeout context is cancelled.
		b, err := io.ReadAll(rsp.Body)
		_ = rsp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response of %v: %w", req.URL, err)
		}
		rsp.Body = io.NopCloser(bytes.NewReader(b))
		return rsp, nil
	}

	for {
		rsp, err = do()
		if err != nil {
			return nil, err
		}

		switch rsp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			_ = rsp.Body.Close()
			if this.token, err = this.resolveToken(); err != nil {
				return nil, err
			}
		default:
			return rsp, nil
		}
	}
}

func (this *Webhook) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.client.CloseIdleConnections()
	this.lastState.Store(nil)
	return nil
}

func (this *Webhook) GetType() signal.Type {
	return signal.TypeWebhook
}
