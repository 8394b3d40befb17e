package credentials

import (
	"encoding/json"
)

const appName = "github.com/OccupiedPorcupine/beat-your-meet"

// Credentials are the secrets of all remote systems. Where the platform
// offers a credential store they are kept there instead of the configuration
// file.
type Credentials struct {
	OracleApiKey string `json:"oracle_apiKey,omitempty"`

	HueBridge string `json:"hue_bridge,omitempty"`
	HueUser   string `json:"hue_user,omitempty"`

	WebhookToken string `json:"webhook_token,omitempty"`
}

func (this *Credentials) IsZero() bool {
	return this.IsOracleZero() && this.IsHueZero() && this.IsWebhookZero()
}

func (this *Credentials) IsOracleZero() bool {
	return this.OracleApiKey == ""
}

func (this *Credentials) IsHueZero() bool {
	return this.HueBridge == "" && this.HueUser == ""
}

func (this *Credentials) IsWebhookZero() bool {
	return this.WebhookToken == ""
}

// Merge takes every field of o which is not set at this.
func (this *Credentials) Merge(o Credentials) {
	if this.OracleApiKey == "" {
		this.OracleApiKey = o.OracleApiKey
	}
	if this.HueBridge == "" {
		this.HueBridge = o.HueBridge
	}
	if this.HueUser == "" {
		this.HueUser = o.HueUser
	}
	if this.WebhookToken == "" {
		this.WebhookToken = o.WebhookToken
	}
}

func (this *Credentials) MarshalBinary() (data []byte, err error) {
	return json.Marshal(this)
}

func (this *Credentials) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, this)
}

// Update reads the stored credentials, applies modifier and writes them back.
// It reports false if the platform has no credential store.
func Update(modifier func(*Credentials)) (supported bool, err error) {
	var v Credentials
	if supported, err = v.ReadFromStore(); err != nil || !supported {
		return supported, err
	}
	modifier(&v)
	return v.WriteToStore()
}
