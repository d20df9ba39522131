package transport

import (
	"fmt"
	"strings"

	"github.com/shamank/adama-sdk-go/pkg/apierr"
	"github.com/shamank/adama-sdk-go/pkg/model"
)

// CheckStatus fails with an *apierr.Error when resp is not 2xx. The error
// message is the envelope message if the body is one, the body text otherwise.
func CheckStatus(resp *Response) error {
	if resp.OK() {
		return nil
	}
	payload, _ := resp.JSON.(map[string]any)
	if msg, ok := payload["message"].(string); ok && msg != "" {
		return apierr.FromEnvelope(resp.StatusCode, payload)
	}
	msg := strings.TrimSpace(resp.Text())
	if msg == "" {
		msg = fmt.Sprintf("platform returned HTTP %d", resp.StatusCode)
	}
	return apierr.New(msg).WithPayload(payload).WithStatus(resp.StatusCode)
}

// Envelope checks the status code, parses the body as a platform envelope and
// fails unless the envelope reports success.
func Envelope(resp *Response) (*model.Envelope, error) {
	if err := CheckStatus(resp); err != nil {
		return nil, err
	}
	if resp.JSONErr != nil {
		return nil, apierr.Newf("unparsable platform response: %v", resp.JSONErr).WithStatus(resp.StatusCode)
	}
	env, err := model.DecodeEnvelope(resp.Body)
	if err != nil {
		return nil, apierr.Newf("unparsable platform response: %v", err).WithStatus(resp.StatusCode)
	}
	if !env.Success() {
		return nil, apierr.FromEnvelope(resp.StatusCode, env.Raw)
	}
	return env, nil
}
