// Package model defines the data structures exchanged with the platform: the
// JSON response envelope, namespace and service descriptive info, the service
// metadata descriptor found in source trees, and registration state. These
// structs mirror the JSON documents returned by the platform API.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// StatusSuccess is the envelope status of every successful platform response.
const StatusSuccess = "success"

// DefaultVersion is the version selected on a service handle until the
// caller picks another one.
const DefaultVersion = "0.1"

// Service types whose endpoints answer with a JSON envelope.
const (
	TypeQuery     = "query"
	TypeMapFilter = "map_filter"
)

// ReturnsJSON reports whether endpoints of a service of the given type answer
// with a JSON envelope whose result should be unwrapped.
func ReturnsJSON(serviceType string) bool {
	return serviceType == TypeQuery || serviceType == TypeMapFilter
}

// Envelope is the JSON wrapper around every platform response:
// {"status": "success", "result": ...} or {"status": "...", "message": "..."}.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	// Raw is the whole decoded envelope, kept as error payload.
	Raw map[string]any `json:"-"`
}

// Success reports whether the envelope status is "success".
func (e *Envelope) Success() bool {
	return e.Status == StatusSuccess
}

// DecodeEnvelope parses body as a platform envelope. It fails when body is
// not a JSON object.
func DecodeEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	if err := json.Unmarshal(body, &env.Raw); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	return &env, nil
}

// NamespaceRef is an entry of the namespace listing.
type NamespaceRef struct {
	Name string `json:"name"`
}

// ServiceRef is an entry of the service listing.
type ServiceRef struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// UnmarshalJSON accepts versions encoded as strings or numbers.
func (r *ServiceRef) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Name = stringField(raw, "name")
	r.Version = stringField(raw, "version")
	return nil
}

// NamespaceInfo is the descriptive info of a namespace (GET /{ns}).
// Keys the SDK does not model are kept in Raw.
type NamespaceInfo struct {
	Name        string
	URL         string
	Description string
	Raw         map[string]any
}

// UnmarshalJSON decodes the known keys and keeps everything in Raw.
func (n *NamespaceInfo) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.Raw = raw
	n.Name = stringField(raw, "name")
	n.URL = stringField(raw, "url")
	n.Description = stringField(raw, "description")
	return nil
}

// ServiceInfo is the descriptive info of a registered service
// (result.service of GET /{ns}/{svc}_v{version}).
type ServiceInfo struct {
	Name        string
	Version     string
	Type        string
	Description string
	URL         string
	Raw         map[string]any
}

// UnmarshalJSON decodes the known keys and keeps everything in Raw.
func (s *ServiceInfo) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Raw = raw
	s.Name = stringField(raw, "name")
	s.Version = stringField(raw, "version")
	s.Type = stringField(raw, "type")
	s.Description = stringField(raw, "description")
	s.URL = stringField(raw, "url")
	return nil
}

// ServiceStatus is the result of GET /{ns}/{svc}_v{version}. While a
// registration is in flight Service is null; a failed registration reports
// Slot == "error" with the reason in Msg.
type ServiceStatus struct {
	Service json.RawMessage `json:"service"`
	Slot    string          `json:"slot,omitempty"`
	Msg     string          `json:"msg,omitempty"`
}

// SlotError is the slot value reported for a failed registration.
const SlotError = "error"

// Failed reports whether the platform reported an error slot.
func (s *ServiceStatus) Failed() bool {
	return s.Slot == SlotError
}

// Present reports whether the service identity is populated. A JSON null or
// a missing key both count as absent; any other value, including an empty
// object, counts as present.
func (s *ServiceStatus) Present() bool {
	trimmed := bytes.TrimSpace(s.Service)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Info decodes the service identity. Call only when Present is true.
// A present value that is not an object ("", false, 0, a list) still counts
// as ready: it yields an empty info whose Raw keeps the value under "service".
func (s *ServiceStatus) Info() (*ServiceInfo, error) {
	trimmed := bytes.TrimSpace(s.Service)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		var v any
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return nil, fmt.Errorf("failed to decode service info: %w", err)
		}
		return &ServiceInfo{Raw: map[string]any{"service": v}}, nil
	}
	var info ServiceInfo
	if err := json.Unmarshal(trimmed, &info); err != nil {
		return nil, fmt.Errorf("failed to decode service info: %w", err)
	}
	return &info, nil
}

// RegistrationResult is the result of POST /{ns}/services.
type RegistrationResult struct {
	Message       string `json:"message,omitempty"`
	StateURL      string `json:"state_url,omitempty"`
	SearchURL     string `json:"search_url,omitempty"`
	ListURL       string `json:"list_url,omitempty"`
	NotifyURL     string `json:"notification,omitempty"`
	ServiceStatus string `json:"status,omitempty"`
}

// RegistrationState tracks an in-flight registration. A resolved service
// has no registration state (StateNone).
type RegistrationState string

const (
	StateNone     RegistrationState = ""
	StatePending  RegistrationState = "pending"
	StateReady    RegistrationState = "ready"
	StateError    RegistrationState = "error"
	StateTimedOut RegistrationState = "timed-out"
)

// Terminal reports whether no further polling can change the state.
func (s RegistrationState) Terminal() bool {
	return s == StateReady || s == StateError || s == StateTimedOut
}

// NamespaceSpec describes a namespace to create (POST /namespaces).
type NamespaceSpec struct {
	Name        string `json:"name"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
