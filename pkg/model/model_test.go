package model

import (
	"encoding/json"
	"testing"
)

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"status":"success","result":[{"name":"ns1"}]}`))
	if err != nil {
		t.Fatalf("DecodeEnvelope error: %v", err)
	}
	if !env.Success() {
		t.Fatal("expected success envelope")
	}
	var refs []NamespaceRef
	if err := json.Unmarshal(env.Result, &refs); err != nil {
		t.Fatalf("result decode: %v", err)
	}
	if len(refs) != 1 || refs[0].Name != "ns1" {
		t.Fatalf("unexpected refs: %#v", refs)
	}
	if env.Raw["status"] != "success" {
		t.Fatalf("raw not kept: %#v", env.Raw)
	}
}

func TestDecodeEnvelopeRejectsNonJSON(t *testing.T) {
	if _, err := DecodeEnvelope([]byte("<html>oops</html>")); err == nil {
		t.Fatal("expected error for html body")
	}
}

func TestServiceStatusPresence(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		present bool
		failed  bool
	}{
		{name: "null service", body: `{"service": null}`, present: false},
		{name: "missing service", body: `{}`, present: false},
		{name: "error slot", body: `{"service": null, "slot": "error", "msg": "boom"}`, failed: true},
		{name: "empty object", body: `{"service": {}}`, present: true},
		{name: "empty string", body: `{"service": ""}`, present: true},
		{name: "false", body: `{"service": false}`, present: true},
		{name: "zero", body: `{"service": 0}`, present: true},
		{name: "full", body: `{"service": {"name": "svc", "type": "query"}}`, present: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var st ServiceStatus
			if err := json.Unmarshal([]byte(tt.body), &st); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if st.Present() != tt.present {
				t.Fatalf("Present() = %v, want %v", st.Present(), tt.present)
			}
			if st.Failed() != tt.failed {
				t.Fatalf("Failed() = %v, want %v", st.Failed(), tt.failed)
			}
			if !st.Present() {
				return
			}
			info, err := st.Info()
			if err != nil {
				t.Fatalf("Info() error for present service: %v", err)
			}
			if info == nil {
				t.Fatal("Info() returned nil for present service")
			}
		})
	}
}

func TestServiceInfoKeepsRawAndNumericVersion(t *testing.T) {
	var st ServiceStatus
	body := `{"service": {"name": "svc", "version": 0.2, "type": "map_filter", "whitelist": ["a"]}}`
	if err := json.Unmarshal([]byte(body), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	info, err := st.Info()
	if err != nil {
		t.Fatalf("Info error: %v", err)
	}
	if info.Version != "0.2" {
		t.Fatalf("unexpected version %q", info.Version)
	}
	if info.Type != TypeMapFilter {
		t.Fatalf("unexpected type %q", info.Type)
	}
	if _, ok := info.Raw["whitelist"]; !ok {
		t.Fatal("expected unmodelled key in Raw")
	}
}

func TestReturnsJSON(t *testing.T) {
	for typ, want := range map[string]bool{"query": true, "map_filter": true, "generic": false, "passthrough": false, "": false} {
		if got := ReturnsJSON(typ); got != want {
			t.Fatalf("ReturnsJSON(%q) = %v, want %v", typ, got, want)
		}
	}
}

func TestParseDescriptor(t *testing.T) {
	d, err := ParseDescriptor([]byte("name: genes\ntype: query\nendpoints:\n  - search\n"))
	if err != nil {
		t.Fatalf("ParseDescriptor error: %v", err)
	}
	if d.Name != "genes" || d.Type != "query" || len(d.Endpoints) != 1 {
		t.Fatalf("unexpected descriptor: %#v", d)
	}
}

func TestParseDescriptorMissingFields(t *testing.T) {
	if _, err := ParseDescriptor([]byte("description: nothing else\n")); err == nil {
		t.Fatal("expected error for descriptor without name and type")
	}
	if _, err := ParseDescriptor([]byte("name: [unterminated")); err == nil {
		t.Fatal("expected yaml error")
	}
}

func TestRegistrationStateTerminal(t *testing.T) {
	if StatePending.Terminal() || StateNone.Terminal() {
		t.Fatal("pending/none must not be terminal")
	}
	for _, s := range []RegistrationState{StateReady, StateError, StateTimedOut} {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
}

func TestServiceStatusInfoKeepsScalar(t *testing.T) {
	st := ServiceStatus{Service: json.RawMessage(`false`)}
	info, err := st.Info()
	if err != nil {
		t.Fatalf("Info error: %v", err)
	}
	if v, ok := info.Raw["service"]; !ok || v != false {
		t.Fatalf("expected scalar kept under service, got %v", info.Raw)
	}
	if info.Name != "" || info.Type != "" {
		t.Fatalf("expected empty identity fields, got %+v", info)
	}
}
