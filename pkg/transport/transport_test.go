package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/shamank/adama-sdk-go/pkg/apierr"
	"github.com/shamank/adama-sdk-go/pkg/config"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(config.Credential{Token: "secret", BaseURL: srv.URL + "/"}, opts...)
}

func TestGetAddsHeadersAndParams(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"status":"success","result":1}`))
	}, WithUserAgent("test-agent"))

	resp, err := c.Get(context.Background(), "ns/svc_v0.1/search", url.Values{"q": {"AT1G01010"}})
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.URL.Path != "/ns/svc_v0.1/search" {
		t.Fatalf("unexpected path %q", got.URL.Path)
	}
	if got.URL.Query().Get("q") != "AT1G01010" {
		t.Fatalf("unexpected query %q", got.URL.RawQuery)
	}
	if got.Header.Get("Authorization") != "Bearer secret" {
		t.Fatalf("missing bearer token: %q", got.Header.Get("Authorization"))
	}
	if got.Header.Get("User-Agent") != "test-agent" {
		t.Fatalf("unexpected user agent %q", got.Header.Get("User-Agent"))
	}
	if got.Header.Get(RequestIDHeader) == "" {
		t.Fatal("expected request id header")
	}
	if resp.JSON == nil || resp.JSONErr != nil {
		t.Fatalf("expected decoded JSON, err=%v", resp.JSONErr)
	}
}

func TestBestEffortJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain text"))
	})

	resp, err := c.Get(context.Background(), "/raw", nil)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if resp.JSON != nil || resp.JSONErr == nil {
		t.Fatal("expected JSON decode to fail silently")
	}
	if resp.Text() != "plain text" {
		t.Fatalf("unexpected body %q", resp.Text())
	}
}

func TestGetURLIsUnauthenticated(t *testing.T) {
	var auth string
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("ok"))
	}))
	defer other.Close()

	c := New(config.Credential{Token: "secret", BaseURL: "http://platform.invalid"})
	if _, err := c.GetURL(context.Background(), other.URL+"/x", nil); err != nil {
		t.Fatalf("GetURL error: %v", err)
	}
	if auth != "" {
		t.Fatalf("token leaked to foreign host: %q", auth)
	}
}

func TestPostFormAndDelete(t *testing.T) {
	var methods []string
	var body string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		if r.Method == http.MethodPost {
			data, _ := io.ReadAll(r.Body)
			body = string(data)
			if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
				t.Errorf("unexpected content type %q", ct)
			}
		}
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	form := url.Values{"name": {"ns"}}
	if _, err := c.Post(context.Background(), "/namespaces", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded"); err != nil {
		t.Fatalf("Post error: %v", err)
	}
	if _, err := c.Delete(context.Background(), "/ns/svc_v0.1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if strings.Join(methods, ",") != "POST,DELETE" {
		t.Fatalf("unexpected methods %v", methods)
	}
	if body != "name=ns" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		if r.FormValue("type") != "query" || r.FormValue("metadata") != "a/b/metadata.yml" {
			t.Errorf("unexpected fields: %v", r.MultipartForm.Value)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "code.tgz" || string(data) != "archive" {
			t.Errorf("unexpected file %q %q", hdr.Filename, data)
		}
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	body, ct, err := Multipart(
		map[string]string{"type": "query", "metadata": "a/b/metadata.yml"},
		FilePart{Field: "file", FileName: "code.tgz", Content: []byte("archive")},
	)
	if err != nil {
		t.Fatalf("Multipart error: %v", err)
	}
	if _, err := c.Post(context.Background(), "/ns/services", body, ct); err != nil {
		t.Fatalf("Post error: %v", err)
	}
}

func TestEnvelopeClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "success", status: 200, body: `{"status":"success","result":{"a":1}}`},
		{name: "http error with envelope", status: 404, body: `{"status":"error","message":"unknown namespace"}`, wantErr: "unknown namespace"},
		{name: "http error with text", status: 500, body: "Internal Server Error", wantErr: "Internal Server Error"},
		{name: "http error empty", status: 502, body: "", wantErr: "platform returned HTTP 502"},
		{name: "not json", status: 200, body: "<html>", wantErr: "unparsable platform response"},
		{name: "non-success envelope", status: 200, body: `{"status":"error","message":"bad token"}`, wantErr: "bad token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			resp, err := c.Get(context.Background(), "/status", nil)
			if err != nil {
				t.Fatalf("Get error: %v", err)
			}
			env, err := Envelope(resp)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if string(env.Result) != `{"a":1}` {
					t.Fatalf("unexpected result %s", env.Result)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
			var apiErr *apierr.Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *apierr.Error, got %T", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", apiErr.StatusCode, tt.status)
			}
		})
	}
}

func TestNonSuccessEnvelopeKeepsPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","message":"nope","trace":"x"}`))
	})
	resp, err := c.Get(context.Background(), "/status", nil)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	_, err = Envelope(resp)
	e, ok := apierr.As(err)
	if !ok {
		t.Fatalf("expected *apierr.Error, got %v", err)
	}
	if e.Payload["trace"] != "x" {
		t.Fatalf("payload lost: %#v", e.Payload)
	}
}

func TestRequestSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, WithTracerProvider(tp))

	if _, err := c.Get(context.Background(), "/missing", nil); err != nil {
		t.Fatalf("Get error: %v", err)
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != "platform GET" {
		t.Fatalf("unexpected span name %q", span.Name())
	}
	var status int64
	for _, kv := range span.Attributes() {
		if kv.Key == "http.response.status_code" {
			status = kv.Value.AsInt64()
		}
	}
	if status != http.StatusNotFound {
		t.Fatalf("unexpected status attribute %d", status)
	}
}

func TestTransportError(t *testing.T) {
	c := New(config.Credential{Token: "t", BaseURL: "http://127.0.0.1:1"})
	if _, err := c.Get(context.Background(), "/status", nil); err == nil {
		t.Fatal("expected connection error")
	}
}
