// Package platform is an in-process fake of the hosting platform API used by
// SDK tests. It keeps namespaces and services in memory, counts requests per
// route and simulates asynchronous service registration.
package platform

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/shamank/adama-sdk-go/pkg/artifact"
	"github.com/shamank/adama-sdk-go/pkg/config"
	"github.com/shamank/adama-sdk-go/pkg/model"
)

// Token is the bearer token the fake accepts.
const Token = "test-token"

// EndpointFunc answers an endpoint invocation with a status code and body.
type EndpointFunc func(params url.Values) (int, string)

// Service is a fake service. PendingPolls GETs answer with a null service
// before it becomes ready; FailMsg, when set, is reported through the error
// slot once the pending polls are used up.
type Service struct {
	Name         string
	Version      string
	Type         string
	Info         map[string]any
	PendingPolls int
	FailMsg      string
	Endpoints    map[string]EndpointFunc
}

// Upload records a registration request.
type Upload struct {
	Namespace    string
	Type         string
	MetadataPath string
	FileName     string
	Archive      []byte
}

type namespace struct {
	info     map[string]any
	services map[string]*Service
}

// Server is the fake platform.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	namespaces map[string]*namespace
	hits       map[string]int
	uploads    []Upload

	// OnRegister, when set, decides the fake service created for an upload.
	// By default the service is ready immediately.
	OnRegister func(desc *model.Descriptor, up Upload) *Service
	// RegisterStatus forces the HTTP status of POST /{ns}/services.
	RegisterStatus int
	// RegisterBody forces the body of POST /{ns}/services.
	RegisterBody string
}

// New starts a fake platform that is shut down when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		namespaces: map[string]*namespace{},
		hits:       map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.status)
	mux.HandleFunc("GET /namespaces", s.listNamespaces)
	mux.HandleFunc("POST /namespaces", s.createNamespace)
	mux.HandleFunc("GET /{ns}", s.getNamespace)
	mux.HandleFunc("GET /{ns}/services", s.listServices)
	mux.HandleFunc("POST /{ns}/services", s.register)
	mux.HandleFunc("GET /{ns}/{svc}", s.getService)
	mux.HandleFunc("DELETE /{ns}/{svc}", s.deleteService)
	mux.HandleFunc("GET /{ns}/{svc}/{ep}", s.invoke)

	s.Server = httptest.NewServer(s.authenticate(mux))
	t.Cleanup(s.Close)
	return s
}

// Config returns a validated SDK configuration pointing at the fake.
func (s *Server) Config() *config.Config {
	cfg := &config.Config{Credential: config.Credential{Token: Token, BaseURL: s.URL}}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	cfg.Timeouts = cfg.Timeouts.WithDefaults()
	return cfg
}

// AddNamespace creates a namespace with the given descriptive info.
func (s *Server) AddNamespace(name string, info map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if info == nil {
		info = map[string]any{}
	}
	info["name"] = name
	s.namespaces[name] = &namespace{info: info, services: map[string]*Service{}}
}

// AddService adds a service to an existing namespace.
func (s *Server) AddService(ns string, svc *Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc.Version == "" {
		svc.Version = model.DefaultVersion
	}
	s.namespaces[ns].services[serviceKey(svc.Name, svc.Version)] = svc
}

// Hits returns how many requests matched method and path.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// TotalHits returns the number of requests served.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.hits {
		n += v
	}
	return n
}

// Uploads returns the registrations received so far.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"status": "error", "message": "invalid token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "api": "Adama v0.3", "hash": "abc123"})
}

func (s *Server) listNamespaces(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	names := make([]string, 0, len(s.namespaces))
	for name := range s.namespaces {
		names = append(names, name)
	}
	s.mu.Unlock()
	sort.Strings(names)

	result := make([]map[string]any, 0, len(names))
	for _, n := range names {
		result = append(result, map[string]any{"name": n})
	}
	success(w, result)
}

func (s *Server) createNamespace(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	name := r.PostForm.Get("name")
	if name == "" {
		fail(w, http.StatusBadRequest, "name is required")
		return
	}
	s.mu.Lock()
	_, exists := s.namespaces[name]
	s.mu.Unlock()
	if exists {
		fail(w, http.StatusBadRequest, fmt.Sprintf("namespace %s already exists", name))
		return
	}
	s.AddNamespace(name, map[string]any{"url": r.PostForm.Get("url"), "description": r.PostForm.Get("description")})
	success(w, map[string]any{"name": name})
}

func (s *Server) getNamespace(w http.ResponseWriter, r *http.Request) {
	ns, ok := s.lookupNamespace(w, r)
	if !ok {
		return
	}
	success(w, ns.info)
}

func (s *Server) listServices(w http.ResponseWriter, r *http.Request) {
	ns, ok := s.lookupNamespace(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	keys := make([]string, 0, len(ns.services))
	for k := range ns.services {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	result := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		svc := ns.services[k]
		result = append(result, map[string]any{"name": svc.Name, "version": svc.Version, "type": svc.Type})
	}
	s.mu.Unlock()
	success(w, result)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	ns, ok := s.lookupNamespace(w, r)
	if !ok {
		return
	}
	if s.RegisterStatus != 0 || s.RegisterBody != "" {
		status := s.RegisterStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, s.RegisterBody)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		fail(w, http.StatusBadRequest, "file is required")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	up := Upload{
		Namespace:    r.PathValue("ns"),
		Type:         r.FormValue("type"),
		MetadataPath: r.FormValue("metadata"),
		FileName:     hdr.Filename,
		Archive:      data,
	}

	raw, err := artifact.ReadArchiveFile(data, up.MetadataPath)
	if err != nil {
		fail(w, http.StatusBadRequest, fmt.Sprintf("metadata %s not found in archive", up.MetadataPath))
		return
	}
	desc, err := model.ParseDescriptor(raw)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	svc := &Service{Name: desc.Name, Version: desc.Version, Type: up.Type}
	if s.OnRegister != nil {
		svc = s.OnRegister(desc, up)
	}
	if svc.Version == "" {
		svc.Version = model.DefaultVersion
	}

	s.mu.Lock()
	s.uploads = append(s.uploads, up)
	ns.services[serviceKey(svc.Name, svc.Version)] = svc
	s.mu.Unlock()

	success(w, map[string]any{
		"message":   "registration started",
		"state_url": fmt.Sprintf("%s/%s/%s_v%s", s.URL, up.Namespace, svc.Name, svc.Version),
	})
}

func (s *Server) getService(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.lookupService(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if svc.PendingPolls > 0 {
		svc.PendingPolls--
		success(w, map[string]any{"service": nil})
		return
	}
	if svc.FailMsg != "" {
		success(w, map[string]any{"service": nil, "slot": "error", "msg": svc.FailMsg})
		return
	}

	info := map[string]any{}
	for k, v := range svc.Info {
		info[k] = v
	}
	info["name"] = svc.Name
	info["version"] = svc.Version
	info["type"] = svc.Type
	success(w, map[string]any{"service": info})
}

func (s *Server) deleteService(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.lookupService(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.namespaces[r.PathValue("ns")].services, serviceKey(svc.Name, svc.Version))
	s.mu.Unlock()
	success(w, nil)
}

func (s *Server) invoke(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.lookupService(w, r)
	if !ok {
		return
	}
	fn, ok := svc.Endpoints[r.PathValue("ep")]
	if !ok {
		fail(w, http.StatusNotFound, fmt.Sprintf("endpoint %s not found", r.PathValue("ep")))
		return
	}
	status, body := fn(r.URL.Query())
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (s *Server) lookupNamespace(w http.ResponseWriter, r *http.Request) (*namespace, bool) {
	s.mu.Lock()
	ns, ok := s.namespaces[r.PathValue("ns")]
	s.mu.Unlock()
	if !ok {
		fail(w, http.StatusNotFound, fmt.Sprintf("namespace %s not found", r.PathValue("ns")))
	}
	return ns, ok
}

func (s *Server) lookupService(w http.ResponseWriter, r *http.Request) (*Service, bool) {
	ns, ok := s.lookupNamespace(w, r)
	if !ok {
		return nil, false
	}
	name, version, ok := splitServiceID(r.PathValue("svc"))
	if !ok {
		fail(w, http.StatusBadRequest, "service id must look like name_vVERSION")
		return nil, false
	}
	s.mu.Lock()
	svc, ok := ns.services[serviceKey(name, version)]
	s.mu.Unlock()
	if !ok {
		fail(w, http.StatusNotFound, fmt.Sprintf("service %s_v%s not found", name, version))
	}
	return svc, ok
}

func splitServiceID(id string) (name, version string, ok bool) {
	i := strings.LastIndex(id, "_v")
	if i <= 0 || i+2 >= len(id) {
		return "", "", false
	}
	return id[:i], id[i+2:], true
}

func serviceKey(name, version string) string {
	return name + "_v" + version
}

func success(w http.ResponseWriter, result any) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "result": result})
}

func fail(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"status": "error", "message": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
