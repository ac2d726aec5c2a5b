package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// configFile represents the structure of the services configuration file.
type configFile struct {
	Services []Service `json:"services" yaml:"services"`
}

// Service is a named REST backend declared in the services file.
type Service struct {
	ID      string            `json:"id" yaml:"id" validate:"required"`
	BaseURL string            `json:"base_url" yaml:"base_url" validate:"required,url"`
	Headers map[string]string `json:"headers" yaml:"headers"`
	Enabled *bool             `json:"enabled" yaml:"enabled"`
}

// Registry holds the service definitions loaded from a config file.
type Registry struct {
	mu       sync.RWMutex
	services []Service
	idx      map[string]Service
}

// LoadRegistry loads the service registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("services file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open services file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read services file: %w", err)
	}

	parsed, err := parseServices(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return NewRegistry(parsed.Services)
}

// NewRegistry sanitizes and validates services and indexes them by id.
func NewRegistry(list []Service) (*Registry, error) {
	if len(list) == 0 {
		return nil, errors.New("services file contains no services entries")
	}

	reg := &Registry{
		services: make([]Service, len(list)),
		idx:      make(map[string]Service, len(list)),
	}
	for i := range list {
		svc := sanitizeService(list[i])
		if err := validateService(svc); err != nil {
			return nil, fmt.Errorf("services[%d]: %w", i, err)
		}
		if _, exists := reg.idx[svc.ID]; exists {
			return nil, fmt.Errorf("duplicate service id %q", svc.ID)
		}
		reg.services[i] = svc
		reg.idx[svc.ID] = svc
	}
	return reg, nil
}

// parseServices attempts to decode the services file content.
func parseServices(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var out configFile
		if err := d.fn(data, &out); err == nil {
			return out, nil
		}
	}

	return configFile{}, errors.New("services file format not recognized (expected YAML or JSON)")
}

// sanitizeService trims fields, drops empty headers and defaults enabled to true.
func sanitizeService(svc Service) Service {
	svc.ID = strings.TrimSpace(svc.ID)
	svc.BaseURL = strings.TrimRight(strings.TrimSpace(svc.BaseURL), "/")
	svc.Headers = sanitizeHeaders(svc.Headers)
	if svc.Enabled == nil {
		def := true
		svc.Enabled = &def
	}
	return svc
}

func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func validateService(svc Service) error {
	err := validate.Struct(svc)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Field()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL", e.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on the '%s' tag", e.Field(), e.Tag()))
		}
	}
	if svc.ID != "" {
		return fmt.Errorf("service %q: %s", svc.ID, strings.Join(msgs, ", "))
	}
	return errors.New(strings.Join(msgs, ", "))
}

// ByID returns the service by id.
func (r *Registry) ByID(id string) (Service, bool) {
	if r == nil {
		return Service{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return Service{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.idx[id]
	return svc, ok
}

// All returns all configured services.
func (r *Registry) All() []Service {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Service, len(r.services))
	copy(out, r.services)
	return out
}

// Enabled returns services that are enabled.
func (r *Registry) Enabled() []Service {
	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]Service, 0, len(all))
	for _, svc := range all {
		if svc.EnabledValue() {
			out = append(out, svc)
		}
	}
	return out
}

// EnabledValue returns enabled flag defaulting to true.
func (svc Service) EnabledValue() bool {
	if svc.Enabled == nil {
		return true
	}
	return *svc.Enabled
}
