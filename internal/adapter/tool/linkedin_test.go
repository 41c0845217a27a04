package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"linkedin-assistant/internal/domain"
)

type fakeExtractor struct {
	profile *domain.Profile
	err     error
	calls   int
}

func (f *fakeExtractor) Extract(_ context.Context, email, password, profileURL string) (*domain.Profile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

type fakeStore struct {
	saved []string
	err   error
}

func (f *fakeStore) Save(_ context.Context, profileURL string, p *domain.Profile) (*domain.StoredProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.saved = append(f.saved, profileURL)
	return &domain.StoredProfile{ID: "01TEST", ProfileURL: profileURL, Profile: *p}, nil
}

func (f *fakeStore) Latest(context.Context) (*domain.StoredProfile, error) {
	return nil, domain.ErrProfileNotFound
}

func (f *fakeStore) Close() error { return nil }

func validArgs() json.RawMessage {
	return json.RawMessage(`{
		"email": "jane@example.com",
		"password": "hunter2",
		"profile_url": "https://www.linkedin.com/in/jane"
	}`)
}

func TestExtractToolSuccess(t *testing.T) {
	ext := &fakeExtractor{profile: &domain.Profile{Name: "Jane Doe", Headline: "Engineer"}}
	store := &fakeStore{}
	tool := NewExtractTool(ext, store, nil, testLogger())

	result, err := tool.Execute(context.Background(), validArgs())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Success {
		t.Fatalf("Success = false: %s", result.Error)
	}
	p, ok := result.Data.(*domain.Profile)
	if !ok {
		t.Fatalf("Data = %T, want *domain.Profile", result.Data)
	}
	if p.Name != "Jane Doe" {
		t.Errorf("Name = %q", p.Name)
	}
	if len(store.saved) != 1 || store.saved[0] != "https://www.linkedin.com/in/jane" {
		t.Errorf("saved = %v", store.saved)
	}
}

func TestExtractToolMissingFields(t *testing.T) {
	tool := NewExtractTool(&fakeExtractor{}, nil, nil, testLogger())

	tests := []struct {
		name string
		args string
		want string
	}{
		{"no email", `{"email":"","password":"x","profile_url":"https://www.linkedin.com/in/a"}`, "'email' is required"},
		{"no password", `{"email":"a@b.c","password":"","profile_url":"https://www.linkedin.com/in/a"}`, "'password' is required"},
		{"no url", `{"email":"a@b.c","password":"x","profile_url":""}`, "'profile_url' is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tool.Execute(context.Background(), json.RawMessage(tt.args))
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if result.Success {
				t.Fatal("Success = true, want false")
			}
			if result.Error != tt.want {
				t.Errorf("Error = %q, want %q", result.Error, tt.want)
			}
		})
	}
}

func TestExtractToolRejectsNonLinkedInURL(t *testing.T) {
	ext := &fakeExtractor{}
	tool := NewExtractTool(ext, nil, nil, testLogger())

	result, err := tool.Execute(context.Background(), json.RawMessage(
		`{"email":"a@b.c","password":"x","profile_url":"https://evil.example.com/in/jane"}`,
	))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Success {
		t.Fatal("Success = true, want false")
	}
	if ext.calls != 0 {
		t.Error("extractor called for rejected URL")
	}
}

func TestExtractToolMalformedJSON(t *testing.T) {
	tool := NewExtractTool(&fakeExtractor{}, nil, nil, testLogger())

	result, err := tool.Execute(context.Background(), json.RawMessage(`{not json`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Success {
		t.Fatal("Success = true, want false")
	}
	if !strings.Contains(result.Error, "invalid JSON") {
		t.Errorf("Error = %q", result.Error)
	}
}

func TestExtractToolRateLimited(t *testing.T) {
	ext := &fakeExtractor{profile: &domain.Profile{Name: "Jane"}}
	limiter := NewRateLimiter(1, time.Minute)
	tool := NewExtractTool(ext, nil, limiter, testLogger())

	if result, _ := tool.Execute(context.Background(), validArgs()); !result.Success {
		t.Fatalf("first call failed: %s", result.Error)
	}

	result, err := tool.Execute(context.Background(), validArgs())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Success {
		t.Fatal("Success = true, want rate limit failure")
	}
	if ext.calls != 1 {
		t.Errorf("extractor calls = %d, want 1", ext.calls)
	}
}

func TestExtractToolExtractionFailure(t *testing.T) {
	ext := &fakeExtractor{err: fmt.Errorf("%w: login rejected", domain.ErrExtractorFailure)}
	tool := NewExtractTool(ext, nil, nil, testLogger())

	result, err := tool.Execute(context.Background(), validArgs())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Success {
		t.Fatal("Success = true, want false")
	}
	if !strings.Contains(result.Error, "login rejected") {
		t.Errorf("Error = %q", result.Error)
	}
	// Credentials never appear in diagnostics.
	if strings.Contains(result.Error, "hunter2") || strings.Contains(result.Error, "jane@example.com") {
		t.Errorf("credentials leaked into error: %q", result.Error)
	}
}

func TestExtractToolStoreFailureStillSucceeds(t *testing.T) {
	ext := &fakeExtractor{profile: &domain.Profile{Name: "Jane"}}
	store := &fakeStore{err: fmt.Errorf("%w: disk full", domain.ErrProfileStore)}
	tool := NewExtractTool(ext, store, nil, testLogger())

	result, err := tool.Execute(context.Background(), validArgs())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Success {
		t.Errorf("Success = false after extraction succeeded: %s", result.Error)
	}
}

func TestExtractToolSchemaCompiles(t *testing.T) {
	tool := NewExtractTool(&fakeExtractor{}, nil, nil, testLogger())
	if _, err := WithSchemaValidation(tool); err != nil {
		t.Fatalf("schema does not compile: %v", err)
	}
}
