package attack

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const testBundle = `{
	"type": "bundle",
	"id": "bundle--test",
	"objects": [
		{"type": "attack-pattern", "id": "attack-pattern--1", "name": "Phishing",
		 "external_references": [{"source_name": "mitre-attack", "external_id": "T1566"}],
		 "kill_chain_phases": [{"kill_chain_name": "mitre-attack", "phase_name": "initial-access"}],
		 "x_mitre_platforms": ["Windows", "Linux"]},
		{"type": "attack-pattern", "id": "attack-pattern--2", "name": "Old Technique",
		 "revoked": true,
		 "external_references": [{"source_name": "mitre-attack", "external_id": "T0000"}]},
		{"type": "x-mitre-data-source", "id": "x-mitre-data-source--1", "name": "Application Log"},
		{"type": "x-mitre-data-component", "id": "x-mitre-data-component--1",
		 "name": "Application Log Content", "x_mitre_data_source_ref": "x-mitre-data-source--1"},
		{"type": "relationship", "id": "relationship--1", "relationship_type": "detects",
		 "source_ref": "x-mitre-data-component--1", "target_ref": "attack-pattern--1"},
		{"type": "identity", "id": "identity--1", "name": "The MITRE Corporation"}
	]
}`

// testClient returns a client backed by a stub bundle server and a fresh cache
func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(t.TempDir(), nil)
	client.baseURL = server.URL
	return client, server
}

// TestClient_Fetch tests download, filtering, and typing of a bundle
func TestClient_Fetch(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/enterprise-attack/enterprise-attack.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(testBundle))
	})

	objects, err := client.Fetch(DomainEnterprise)
	if err != nil {
		t.Fatalf("Fetch() returned error: %v", err)
	}

	// Revoked technique and identity object are gone; 4 supported objects remain.
	if len(objects) != 4 {
		t.Fatalf("got %d objects, want 4", len(objects))
	}
	for _, obj := range objects {
		if ap, ok := obj.(AttackPattern); ok && ap.Revoked {
			t.Errorf("revoked technique %s survived filtering", ap.ExternalID())
		}
	}
}

// TestClient_Fetch_UsesCache tests that a second fetch stays offline
func TestClient_Fetch_UsesCache(t *testing.T) {
	requests := 0
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(testBundle))
	})

	for i := 0; i < 3; i++ {
		if _, err := client.Fetch(DomainEnterprise); err != nil {
			t.Fatalf("Fetch() run %d returned error: %v", i, err)
		}
	}

	if requests != 1 {
		t.Errorf("server saw %d requests, want 1 (later runs from cache)", requests)
	}
}

// TestClient_Fetch_UnknownDomain tests that no request happens for a bad domain
func TestClient_Fetch_UnknownDomain(t *testing.T) {
	requests := 0
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	_, err := client.Fetch("desktop-attack")
	if !errors.Is(err, ErrUnknownDomain) {
		t.Errorf("Fetch() error = %v, want ErrUnknownDomain", err)
	}
	if requests != 0 {
		t.Errorf("server saw %d requests, want none for an unknown domain", requests)
	}
}

// TestClient_Fetch_HTTPError tests surfacing of download failures
func TestClient_Fetch_HTTPError(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	if _, err := client.Fetch(DomainEnterprise); err == nil {
		t.Error("Fetch() returned nil error for HTTP 404")
	}
}

// TestClient_LoadBundle tests reading a bundle from disk
func TestClient_LoadBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.json")
	if err := os.WriteFile(path, []byte(testBundle), 0o644); err != nil {
		t.Fatalf("write test bundle: %v", err)
	}

	client := NewClient(t.TempDir(), nil)
	objects, err := client.LoadBundle(path)
	if err != nil {
		t.Fatalf("LoadBundle() returned error: %v", err)
	}
	if len(objects) != 4 {
		t.Errorf("got %d objects, want 4", len(objects))
	}
}

// TestClient_LoadBundle_MalformedObject tests terminal failure on unclassifiable objects
func TestClient_LoadBundle_MalformedObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.json")
	bundle := `{"type":"bundle","id":"bundle--x","objects":[{"name":"no type or id"}]}`
	if err := os.WriteFile(path, []byte(bundle), 0o644); err != nil {
		t.Fatalf("write test bundle: %v", err)
	}

	client := NewClient(t.TempDir(), nil)
	if _, err := client.LoadBundle(path); !errors.Is(err, ErrMalformedObject) {
		t.Errorf("LoadBundle() error = %v, want ErrMalformedObject", err)
	}
}

// TestParseBundle_NotABundle tests envelope validation
func TestParseBundle_NotABundle(t *testing.T) {
	if _, err := ParseBundle([]byte(`{"type":"attack-pattern","id":"x"}`)); err == nil {
		t.Error("ParseBundle() accepted a non-bundle object")
	}
}
