package solver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"fluidnet/internal/domain"
)

func TestSolveSendsDiagramWithCSRFHeader(t *testing.T) {
	var gotBody map[string]domain.Component
	var gotHeader, gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/solve" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotHeader = r.Header.Get("X-CSRFToken")
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &gotBody); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","result":{"Pump1.Outlet1":"5 lpm"}}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/solve")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.SetToken("tok123")

	diagram := domain.Diagram{
		"Pump1": {
			Type:        "Pump",
			Parameters:  map[string]string{"FlowRate": "0, 1"},
			Connections: []domain.Connection{{From: "Pump1.Outlet1", To: "Reservoir2.Inlet1"}},
		},
	}
	resp, err := c.Solve(context.Background(), diagram)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotHeader != "tok123" {
		t.Errorf("expected CSRF header tok123, got %q", gotHeader)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected JSON content type, got %q", gotContentType)
	}
	if gotBody["Pump1"].Type != "Pump" || len(gotBody["Pump1"].Connections) != 1 {
		t.Errorf("unexpected body %+v", gotBody)
	}
	if resp.Status != domain.StatusSuccess || resp.Result["Pump1.Outlet1"] != "5 lpm" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestSolveTokenFromSolverCookie(t *testing.T) {
	calls := 0
	var second string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			second = r.Header.Get("X-CSRFToken")
		}
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "fromserver", Path: "/"})
		w.Write([]byte(`{"status":"error","message":"no blocks"}`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL + "/solve")
	if c.Token() != "" {
		t.Errorf("expected empty token before first response, got %q", c.Token())
	}
	c.Solve(context.Background(), nil)
	c.Solve(context.Background(), nil)

	if second != "fromserver" {
		t.Errorf("expected cookie token on second request, got %q", second)
	}
}

func TestSolveReturnsEnvelopeOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"error","message":"Invalid JSON"}`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	resp, err := c.Solve(context.Background(), domain.Diagram{})
	if err != nil {
		t.Fatalf("expected envelope, got error %v", err)
	}
	if resp.Status != domain.StatusError || resp.Message != "Invalid JSON" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestSolveTransportErrors(t *testing.T) {
	t.Run("undecodable body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("<html>bad gateway</html>"))
		}))
		defer srv.Close()

		c, _ := New(srv.URL)
		_, err := c.Solve(context.Background(), domain.Diagram{})
		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("expected TransportError, got %v", err)
		}
	})

	t.Run("no response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		c, _ := New(url)
		_, err := c.Solve(context.Background(), domain.Diagram{})
		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("expected TransportError, got %v", err)
		}
	})
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, u := range []string{"ftp://x/solve", "::bad", ""} {
		if _, err := New(u); err == nil {
			t.Errorf("expected error for %q", u)
		}
	}
}

func TestEncodeRequestShape(t *testing.T) {
	body, err := EncodeRequest(domain.Diagram{
		"Splitter1": {ID: "Splitter1", Type: "Splitter", Parameters: map[string]string{}, Connections: []domain.Connection{}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got map[string]map[string]any
	json.Unmarshal(body, &got)
	want := map[string]map[string]any{
		"Splitter1": {"type": "Splitter", "parameters": map[string]any{}, "connections": []any{}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRequestDigest(t *testing.T) {
	a := RequestDigest([]byte(`{"Pump1":{}}`))
	b := RequestDigest([]byte(`{"Pump2":{}}`))
	if len(a) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(a))
	}
	if a == b {
		t.Error("different bodies produced the same digest")
	}
	if a != RequestDigest([]byte(`{"Pump1":{}}`)) {
		t.Error("digest is not deterministic")
	}
}
