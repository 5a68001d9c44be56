package services

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (*AQIService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	os.Setenv("WAQI_BASE_URL", server.URL)
	os.Setenv("WAQI_API_TOKEN", "test-token")
	t.Cleanup(func() {
		os.Unsetenv("WAQI_BASE_URL")
		os.Unsetenv("WAQI_API_TOKEN")
	})

	return NewAQIService(), server
}

func TestLookupOK(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/feed/Lyon/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("token") != "test-token" {
			t.Errorf("expected token query param, got %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"status":"ok","data":{"aqi":42}}`))
	})

	aqi, ok := s.Lookup("Lyon")
	if !ok {
		t.Fatal("expected a value")
	}
	if aqi != 42 {
		t.Errorf("expected 42, got %d", aqi)
	}
}

func TestLookupCityIsEscaped(t *testing.T) {
	var gotPath string
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"status":"ok","data":{"aqi":7}}`))
	})

	if _, ok := s.Lookup("Aix en Provence"); !ok {
		t.Fatal("expected a value")
	}
	if gotPath != "/feed/Aix%20en%20Provence/" {
		t.Errorf("city not escaped, got path %q", gotPath)
	}
}

func TestLookupNonOKStatus(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","data":"Invalid key"}`))
	})

	if _, ok := s.Lookup("Marseille"); ok {
		t.Error("expected no value for a non-ok status")
	}
}

func TestLookupMalformedBody(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	})

	if _, ok := s.Lookup("Bordeaux"); ok {
		t.Error("expected no value for a malformed body")
	}
}

func TestLookupNonNumericIndex(t *testing.T) {
	// Stations without data report aqi as "-"
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","data":{"aqi":"-"}}`))
	})

	if _, ok := s.Lookup("Lille"); ok {
		t.Error("expected no value for a non-numeric index")
	}
}

func TestLookupHTTPError(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, ok := s.Lookup("Nantes"); ok {
		t.Error("expected no value on a 500")
	}
}

func TestLookupNetworkError(t *testing.T) {
	s, server := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	if _, ok := s.Lookup("Toulouse"); ok {
		t.Error("expected no value when the upstream is unreachable")
	}
}

func TestLookupEmptyCity(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for an empty city")
	})

	if _, ok := s.Lookup(""); ok {
		t.Error("expected no value for an empty city")
	}
}

func TestLookupCachesPerCity(t *testing.T) {
	calls := 0
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"status":"ok","data":{"aqi":63}}`))
	})

	for i := 0; i < 3; i++ {
		if aqi, ok := s.Lookup("Strasbourg"); !ok || aqi != 63 {
			t.Fatalf("lookup %d: got (%d, %v)", i, aqi, ok)
		}
	}
	if calls != 1 {
		t.Errorf("expected a single upstream call, got %d", calls)
	}
}
