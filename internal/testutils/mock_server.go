package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/dalfonso89/currency-converter/internal/models"
)

// MockExchangeRateServer imitates the exchangerate.host /symbols and /latest
// endpoints.
type MockExchangeRateServer struct {
	server *httptest.Server

	mu            sync.Mutex
	symbols       models.Catalog
	rates         map[string]map[string]float64
	symbolsStatus int
	failSymbols   bool
	failRates     map[string]bool
	symbolsCalls  int
	latestCalls   int
	lastQuery     map[string]string
}

// NewMockExchangeRateServer creates a server with the MockCatalog symbols and
// a small USD rate table.
func NewMockExchangeRateServer() *MockExchangeRateServer {
	mock := &MockExchangeRateServer{
		symbols: MockCatalog(),
		rates: map[string]map[string]float64{
			"USD": {"EUR": 0.9, "GBP": 0.8, "JPY": 110.0},
			"EUR": {"USD": 1.1, "GBP": 0.85},
		},
		symbolsStatus: http.StatusOK,
		failRates:     make(map[string]bool),
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handler))
	return mock
}

func (m *MockExchangeRateServer) handler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/symbols":
		m.handleSymbols(w)
	case "/latest":
		m.handleLatest(w, r)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (m *MockExchangeRateServer) handleSymbols(w http.ResponseWriter) {
	m.mu.Lock()
	m.symbolsCalls++
	status := m.symbolsStatus
	fail := m.failSymbols
	symbols := m.symbols
	m.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false})
		return
	}
	if fail {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   map[string]interface{}{"code": 101, "type": "missing_access_key"},
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"symbols": symbols,
	})
}

func (m *MockExchangeRateServer) handleLatest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	base := query.Get("base")
	target := query.Get("symbols")

	m.mu.Lock()
	m.latestCalls++
	m.lastQuery = map[string]string{}
	for key := range query {
		m.lastQuery[key] = query.Get(key)
	}
	fail := m.failRates[base+"/"+target]
	table := m.rates[base]
	m.mu.Unlock()

	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	rates := map[string]float64{}
	if rate, ok := table[target]; ok {
		rates[target] = rate
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"base":    base,
		"rates":   rates,
	})
}

// URL returns the mock server URL
func (m *MockExchangeRateServer) URL() string {
	return m.server.URL
}

// Close closes the mock server
func (m *MockExchangeRateServer) Close() {
	m.server.Close()
}

// SetRate sets the rate returned for base/target
func (m *MockExchangeRateServer) SetRate(base, target string, rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rates[base] == nil {
		m.rates[base] = map[string]float64{}
	}
	m.rates[base][target] = rate
}

// FailRate makes the rate endpoint answer 500 for base/target
func (m *MockExchangeRateServer) FailRate(base, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRates[base+"/"+target] = true
}

// FailSymbols makes the symbols endpoint report success=false
func (m *MockExchangeRateServer) FailSymbols(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSymbols = fail
}

// SetSymbolsStatus sets the HTTP status of the symbols endpoint
func (m *MockExchangeRateServer) SetSymbolsStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbolsStatus = status
}

// SymbolsCalls returns how many times /symbols was requested
func (m *MockExchangeRateServer) SymbolsCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.symbolsCalls
}

// LatestCalls returns how many times /latest was requested
func (m *MockExchangeRateServer) LatestCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latestCalls
}

// LastQuery returns the query parameters of the last /latest request
func (m *MockExchangeRateServer) LastQuery() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastQuery
}
