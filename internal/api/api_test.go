package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arcanaland/spellbook/internal/card"
	spellhttp "github.com/arcanaland/spellbook/internal/http"
	"github.com/arcanaland/spellbook/internal/logr"
	"github.com/arcanaland/spellbook/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boltJSON = `{"name":"Bolt","ccm":"1","color":"Red","keywords":[],"type":"Instant","text":"Deal 3 damage.","legality":["Modern","Legacy"]}`

type fixture struct {
	handler http.Handler
	store   *store.Store
	api     *API
}

func setup(t *testing.T, keys ...string) *fixture {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "cards.json"))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	a := New(logr.Discard(), s, reg)
	srv := spellhttp.NewServer(logr.Discard(), spellhttp.ServerConfig{
		APIKeys:        keys,
		Gatherer:       reg,
		Handlers:       []spellhttp.Handlers{a},
		PublicHandlers: []spellhttp.Handlers{Welcome{}},
	})
	return &fixture{handler: srv.Handler(), store: s, api: a}
}

func (f *fixture) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		r.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body.Error
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []card.Card {
	t.Helper()
	var body listResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body.Cards
}

func TestListCards(t *testing.T) {
	t.Run("empty collection", func(t *testing.T) {
		f := setup(t)
		w := f.do(t, "GET", "/cards", "")
		assert.Equal(t, 200, w.Code)
		assert.JSONEq(t, `{"cards":[]}`, w.Body.String())
	})

	t.Run("in document order", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, f.store.Insert(card.Card{Name: "Zombie"}))
		require.NoError(t, f.store.Insert(card.Card{Name: "Angel"}))

		w := f.do(t, "GET", "/cards", "")
		require.Equal(t, 200, w.Code)
		got := decodeList(t, w)
		require.Len(t, got, 2)
		assert.Equal(t, "Zombie", got[0].Name)
		assert.Equal(t, "Angel", got[1].Name)
	})
}

func TestCardLifecycle(t *testing.T) {
	f := setup(t)

	w := f.do(t, "POST", "/cards", boltJSON)
	require.Equal(t, 201, w.Code, w.Body.String())
	assert.Equal(t, "/cards/Bolt", w.Header().Get("Location"))
	assert.JSONEq(t, boltJSON, w.Body.String())

	w = f.do(t, "GET", "/cards/Bolt", "")
	require.Equal(t, 200, w.Code)
	assert.JSONEq(t, boltJSON, w.Body.String())

	w = f.do(t, "POST", "/cards", boltJSON)
	assert.Equal(t, 409, w.Code)
	assert.Equal(t, "card 'Bolt' already exists", decodeError(t, w))

	w = f.do(t, "DELETE", "/cards/Bolt", "")
	assert.Equal(t, 204, w.Code)

	w = f.do(t, "GET", "/cards/Bolt", "")
	assert.Equal(t, 404, w.Code)
	assert.Equal(t, "card 'Bolt' not found", decodeError(t, w))

	w = f.do(t, "DELETE", "/cards/Bolt", "")
	assert.Equal(t, 404, w.Code)
}

func TestCreateCard_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"ccm":"1","color":"Red"}`},
		{"blank name", `{"name":"  "}`},
		{"not json", `not json`},
		{"not an object", `"not a json object"`},
		{"wrong field type", `{"name":"Bolt","keywords":"x","ccm":3}`},
		{"trailing data", `{"name":"Bolt"} garbage`},
		{"two cards", `{"name":"Bolt"}{"name":"Shock"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			w := f.do(t, "POST", "/cards", tt.body)
			assert.Equal(t, 400, w.Code, w.Body.String())
			assert.Equal(t, 0, f.store.Len())
		})
	}
}

func TestCreateCard_LegacyShape(t *testing.T) {
	f := setup(t)
	body := `{"name":"Bolt","details":{"CCM":"1","color":"Red","keyword":[],"type":"Instant","text":"Deal 3 damage.","legality":"Modern,Legacy"}}`

	w := f.do(t, "POST", "/cards", body)
	require.Equal(t, 201, w.Code, w.Body.String())
	assert.JSONEq(t, boltJSON, w.Body.String())
}

func TestGetCard_EscapedName(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.store.Insert(card.Card{Name: "Fire // Ice"}))
	require.NoError(t, f.store.Insert(card.Card{Name: "Llanowar Elves"}))

	w := f.do(t, "GET", "/cards/"+url.PathEscape("Fire // Ice"), "")
	assert.Equal(t, 200, w.Code, w.Body.String())

	w = f.do(t, "GET", "/cards/Llanowar%20Elves", "")
	assert.Equal(t, 200, w.Code, w.Body.String())

	w = f.do(t, "GET", "/cards/llanowar%20elves", "")
	assert.Equal(t, 404, w.Code, "lookups are case sensitive")
}

func TestReplaceCard(t *testing.T) {
	f := setup(t)

	w := f.do(t, "PUT", "/cards/Bolt", boltJSON)
	assert.Equal(t, 201, w.Code, w.Body.String())

	w = f.do(t, "PATCH", "/cards/Bolt", `{"ccm":"1","color":"Red","text":"Deal 4 damage."}`)
	require.Equal(t, 200, w.Code, w.Body.String())

	got, err := f.store.Get("Bolt")
	require.NoError(t, err)
	assert.Equal(t, "Deal 4 damage.", got.Text)
	assert.False(t, got.HasLegality())

	w = f.do(t, "PUT", "/cards/Bolt", `{"name":"Shock"}`)
	assert.Equal(t, 400, w.Code)

	w = f.do(t, "PUT", "/cards/Bolt%FF", `{"ccm":"1"}`)
	assert.Equal(t, 400, w.Code, "names must be valid UTF-8")
	assert.Equal(t, 1, f.store.Len())
}

func TestDeleteCardByBody(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.store.Insert(card.Card{Name: "Bolt"}))

	w := f.do(t, "DELETE", "/cards", `{"name":"Bolt","details":{"CCM":"1"}}`)
	assert.Equal(t, 204, w.Code, w.Body.String())
	assert.Equal(t, 0, f.store.Len())

	w = f.do(t, "DELETE", "/cards", `{"name":"Bolt"}`)
	assert.Equal(t, 404, w.Code)
	assert.Equal(t, "card 'Bolt' not found", decodeError(t, w))

	w = f.do(t, "DELETE", "/cards", `{"ccm":"1"}`)
	assert.Equal(t, 400, w.Code)
}

func TestSearchCards(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.store.Insert(card.Card{Name: "Bolt", Color: "Red", Type: "Instant"}))
	require.NoError(t, f.store.Insert(card.Card{Name: "Llanowar Elves", Color: "Green", Type: "Creature — Elf", Keywords: []string{"Mana"}}))

	w := f.do(t, "GET", "/cards/search?color=green&keyword=mana", "")
	require.Equal(t, 200, w.Code, w.Body.String())
	got := decodeList(t, w)
	require.Len(t, got, 1)
	assert.Equal(t, "Llanowar Elves", got[0].Name)

	w = f.do(t, "GET", "/cards/search?name=xyz", "")
	require.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"cards":[]}`, w.Body.String())
}

func TestMalformedDocument(t *testing.T) {
	f := setup(t)
	require.NoError(t, os.WriteFile(f.store.Path(), []byte(`"not a json object"`), 0o644))

	w := f.do(t, "GET", "/cards", "")
	assert.Equal(t, 500, w.Code)
}

func TestAuthentication(t *testing.T) {
	f := setup(t, "key123", "key456")

	w := f.do(t, "GET", "/cards", "")
	assert.Equal(t, 401, w.Code)
	assert.Equal(t, "unauthorized", decodeError(t, w))

	w = f.do(t, "GET", "/cards", "", "x-api-key", "wrong")
	assert.Equal(t, 401, w.Code)

	w = f.do(t, "GET", "/cards", "", "x-api-key", "key456")
	assert.Equal(t, 200, w.Code)

	// public routes
	w = f.do(t, "GET", "/", "")
	assert.Equal(t, 200, w.Code)
	w = f.do(t, "GET", "/healthz", "")
	assert.Equal(t, 200, w.Code)
}

func TestWelcome(t *testing.T) {
	f := setup(t)
	w := f.do(t, "GET", "/", "", "User-Agent", "curl/8.0")
	require.Equal(t, 200, w.Code)
	assert.Equal(t, "Welcome curl/8.0, your IP address is 192.0.2.1\n", w.Body.String())
}

func TestMetrics(t *testing.T) {
	f := setup(t)
	f.do(t, "POST", "/cards", boltJSON)
	f.do(t, "POST", "/cards", boltJSON)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.api.metrics.operations.WithLabelValues("insert", outcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.api.metrics.operations.WithLabelValues("insert", outcomeFailure)))

	w := f.do(t, "GET", "/metrics", "")
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "spellbook_cards 1")
}

func TestMetrics_CardsGaugeSeesExternalChanges(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.store.Insert(card.Card{Name: "Bolt"}))

	// another process sharing the same document
	other, err := store.Open(f.store.Path())
	require.NoError(t, err)
	require.NoError(t, other.Insert(card.Card{Name: "Shock"}))

	w := f.do(t, "GET", "/metrics", "")
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "spellbook_cards 2")
}
