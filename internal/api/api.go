// Package api serves the card collection over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/arcanaland/spellbook/internal/card"
	spellhttp "github.com/arcanaland/spellbook/internal/http"
	"github.com/arcanaland/spellbook/internal/store"
	"github.com/go-logr/logr"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// maxCardBytes bounds the size of a card in a request body.
const maxCardBytes = 1 << 20

type (
	// API handles the /cards routes.
	API struct {
		logger  logr.Logger
		store   *store.Store
		metrics *metrics
	}

	// Welcome handles the greeting route.
	Welcome struct{}

	listResponse struct {
		Cards []card.Card `json:"cards"`
	}

	routeParams struct {
		Name string `schema:"name,required"`
	}
)

// New constructs the card API, registering its metrics with reg.
func New(logger logr.Logger, s *store.Store, reg prometheus.Registerer) *API {
	return &API{
		logger:  logger,
		store:   s,
		metrics: newMetrics(reg, s),
	}
}

func (a *API) AddHandlers(r *mux.Router) {
	r.HandleFunc("/cards", a.listCards).Methods("GET")
	r.HandleFunc("/cards", a.createCard).Methods("POST")
	r.HandleFunc("/cards", a.deleteCardByBody).Methods("DELETE")
	r.HandleFunc("/cards/search", a.searchCards).Methods("GET")
	r.HandleFunc("/cards/{name}", a.getCard).Methods("GET")
	r.HandleFunc("/cards/{name}", a.replaceCard).Methods("PUT", "PATCH")
	r.HandleFunc("/cards/{name}", a.deleteCard).Methods("DELETE")
}

func (a *API) listCards(w http.ResponseWriter, r *http.Request) {
	cards, err := a.store.List()
	a.metrics.observe("list", err)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	spellhttp.WriteJSON(w, http.StatusOK, listResponse{Cards: cards})
}

func (a *API) searchCards(w http.ResponseWriter, r *http.Request) {
	var filter store.Filter
	if err := spellhttp.DecodeQuery(&filter, r.URL.Query()); err != nil {
		a.writeError(w, r, err)
		return
	}
	cards, err := a.store.Search(filter)
	a.metrics.observe("search", err)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	spellhttp.WriteJSON(w, http.StatusOK, listResponse{Cards: cards})
}

func (a *API) getCard(w http.ResponseWriter, r *http.Request) {
	var params routeParams
	if err := spellhttp.DecodeRoute(&params, r); err != nil {
		a.writeError(w, r, err)
		return
	}
	cd, err := a.store.Get(params.Name)
	a.metrics.observe("get", err)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	spellhttp.WriteJSON(w, http.StatusOK, cd)
}

func (a *API) createCard(w http.ResponseWriter, r *http.Request) {
	cd, err := decodeCard(w, r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	err = a.store.Insert(cd)
	a.metrics.observe("insert", err)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.logger.V(1).Info("created card", "name", cd.Name)
	w.Header().Set("Location", "/cards/"+url.PathEscape(cd.Name))
	spellhttp.WriteJSON(w, http.StatusCreated, cd)
}

func (a *API) replaceCard(w http.ResponseWriter, r *http.Request) {
	var params routeParams
	if err := spellhttp.DecodeRoute(&params, r); err != nil {
		a.writeError(w, r, err)
		return
	}
	cd, err := decodeCard(w, r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if cd.Name == "" {
		cd.Name = params.Name
	} else if cd.Name != params.Name {
		a.writeError(w, r, spellhttp.BadRequest(fmt.Sprintf("card name '%s' does not match '%s'", cd.Name, params.Name)))
		return
	}
	created, err := a.store.Replace(cd)
	a.metrics.observe("replace", err)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	a.logger.V(1).Info("replaced card", "name", cd.Name, "created", created)
	spellhttp.WriteJSON(w, code, cd)
}

func (a *API) deleteCard(w http.ResponseWriter, r *http.Request) {
	var params routeParams
	if err := spellhttp.DecodeRoute(&params, r); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.removeCard(w, r, params.Name)
}

func (a *API) removeCard(w http.ResponseWriter, r *http.Request, name string) {
	err := a.store.Remove(name)
	a.metrics.observe("remove", err)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.logger.V(1).Info("deleted card", "name", name)
	w.WriteHeader(http.StatusNoContent)
}

// deleteCardByBody removes the card named in the request body.
func (a *API) deleteCardByBody(w http.ResponseWriter, r *http.Request) {
	cd, err := decodeCard(w, r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if cd.Name == "" {
		a.writeError(w, r, spellhttp.BadRequest("card name is required"))
		return
	}
	a.removeCard(w, r, cd.Name)
}

// writeError writes err to the response, logging it when it is the server's fault.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if code := spellhttp.StatusCode(err); code >= http.StatusInternalServerError {
		a.logger.Error(err, "handling request", "method", r.Method, "path", r.URL.Path)
	}
	spellhttp.Error(w, err)
}

func decodeCard(w http.ResponseWriter, r *http.Request) (card.Card, error) {
	var cd card.Card
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCardBytes))
	if err := dec.Decode(&cd); err != nil {
		return card.Card{}, spellhttp.BadRequest(fmt.Sprintf("invalid card: %s", err.Error()))
	}
	if _, err := dec.Token(); err != io.EOF {
		return card.Card{}, spellhttp.BadRequest("invalid card: unexpected data after card")
	}
	return cd, nil
}

func (Welcome) AddHandlers(r *mux.Router) {
	r.HandleFunc("/", welcome).Methods("GET")
}

func welcome(w http.ResponseWriter, r *http.Request) {
	userAgent := r.UserAgent()
	if userAgent == "" {
		userAgent = "Unknown"
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Welcome %s, your IP address is %s\n", userAgent, ip)
}
