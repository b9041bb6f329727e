/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/orosu-ci/orosu/api"
	"github.com/orosu-ci/orosu/bundle"
	"github.com/orosu-ci/orosu/cryptography"
	"github.com/orosu-ci/orosu/log"
	"github.com/orosu-ci/orosu/netfilter"
)

// errUnknownIdentity and errTokenExpiredAtUpgrade are internal to the
// upgrade handshake; both are surfaced to the peer only as a bare 401.
var (
	errUnknownIdentity       = errors.New("server: unknown identity")
	errTokenExpiredAtUpgrade = errors.New("server: token expired")
)

// tokenHeaderPrefix is the scheme token the Authorization header must
// carry: "Authorization: Token <token>".
const tokenHeaderPrefix = "Token "

// Server upgrades authenticated, filtered connections and runs each to
// completion as an independent session.
type Server struct {
	registry  *Registry
	chunkSize int
	log       *log.Logger
	upgrader  websocket.Upgrader
}

// New builds a Server. chunkSize is informational only on the server
// side -- the client drives chunk size -- and is stored on each Session
// without being used by the file transfer.
func New(registry *Registry, chunkSize int, logger *log.Logger) *Server {
	if chunkSize <= 0 {
		chunkSize = bundle.DefaultChunkSize
	}
	return &Server{
		registry:  registry,
		chunkSize: chunkSize,
		log:       logger,
		upgrader:  websocket.Upgrader{},
	}
}

// ServeHTTP implements the upgrade handshake: User-Agent validation,
// the five-step token check, network filtering, then upgrade and hand
// off to a new Session. Every failure before upgrade is surfaced as a
// plain HTTP status, per the spec's error taxonomy.
func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, err := api.ParseUserAgent(r.Header.Get("User-Agent")); err != nil {
		http.Error(w, "bad user agent", http.StatusBadRequest)
		return
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), tokenHeaderPrefix)
	if !ok || token == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	identity, err := srv.authenticate(token)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ip := netfilter.RemoteIP(r.Header.Get("X-Forwarded-For"), r.RemoteAddr)
	if !netfilter.Chain(srv.registry.Global(), identity.Filter, ip) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	conn, err := srv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sessLog := log.NewSession(srv.log)
	sessLog.Info("session starting", log.KV("identity", identity.Name))
	sess := NewSession(conn, identity, srv.chunkSize, sessLog)
	if err := sess.Run(context.Background()); err != nil {
		sessLog.Warn("session ended with error", log.KVErr(err))
	} else {
		sessLog.Info("session ended")
	}
}

// authenticate performs the five-step check of the spec's
// authentication handshake, in order: parse subject (unverified),
// resolve identity, check claimed expiry, (identity's key is already
// resolved at registry build time), then verify the signature.
func (srv *Server) authenticate(token string) (*Identity, error) {
	subject, err := cryptography.Subject(token)
	if err != nil {
		return nil, err
	}
	identity, ok := srv.registry.Lookup(subject)
	if !ok {
		return nil, errUnknownIdentity
	}
	expiry, err := cryptography.Expiry(token)
	if err != nil {
		return nil, err
	}
	if !expiry.After(time.Now()) {
		return nil, errTokenExpiredAtUpgrade
	}
	if _, err := cryptography.Verify(token, identity.PublicKey, time.Now()); err != nil {
		return nil, err
	}
	return identity, nil
}
