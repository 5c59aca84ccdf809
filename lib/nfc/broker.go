// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

// Package nfc brokers access to the cabinet's card reader.
//
// The reader driver is blocking and stateful, so exactly one goroutine
// may touch it. A single long-lived worker owns the hardware; every
// other caller talks to the worker over a request channel, each
// request carrying its own single-use reply channel. The worker opens
// the hardware lazily on the first request and releases it again after
// an idle window with no traffic, so the device is free whenever the
// cabinet is not actively identifying players.
//
// Cards never surface their raw association ids outside this package.
// Callers receive pseudonymous handles derived per current game, so
// the same card is unlinkable across games.
package nfc

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/devcade/onboard/lib/clock"
	"github.com/devcade/onboard/lib/schema"
)

// idleWindow is how long the worker keeps the hardware open while no
// requests arrive before releasing it.
const idleWindow = 30 * time.Second

// ErrBrokerClosed is returned for requests submitted after Close.
var ErrBrokerClosed = errors.New("nfc: broker closed")

// CurrentGame supplies the identifier that scopes handle derivation.
// Satisfied by the launcher's registry.
type CurrentGame interface {
	Current() schema.Game
}

// BrokerConfig carries the dependencies for NewBroker.
type BrokerConfig struct {
	// Open opens the hardware listener. Required.
	Open OpenFunc

	// Games is read when deriving a new handle. Required.
	Games CurrentGame

	// Clock defaults to the real clock.
	Clock clock.Clock

	Logger *slog.Logger
}

// Broker owns the card reader and serializes access to it.
type Broker struct {
	open   OpenFunc
	games  CurrentGame
	clock  clock.Clock
	logger *slog.Logger

	// sendMu serializes producers into the unbuffered request channel
	// so concurrent callers' requests enter the worker in a single
	// well-defined order.
	sendMu   sync.Mutex
	requests chan request

	done      chan struct{}
	closeOnce sync.Once
}

type request interface {
	// deny delivers the "no result" reply. Used when the hardware
	// cannot be opened for the request that triggered the wakeup.
	deny()
}

type tagsRequest struct {
	reply chan tagsReply
}

type tagsReply struct {
	handle  string
	present bool
}

func (r *tagsRequest) deny() { r.reply <- tagsReply{} }

type userRequest struct {
	handle string
	reply  chan userReply
}

type userReply struct {
	user map[string]any
	ok   bool
}

func (r *userRequest) deny() { r.reply <- userReply{} }

// NewBroker constructs the broker and starts its worker goroutine. The
// worker begins idle, with no hardware connection, and runs until
// Close.
func NewBroker(config BrokerConfig) *Broker {
	c := config.Clock
	if c == nil {
		c = clock.Real()
	}
	b := &Broker{
		open:     config.Open,
		games:    config.Games,
		clock:    c,
		logger:   config.Logger,
		requests: make(chan request),
		done:     make(chan struct{}),
	}
	go b.run()
	return b
}

// Close stops the worker and releases the hardware if it is open.
// In-flight and subsequent calls return ErrBrokerClosed.
func (b *Broker) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

// PollTags checks the reader for a currently-present card. When a card
// is present it returns the card's handle under the current game,
// deriving and caching a new handle on first sight. present is false
// when no card is on the reader or the hardware is unavailable.
func (b *Broker) PollTags() (handle string, present bool, err error) {
	req := &tagsRequest{reply: make(chan tagsReply, 1)}
	if err := b.submit(req); err != nil {
		return "", false, err
	}
	select {
	case r := <-req.reply:
		return r.handle, r.present, nil
	case <-b.done:
		return "", false, ErrBrokerClosed
	}
}

// User resolves a previously issued handle to its user record (the
// identification payload's nested user object). ok is false when the
// handle is unknown, has been evicted from the cache, or the hardware
// lookup fails.
func (b *Broker) User(handle string) (user map[string]any, ok bool, err error) {
	req := &userRequest{handle: handle, reply: make(chan userReply, 1)}
	if err := b.submit(req); err != nil {
		return nil, false, err
	}
	select {
	case r := <-req.reply:
		return r.user, r.ok, nil
	case <-b.done:
		return nil, false, ErrBrokerClosed
	}
}

func (b *Broker) submit(req request) error {
	b.sendMu.Lock()
	defer b.sendMu.Unlock()
	select {
	case b.requests <- req:
		return nil
	case <-b.done:
		return ErrBrokerClosed
	}
}

// run is the worker loop. The association ring lives here, outside the
// per-connection serve loop, so issued handles survive idle teardown.
func (b *Broker) run() {
	ring := newAssociationRing()
	for {
		var req request
		select {
		case req = <-b.requests:
		case <-b.done:
			return
		}

		listener, err := b.open()
		if err != nil {
			b.logger.Warn("opening card listener failed", "error", err)
			req.deny()
			continue
		}
		if done := b.serve(listener, ring, req); done {
			return
		}
	}
}

// serve handles requests against an open listener until the idle
// window elapses (returns false, back to idle) or the broker closes
// (returns true).
func (b *Broker) serve(listener Listener, ring *associationRing, first request) bool {
	defer func() {
		if err := listener.Close(); err != nil {
			b.logger.Warn("closing card listener failed", "error", err)
		}
	}()

	req := first
	for {
		b.handle(listener, ring, req)
		select {
		case req = <-b.requests:
		case <-b.clock.After(idleWindow):
			b.logger.Debug("card listener idle, releasing hardware")
			return false
		case <-b.done:
			return true
		}
	}
}

func (b *Broker) handle(listener Listener, ring *associationRing, req request) {
	switch r := req.(type) {
	case *tagsRequest:
		r.reply <- b.pollTags(listener, ring)
	case *userRequest:
		r.reply <- b.lookupUser(listener, ring, r.handle)
	}
}

func (b *Broker) pollTags(listener Listener, ring *associationRing) tagsReply {
	rawID, err := listener.Poll()
	if err != nil {
		b.logger.Warn("polling card reader failed", "error", err)
		return tagsReply{}
	}
	if rawID == "" {
		return tagsReply{}
	}

	game := b.games.Current()
	if handle, ok := ring.byRawID(rawID, game.ID); ok {
		return tagsReply{handle: handle, present: true}
	}

	handle := deriveHandle(rawID, game.ID)
	ring.insert(handle, rawID, game.ID)
	b.logger.Debug("issued new card handle", "game", game.ID)
	return tagsReply{handle: handle, present: true}
}

func (b *Broker) lookupUser(listener Listener, ring *associationRing, handle string) userReply {
	rawID, ok := ring.byHandle(handle)
	if !ok {
		return userReply{}
	}

	payload, err := listener.FetchUser(rawID)
	if err != nil {
		b.logger.Warn("fetching card user failed", "error", err)
		return userReply{}
	}
	user, ok := payload["user"].(map[string]any)
	if !ok {
		b.logger.Warn("identification payload has no user object")
		return userReply{}
	}
	return userReply{user: user, ok: true}
}
