package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/websocket"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/stakepot/internal/platform/errors/i18n"
	_ "github.com/louisbranch/stakepot/internal/platform/i18n/catalog"
	"github.com/louisbranch/stakepot/internal/services/arena/auth"
	"github.com/louisbranch/stakepot/internal/services/arena/domain/event"
	"github.com/louisbranch/stakepot/internal/services/arena/notify"
)

const (
	maxFramePayloadBytes   = 16 * 1024
	maxFramesPerSecond     = 40
	maxDecodeErrorsPerConn = 3

	// subscribeAll is the match filter that receives every event,
	// administrative events included.
	subscribeAll uint64 = 0
)

type wsFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type wsErrorEnvelope struct {
	Error wsError `json:"error"`
}

type wsError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type subscribePayload struct {
	MatchID uint64 `json:"match_id,omitempty"`
}

type subscribedPayload struct {
	MatchID    uint64 `json:"match_id,omitempty"`
	LastSeq    int64  `json:"last_seq"`
	ServerTime string `json:"server_time"`
	Notice     string `json:"notice"`
}

type feedPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
	printer *message.Printer
}

func newFeedPeer(encoder *json.Encoder, printer *message.Printer) *feedPeer {
	return &feedPeer{encoder: encoder, printer: printer}
}

func (p *feedPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

// Feed broadcasts committed journal events to websocket subscribers.
// It implements notify.Sink so the engine fanout hands it live events;
// each peer follows one match or the full firehose.
type Feed struct {
	mu          sync.Mutex
	lastSeq     int64
	subscribers map[*feedPeer]uint64
}

// NewFeed builds an empty feed hub.
func NewFeed() *Feed {
	return &Feed{subscribers: make(map[*feedPeer]uint64)}
}

// Advance records the newest journal seq so fresh subscribers learn
// where the stream stands before their first live event.
func (f *Feed) Advance(seq int64) {
	f.mu.Lock()
	if seq > f.lastSeq {
		f.lastSeq = seq
	}
	f.mu.Unlock()
}

func (f *Feed) attach(peer *feedPeer, matchID uint64) int64 {
	f.mu.Lock()
	f.subscribers[peer] = matchID
	lastSeq := f.lastSeq
	f.mu.Unlock()
	return lastSeq
}

func (f *Feed) detach(peer *feedPeer) {
	f.mu.Lock()
	delete(f.subscribers, peer)
	f.mu.Unlock()
}

// Publish implements notify.Sink. Administrative events carry no match
// id and reach firehose subscribers only.
func (f *Feed) Publish(ctx context.Context, evt event.Event) error {
	frame := wsFrame{Type: "arena.event", Payload: mustJSON(notify.NewEnvelope(evt))}

	f.mu.Lock()
	if evt.Seq > f.lastSeq {
		f.lastSeq = evt.Seq
	}
	peers := make([]*feedPeer, 0, len(f.subscribers))
	for peer, filter := range f.subscribers {
		if filter == subscribeAll || filter == evt.MatchID {
			peers = append(peers, peer)
		}
	}
	f.mu.Unlock()

	for _, peer := range peers {
		_ = peer.writeFrame(frame)
	}
	return nil
}

func (f *Feed) serve(conn *websocket.Conn, printer *message.Printer) {
	defer func() {
		_ = conn.Close()
	}()

	decoder := json.NewDecoder(conn)
	peer := newFeedPeer(json.NewEncoder(conn), printer)
	defer f.detach(peer)

	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = writeFeedError(peer, "", "INVALID_ARGUMENT", "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeFeedError(peer, frame.RequestID, "INVALID_ARGUMENT", "payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = writeFeedError(peer, frame.RequestID, "RESOURCE_EXHAUSTED", "rate limit exceeded")
			return
		}

		switch frame.Type {
		case "arena.subscribe":
			f.handleSubscribe(peer, frame)
		default:
			_ = writeFeedError(peer, frame.RequestID, "INVALID_ARGUMENT", "unsupported frame type")
		}
	}
}

func (f *Feed) handleSubscribe(peer *feedPeer, frame wsFrame) {
	var payload subscribePayload
	if len(frame.Payload) > 0 {
		if err := json.Unmarshal(frame.Payload, &payload); err != nil {
			_ = writeFeedError(peer, frame.RequestID, "INVALID_ARGUMENT", "invalid subscribe payload")
			return
		}
	}

	lastSeq := f.attach(peer, payload.MatchID)

	notice := peer.printer.Sprintf("arena.feed.subscribed.all")
	if payload.MatchID != subscribeAll {
		notice = peer.printer.Sprintf("arena.feed.subscribed.match", payload.MatchID)
	}

	_ = peer.writeFrame(wsFrame{
		Type:      "arena.subscribed",
		RequestID: frame.RequestID,
		Payload: mustJSON(subscribedPayload{
			MatchID:    payload.MatchID,
			LastSeq:    lastSeq,
			ServerTime: time.Now().UTC().Format(time.RFC3339),
			Notice:     notice,
		}),
	})
}

// handleFeed authenticates the caller before the websocket upgrade and
// then hands the connection to the feed loop.
func (a *api) handleFeed(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.Verify(grantFromRequest(r), a.grants)
	if err != nil {
		writeError(w, r, err)
		return
	}

	locale := i18n.ResolveLocale(r.Header.Get("Accept-Language"))
	printer := message.NewPrinter(language.Make(locale))
	log.WithFields(log.Fields{
		"subject": claims.Subject,
		"locale":  locale,
	}).Debug("arena: feed subscriber connected")

	websocket.Handler(func(conn *websocket.Conn) {
		a.feed.serve(conn, printer)
	}).ServeHTTP(w, r)
}

func writeFeedError(peer *feedPeer, requestID string, code string, message string) error {
	return peer.writeFrame(wsFrame{
		Type:      "arena.error",
		RequestID: requestID,
		Payload: mustJSON(wsErrorEnvelope{
			Error: wsError{
				Code:      code,
				Message:   message,
				Retryable: false,
			},
		}),
	})
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Warnf("arena: marshal websocket frame payload: %v", err)
		return nil
	}
	return b
}
