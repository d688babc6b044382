package game

import (
	"sync"

	"domino-service/pkg/logger"

	"go.uber.org/zap"
)

type OutgoingMessage struct {
	Type string      `json:"type"`
	Seq  int64       `json:"seq"`
	Data interface{} `json:"data"`
}

// Hub fans match updates out to live subscribers. Sends never block; a full
// subscriber channel drops the message.
type Hub struct {
	mu     sync.Mutex
	nextID int64
	seq    map[string]int64
	subs   map[string]map[int64]chan OutgoingMessage
}

func NewHub() *Hub {
	return &Hub{
		seq:  make(map[string]int64),
		subs: make(map[string]map[int64]chan OutgoingMessage),
	}
}

// Subscribe registers a listener for matchID and returns its id and channel.
func (h *Hub) Subscribe(matchID string) (int64, chan OutgoingMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	ch := make(chan OutgoingMessage, 8)
	if h.subs[matchID] == nil {
		h.subs[matchID] = make(map[int64]chan OutgoingMessage)
	}
	h.subs[matchID][h.nextID] = ch
	return h.nextID, ch
}

func (h *Hub) Unsubscribe(matchID string, subID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subs[matchID]
	if ch, ok := subs[subID]; ok {
		delete(subs, subID)
		close(ch)
	}
	if len(subs) == 0 {
		delete(h.subs, matchID)
		delete(h.seq, matchID)
	}
}

func (h *Hub) Broadcast(matchID, msgType string, data interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subs[matchID]
	if len(subs) == 0 {
		return
	}
	h.seq[matchID]++
	msg := OutgoingMessage{Type: msgType, Seq: h.seq[matchID], Data: data}
	for id, ch := range subs {
		select {
		case ch <- msg:
		default:
			logger.Log.Warn("ws subscriber channel full", zap.Int64("subID", id), zap.String("matchID", matchID))
		}
	}
}

// Send delivers to one subscriber only.
func (h *Hub) Send(matchID string, subID int64, msgType string, data interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.subs[matchID][subID]
	if !ok {
		return
	}
	h.seq[matchID]++
	select {
	case ch <- OutgoingMessage{Type: msgType, Seq: h.seq[matchID], Data: data}:
	default:
		logger.Log.Warn("ws subscriber channel full", zap.Int64("subID", subID), zap.String("matchID", matchID))
	}
}
