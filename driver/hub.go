package driver

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"ductflow/model"
)

// Hub 监测进度的推送中心，求解器回调路径上只做非阻塞发送
type Hub struct {
	mu      sync.RWMutex
	last    model.Progress
	hasLast bool
	subs    map[chan model.Progress]struct{}
	buffer  int

	stop     chan struct{}
	stopOnce sync.Once
}

func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[chan model.Progress]struct{}),
		buffer: buffer,
		stop:   make(chan struct{}),
	}
}

// Publish never blocks; a subscriber whose buffer is full misses the sample.
func (h *Hub) Publish(p model.Progress) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last, h.hasLast = p, true
	for ch := range h.subs {
		select {
		case ch <- p:
		default:
			log.WithField("iteration", p.Iteration).Debug("subscriber lagging, progress dropped")
		}
	}
}

// Subscribe returns a progress channel and a cancel func that closes it.
func (h *Hub) Subscribe() (<-chan model.Progress, func()) {
	ch := make(chan model.Progress, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Last() (model.Progress, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.hasLast
}

// RequestStop asks the running simulation to terminate. Safe to call more
// than once.
func (h *Hub) RequestStop() {
	h.stopOnce.Do(func() {
		log.Info("stop requested")
		close(h.stop)
	})
}

func (h *Hub) StopRequested() <-chan struct{} {
	return h.stop
}
