package main

import "sync"

// broadcastSubscribers is the handler registry shared by the broadcast channel implementations
type broadcastSubscribers struct {
	mu       sync.Mutex
	nextId   int
	handlers map[int]func(payload []byte)
}

func newBroadcastSubscribers() *broadcastSubscribers {
	return &broadcastSubscribers{handlers: map[int]func(payload []byte){}}
}

func (s *broadcastSubscribers) add(handler func(payload []byte)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextId
	s.nextId++
	s.handlers[id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.handlers, id)
			s.mu.Unlock()
		})
	}
}

func (s *broadcastSubscribers) deliver(payload []byte) {
	s.mu.Lock()
	handlers := make([]func(payload []byte), 0, len(s.handlers))
	for _, handler := range s.handlers {
		handlers = append(handlers, handler)
	}
	s.mu.Unlock()

	for _, handler := range handlers {
		handler(payload)
	}
}
