package server

import (
	"sync"

	"github.com/gorilla/websocket"
)

// connWithMutex serializes writes to one websocket connection.
type connWithMutex struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// connManager tracks the websocket connections of one session.
type connManager struct {
	mu          sync.RWMutex
	connections map[*websocket.Conn]*connWithMutex
}

func newConnManager() *connManager {
	return &connManager{
		connections: make(map[*websocket.Conn]*connWithMutex),
	}
}

func (m *connManager) add(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[conn] = &connWithMutex{conn: conn}
}

func (m *connManager) remove(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connections, conn)
}

func (m *connManager) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// broadcast writes message to every connection, dropping the ones that fail.
func (m *connManager) broadcast(message any) {
	m.mu.RLock()
	conns := make([]*connWithMutex, 0, len(m.connections))
	for _, cwm := range m.connections {
		conns = append(conns, cwm)
	}
	m.mu.RUnlock()

	for _, cwm := range conns {
		cwm.mu.Lock()
		err := cwm.conn.WriteJSON(message)
		cwm.mu.Unlock()

		if err != nil {
			log.Debugf("dropping websocket %s: %s", cwm.conn.RemoteAddr(), err.Error())
			m.remove(cwm.conn)
		}
	}
}

// writeJSON writes to a single connection under its own lock.
func (m *connManager) writeJSON(conn *websocket.Conn, message any) error {
	m.mu.RLock()
	cwm, exists := m.connections[conn]
	m.mu.RUnlock()

	if !exists {
		return conn.WriteJSON(message)
	}

	cwm.mu.Lock()
	defer cwm.mu.Unlock()
	return cwm.conn.WriteJSON(message)
}
