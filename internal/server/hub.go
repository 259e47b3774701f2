package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/skalibog/mtfsignal/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// runHub главный цикл рассылки: регистрация клиентов и широковещание
func (s *Server) runHub(ctx context.Context) {
	defer close(s.hubDone)

	for {
		select {
		case <-ctx.Done():
			for c := range s.clients {
				delete(s.clients, c)
				close(c.send)
			}
			return

		case c := <-s.register:
			s.clients[c] = struct{}{}
			// Новому клиенту сразу отправляется последнее сканирование
			if latest := s.latestScan(); latest != nil {
				c.send <- latest
			}

		case c := <-s.unregister:
			if _, ok := s.clients[c]; ok {
				delete(s.clients, c)
				close(c.send)
			}

		case message := <-s.broadcast:
			s.stateMutex.Lock()
			s.latest = message
			s.stateMutex.Unlock()

			for c := range s.clients {
				select {
				case c.send <- message:
				default:
					// Медленный клиент отключается, чтобы не блокировать хаб
					delete(s.clients, c)
					close(c.send)
				}
			}
		}
	}
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("SERVER: Ошибка websocket-рукопожатия", zap.Error(err))
		return
	}

	cl := &client{
		hub:  s,
		conn: conn,
		send: make(chan *ScanMessage, 16),
	}

	select {
	case s.register <- cl:
	case <-s.hubDone:
		conn.Close()
		return
	}

	go cl.writePump()
	go cl.readPump()
}
