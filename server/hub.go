package server

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"ductflow/driver"
	"ductflow/model"
)

// client 一个 websocket 连接：请求由 handleRequest 处理，
// 所有写操作都在 handleResponse 中完成
type client struct {
	conn *websocket.Conn
	hub  *driver.Hub

	progress <-chan model.Progress
	cancel   func()

	// request
	msg chan model.Msg
	// response
	send chan model.Msg

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, hub *driver.Hub) *client {
	progress, cancel := hub.Subscribe()
	return &client{
		conn:     conn,
		hub:      hub,
		progress: progress,
		cancel:   cancel,
		msg:      make(chan model.Msg, 10),
		send:     make(chan model.Msg, 10),
		done:     make(chan struct{}),
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.done)
	})
}

func (c *client) handleResponse() {
	for {
		select {
		case reply := <-c.send:
			if err := c.conn.WriteJSON(&reply); err != nil {
				log.WithError(err).Debug("websocket write")
				c.close()
				return
			}
		case p, ok := <-c.progress:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(progressMsg(model.MsgProgress, p)); err != nil {
				log.WithError(err).Debug("websocket write")
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *client) handleRequest() {
	for {
		select {
		case msg := <-c.msg:
			var reply model.Msg
			switch msg.Type {
			case model.MsgStatus:
				if p, ok := c.hub.Last(); ok {
					reply = progressMsg(model.MsgStatus, p)
				} else {
					reply = model.Msg{Type: model.MsgStatus, Content: "waiting for first sample"}
				}
			case model.MsgStop:
				c.hub.RequestStop()
				reply = model.Msg{Type: model.MsgStopped, Content: "stop requested"}
			default:
				log.WithField("type", msg.Type).Warn("no such type")
				reply = model.Msg{Type: model.MsgError, Content: "no such type: " + msg.Type}
			}
			select {
			case c.send <- reply:
			case <-c.done:
				return
			}
		case <-c.done:
			return
		}
	}
}

func progressMsg(typ string, p model.Progress) model.Msg {
	data, err := json.Marshal(p)
	if err != nil {
		return model.Msg{Type: model.MsgError, Content: err.Error()}
	}
	return model.Msg{Type: typ, Content: string(data)}
}
