package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"collecthub-backend/internal/realtime"
)

// WsUpgrade gates the websocket route to actual upgrade requests.
func WsUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WatchItem subscribes the connection to one item's comment/like stream and
// immediately sends the current snapshot. The connection is held open until
// the client goes away; the hub handles all further pushes.
func WatchItem(hub *realtime.Hub) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		itemId, err := strconv.ParseUint(conn.Params("itemId"), 10, 32)
		if err != nil || itemId == 0 {
			conn.Close()
			return
		}
		itemID := uint(itemId)

		var userID uint
		if id, err := strconv.ParseUint(conn.Params("userId"), 10, 32); err == nil {
			userID = uint(id)
		}

		sink := hub.Subscribe(itemID, conn)
		defer hub.Unsubscribe(itemID, conn)

		comments, err := commentsOfItem(itemID)
		if err != nil {
			comments = []fiber.Map{}
		}
		likes, _ := likesCount(itemID)
		liked := userID != 0 && likedBy(itemID, userID)

		if err := sink.WriteJSON(fiber.Map{
			"type":     "onConnect",
			"comments": comments,
			"likes":    likes,
			"liked":    liked,
		}); err != nil {
			return
		}

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
