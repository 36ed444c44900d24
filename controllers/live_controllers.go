package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/queueapp/live"
	"github.com/yeremiapane/queueapp/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type LiveController struct {
	Hub *live.Hub
}

func NewLiveController(hub *live.Hub) *LiveController {
	return &LiveController{Hub: hub}
}

// Stream -> websocket endpoint for the owner dashboard
func (lc *LiveController) Stream(c *gin.Context) {
	role := c.GetString("role")
	restaurantID := c.Param("id")
	if role != utils.RolePlatformAdmin && (role != utils.RoleOwner || c.GetString("restaurantID") != restaurantID) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Websocket upgrade failed: %v", err)
		return
	}

	lc.Hub.ServeConn(ws, restaurantID)
}
