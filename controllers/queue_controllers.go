package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueapp/services"
	"github.com/yeremiapane/queueapp/utils"
)

type QueueController struct {
	Queue *services.QueueService
}

func NewQueueController(queue *services.QueueService) *QueueController {
	return &QueueController{Queue: queue}
}

// JoinQueue -> customer joins from the QR link
func (qc *QueueController) JoinQueue(c *gin.Context) {
	var req struct {
		Name   string `json:"name" binding:"required"`
		Phone  string `json:"phone" binding:"required"`
		Guests int    `json:"guests" binding:"required,min=1,max=50"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := qc.Queue.Join(c.Request.Context(), c.Param("id"), services.JoinRequest{
		Name:   req.Name,
		Phone:  req.Phone,
		Guests: req.Guests,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Joined queue", result)
}

func (qc *QueueController) QueueStatus(c *gin.Context) {
	status, err := qc.Queue.Status(c.Request.Context(), c.Param("id"), c.Param("queue_number"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Queue status", status)
}

// AllocateTable -> staff seats a waiting customer
func (qc *QueueController) AllocateTable(c *gin.Context) {
	var req struct {
		TableNo string `json:"table_no" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	customer, err := qc.Queue.Allocate(c.Request.Context(), c.Param("id"), c.Param("queue_number"), req.TableNo)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %s allocated to %s (restaurant %s)", req.TableNo, customer.QueueNumber, c.Param("id"))
	utils.RespondJSON(c, http.StatusOK, "Table allocated", customer)
}
