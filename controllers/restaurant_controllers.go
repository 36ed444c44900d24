package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueapp/services"
	"github.com/yeremiapane/queueapp/utils"
)

type RestaurantController struct {
	Queue *services.QueueService
}

func NewRestaurantController(queue *services.QueueService) *RestaurantController {
	return &RestaurantController{Queue: queue}
}

// Register creates a restaurant on the free plan and returns an owner token.
func (rc *RestaurantController) Register(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		OwnerName string `json:"owner_name"`
		Phone     string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	r, err := rc.Queue.RegisterRestaurant(c.Request.Context(), services.RegisterRequest{
		Name:      req.Name,
		OwnerName: req.OwnerName,
		Phone:     req.Phone,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	token, err := utils.GenerateToken(r.ID, utils.RoleOwner)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Restaurant registered", gin.H{
		"restaurant": r,
		"token":      token,
	})
}

// GetRestaurant is the public view behind the customer join page.
func (rc *RestaurantController) GetRestaurant(c *gin.Context) {
	r, err := rc.Queue.Restaurant(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	waiting := 0
	for _, customer := range r.Queue {
		if !customer.IsAllocated() {
			waiting++
		}
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", gin.H{
		"id":      r.ID,
		"name":    r.Name,
		"waiting": waiting,
	})
}

func (rc *RestaurantController) Dashboard(c *gin.Context) {
	d, err := rc.Queue.Dashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard", d)
}
