package controllers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueapp/models"
	"github.com/yeremiapane/queueapp/services"
	"github.com/yeremiapane/queueapp/utils"
	"golang.org/x/crypto/bcrypt"
)

// PlatformController serves the platform admin who reviews upgrades.
type PlatformController struct {
	Plans        *services.PlanService
	AdminUser    string
	AdminPwdHash string
}

func NewPlatformController(plans *services.PlanService, adminUser, adminPwdHash string) *PlatformController {
	return &PlatformController{Plans: plans, AdminUser: adminUser, AdminPwdHash: adminPwdHash}
}

func (pc *PlatformController) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if pc.AdminPwdHash == "" ||
		subtle.ConstantTimeCompare([]byte(input.Username), []byte(pc.AdminUser)) != 1 ||
		bcrypt.CompareHashAndPassword([]byte(pc.AdminPwdHash), []byte(input.Password)) != nil {
		utils.RespondError(c, http.StatusUnauthorized, ErrInvalidCredentials)
		return
	}

	token, err := utils.GenerateToken("", utils.RolePlatformAdmin)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Platform admin logged in: %s", input.Username)
	utils.RespondJSON(c, http.StatusOK, "Login success", gin.H{"token": token})
}

type restaurantSummary struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	OwnerName      string               `json:"owner_name"`
	Phone          string               `json:"phone"`
	Plan           string               `json:"plan"`
	PlanStatus     string               `json:"plan_status"`
	PlanExpiryDate interface{}          `json:"plan_expiry_date"`
	PaymentProof   *models.PaymentProof `json:"payment_proof"`
	QueueLength    int                  `json:"queue_length"`
}

func (pc *PlatformController) ListRestaurants(c *gin.Context) {
	restaurants, err := pc.Plans.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	status := c.Query("plan_status")
	out := make([]restaurantSummary, 0, len(restaurants))
	for _, r := range restaurants {
		if status != "" && r.PlanStatus != status {
			continue
		}
		out = append(out, restaurantSummary{
			ID:             r.ID,
			Name:           r.Name,
			OwnerName:      r.OwnerName,
			Phone:          r.Phone,
			Plan:           r.Plan,
			PlanStatus:     r.PlanStatus,
			PlanExpiryDate: r.PlanExpiryDate,
			PaymentProof:   r.PaymentProof,
			QueueLength:    len(r.Queue),
		})
	}
	utils.RespondJSON(c, http.StatusOK, "List of restaurants", out)
}

func (pc *PlatformController) Approve(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}

	r, err := pc.Plans.Approve(c.Request.Context(), c.Param("id"), pc.AdminUser, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Premium approved", r)
}

func (pc *PlatformController) Reject(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	r, err := pc.Plans.Reject(c.Request.Context(), c.Param("id"), pc.AdminUser, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Premium rejected", r)
}
