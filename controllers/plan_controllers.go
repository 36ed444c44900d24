package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueapp/services"
	"github.com/yeremiapane/queueapp/utils"
)

type PlanController struct {
	Plans *services.PlanService
}

func NewPlanController(plans *services.PlanService) *PlanController {
	return &PlanController{Plans: plans}
}

func (pc *PlanController) ListPlans(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Plans", gin.H{
		"active": services.ActivePlan(),
		"plans":  services.Plans(),
	})
}

// SubmitPaymentProof -> owner reports a manual payment for review
func (pc *PlanController) SubmitPaymentProof(c *gin.Context) {
	var req struct {
		PayerName     string `json:"payer_name" binding:"required"`
		Reference     string `json:"reference"`
		Amount        int    `json:"amount" binding:"required,min=1"`
		ScreenshotURL string `json:"screenshot_url" binding:"omitempty,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	r, err := pc.Plans.SubmitPaymentProof(c.Request.Context(), c.Param("id"), services.PaymentProofRequest{
		PayerName:     req.PayerName,
		Reference:     req.Reference,
		Amount:        req.Amount,
		ScreenshotURL: req.ScreenshotURL,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusAccepted, "Payment proof submitted, awaiting approval", gin.H{
		"plan_status":   r.PlanStatus,
		"payment_proof": r.PaymentProof,
	})
}
