package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/queueapp/models"
	"github.com/yeremiapane/queueapp/utils"
)

// Plan is a premium offer from the catalog.
type Plan struct {
	Key          string `json:"key"`
	ID           string `json:"id"`
	DurationDays int    `json:"duration_days"`
	Price        int    `json:"price"`
	DisplayName  string `json:"display_name"`
	DisplayPrice string `json:"display_price"`
	Description  string `json:"description"`
}

// ActivePlanKey selects the plan granted on approval.
const ActivePlanKey = "intro_quarterly"

var PlanCatalog = map[string]Plan{
	"intro_quarterly": {ID: "intro_quarterly_2026", DurationDays: 90, Price: 1999, DisplayName: "Quarterly Premium", Description: "Limited time offer"},
	"monthly":         {ID: "monthly_standard", DurationDays: 30, Price: 1999, DisplayName: "Monthly Premium", Description: "Standard monthly plan"},
	"quarterly":       {ID: "quarterly_standard", DurationDays: 90, Price: 5499, DisplayName: "Quarterly Premium", Description: "Best value - 3 months"},
	"yearly":          {ID: "yearly_standard", DurationDays: 365, Price: 19999, DisplayName: "Yearly Premium", Description: "Maximum savings"},
}

func planWithKey(key string) Plan {
	p := PlanCatalog[key]
	p.Key = key
	p.DisplayPrice = fmt.Sprintf("%s for %d days", utils.FormatRupees(p.Price), p.DurationDays)
	return p
}

func ActivePlan() Plan {
	return planWithKey(ActivePlanKey)
}

// Plans lists the catalog with the active plan first.
func Plans() []Plan {
	plans := []Plan{ActivePlan()}
	for _, key := range sortedKeys(PlanCatalog) {
		if key != ActivePlanKey {
			plans = append(plans, planWithKey(key))
		}
	}
	return plans
}

type PaymentProofRequest struct {
	PayerName     string
	Reference     string
	Amount        int
	ScreenshotURL string
}

// PlanService runs the manual upgrade flow: owners submit a payment proof and
// a platform admin approves or rejects it.
type PlanService struct {
	store    RestaurantStore
	clock    Clock
	notifier Notifier
}

func NewPlanService(store RestaurantStore, clock Clock, notifier Notifier) *PlanService {
	return &PlanService{store: store, clock: clock, notifier: orNoop(notifier)}
}

func (s *PlanService) SubmitPaymentProof(ctx context.Context, restaurantID string, req PaymentProofRequest) (*models.Restaurant, error) {
	if strings.TrimSpace(req.Reference) == "" && strings.TrimSpace(req.ScreenshotURL) == "" {
		return nil, fmt.Errorf("%w: a payment reference or screenshot is required", models.ErrInvalidInput)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", models.ErrInvalidInput)
	}

	r, err := s.store.UpdateRestaurant(ctx, restaurantID, func(r *models.Restaurant) ([]models.ArchivePart, error) {
		r.PaymentProof = &models.PaymentProof{
			ID:            uuid.NewString(),
			PayerName:     strings.TrimSpace(req.PayerName),
			Reference:     strings.TrimSpace(req.Reference),
			Amount:        req.Amount,
			ScreenshotURL: strings.TrimSpace(req.ScreenshotURL),
			PlanType:      ActivePlan().ID,
			UploadedAt:    s.clock.Now(),
		}
		r.PlanStatus = models.PlanStatusPending
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Payment proof submitted for restaurant %s", restaurantID)
	s.notifier.Notify(restaurantID, EventPlanUpdated, planView(r))
	return r, nil
}

// Approve grants the active plan from now on.
func (s *PlanService) Approve(ctx context.Context, restaurantID, approvedBy, reason string) (*models.Restaurant, error) {
	plan := ActivePlan()
	r, err := s.store.UpdateRestaurant(ctx, restaurantID, func(r *models.Restaurant) ([]models.ArchivePart, error) {
		start := s.clock.Now()
		expiry := start.Add(time.Duration(plan.DurationDays) * 24 * time.Hour)

		r.Plan = models.PlanPremium
		r.PlanStatus = models.PlanStatusActive
		r.PlanType = plan.ID
		r.PlanDuration = plan.DurationDays
		r.PlanPrice = plan.Price
		r.PlanStartDate = &start
		r.PlanExpiryDate = &expiry

		if r.PaymentProof != nil {
			r.PaymentProof.ApprovedAt = &start
			r.PaymentProof.ApprovedBy = orDefault(approvedBy, "platform_admin")
			r.PaymentProof.ApprovalReason = orDefault(reason, "Approved")
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Premium approved for restaurant %s until %s", restaurantID, r.PlanExpiryDate.Format(DateLayout))
	s.notifier.Notify(restaurantID, EventPlanUpdated, planView(r))
	return r, nil
}

func (s *PlanService) Reject(ctx context.Context, restaurantID, rejectedBy, reason string) (*models.Restaurant, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: a rejection reason is required", models.ErrInvalidInput)
	}

	r, err := s.store.UpdateRestaurant(ctx, restaurantID, func(r *models.Restaurant) ([]models.ArchivePart, error) {
		if r.PlanStatus != models.PlanStatusPending || r.PaymentProof == nil {
			return nil, models.ErrPlanNotPending
		}
		now := s.clock.Now()
		r.PlanStatus = models.PlanStatusRejected
		r.PaymentProof.RejectedAt = &now
		r.PaymentProof.RejectedBy = orDefault(rejectedBy, "platform_admin")
		r.PaymentProof.RejectionReason = reason
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Premium rejected for restaurant %s: %s", restaurantID, reason)
	s.notifier.Notify(restaurantID, EventPlanUpdated, planView(r))
	return r, nil
}

func (s *PlanService) List(ctx context.Context) ([]models.Restaurant, error) {
	return s.store.ListRestaurants(ctx)
}

func planView(r *models.Restaurant) map[string]interface{} {
	return map[string]interface{}{
		"plan":             r.Plan,
		"plan_status":      r.PlanStatus,
		"plan_type":        r.PlanType,
		"plan_expiry_date": r.PlanExpiryDate,
	}
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
