package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/queueapp/models"
	"github.com/yeremiapane/queueapp/utils"
	"gorm.io/datatypes"
)

const DefaultFreeMonthlyLimit = 500

// MonthlyLimit is the number of joins allowed in the current month.
type MonthlyLimit struct {
	Unlimited bool `json:"unlimited"`
	Value     int  `json:"value"`
}

func (l MonthlyLimit) Allows(used int) bool {
	return l.Unlimited || used < l.Value
}

func (l MonthlyLimit) String() string {
	if l.Unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", l.Value)
}

// EffectiveLimit resolves the plan limit: unlimited while premium is active,
// the usage snapshot plus the free allowance in the month premium expired,
// and the free allowance otherwise.
func EffectiveLimit(r *models.Restaurant, usage models.UsageAnalytics, now time.Time, freeLimit int) MonthlyLimit {
	if r.IsPremiumActive(now) {
		return MonthlyLimit{Unlimited: true}
	}
	if r.Plan == models.PlanPremium && expiredInMonthOf(r, now) {
		if atExpiry, ok := usage.CustomersAtExpiry.Get(); ok {
			return MonthlyLimit{Value: atExpiry + freeLimit}
		}
	}
	return MonthlyLimit{Value: freeLimit}
}

func expiredInMonthOf(r *models.Restaurant, now time.Time) bool {
	return r.PlanExpiryDate != nil && currentMonth(r.PlanExpiryDate.In(now.Location())) == currentMonth(now)
}

func limitMessage(r *models.Restaurant, usage models.UsageAnalytics, freeLimit int) string {
	if atExpiry, ok := usage.CustomersAtExpiry.Get(); ok && r.Plan == models.PlanPremium {
		return fmt.Sprintf("Freemium limit reached (%d before expiry + %d grace). Renew Premium for unlimited customers.", atExpiry, freeLimit)
	}
	if r.Plan == models.PlanFree {
		return "Monthly limit reached. Upgrade to Premium for unlimited customers."
	}
	return "Monthly limit reached. Renew Premium for unlimited customers."
}

type RegisterRequest struct {
	Name      string
	OwnerName string
	Phone     string
}

type JoinRequest struct {
	Name   string
	Phone  string
	Guests int
}

type JoinResult struct {
	Customer           models.CustomerRecord `json:"customer"`
	Position           int                   `json:"position"`
	CustomersThisMonth int                   `json:"customers_this_month"`
	Limit              MonthlyLimit          `json:"limit"`
}

type QueueStatus struct {
	RestaurantName string                `json:"restaurant_name"`
	Customer       models.CustomerRecord `json:"customer"`
	Position       int                   `json:"position"`
	WaitingAhead   int                   `json:"waiting_ahead"`
}

type Dashboard struct {
	Restaurant    *models.Restaurant    `json:"restaurant"`
	Waiting       int                   `json:"waiting"`
	Served        int                   `json:"served"`
	Usage         models.UsageAnalytics `json:"usage"`
	Limit         MonthlyLimit          `json:"limit"`
	PremiumActive bool                  `json:"premium_active"`
}

// QueueService owns the live queue: registration, joins, seating and the
// monthly usage counters that gate joins.
type QueueService struct {
	store     RestaurantStore
	clock     Clock
	notifier  Notifier
	freeLimit int
	intn      func(n int) int
}

func NewQueueService(store RestaurantStore, clock Clock, notifier Notifier, freeLimit int) *QueueService {
	if freeLimit <= 0 {
		freeLimit = DefaultFreeMonthlyLimit
	}
	return &QueueService{
		store:     store,
		clock:     clock,
		notifier:  orNoop(notifier),
		freeLimit: freeLimit,
		intn:      rand.IntN,
	}
}

func (s *QueueService) FreeLimit() int { return s.freeLimit }

func (s *QueueService) RegisterRestaurant(ctx context.Context, req RegisterRequest) (*models.Restaurant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: restaurant name is required", models.ErrInvalidInput)
	}

	now := s.clock.Now()
	today := now.Format(DateLayout)
	r := &models.Restaurant{
		ID:              uuid.NewString(),
		Name:            name,
		OwnerName:       strings.TrimSpace(req.OwnerName),
		Phone:           strings.TrimSpace(req.Phone),
		Plan:            models.PlanFree,
		PlanStatus:      models.PlanStatusActive,
		MonthlyHistory:  datatypes.JSONSlice[models.MonthlySnapshot]{},
		LastCleanupDate: today,
	}
	r.ResetQueue()
	r.SetArchiveEntries(models.ArchiveMap{})
	r.SetUsage(models.UsageAnalytics{
		CurrentMonth:  currentMonth(now),
		LastResetDate: today,
		DailyStats:    map[string]int{},
	})

	if err := s.store.CreateRestaurant(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to create restaurant: %w", err)
	}
	utils.InfoLogger.Printf("New restaurant registered: %s (%s)", r.Name, r.ID)
	return r, nil
}

func (s *QueueService) Join(ctx context.Context, restaurantID string, req JoinRequest) (*JoinResult, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		return nil, fmt.Errorf("%w: name and phone are required", models.ErrInvalidInput)
	}
	if req.Guests < 1 {
		return nil, fmt.Errorf("%w: guests must be at least 1", models.ErrInvalidInput)
	}

	var result *JoinResult
	_, err := s.store.UpdateRestaurant(ctx, restaurantID, func(r *models.Restaurant) ([]models.ArchivePart, error) {
		now := s.clock.Now()
		today := now.Format(DateLayout)

		usage := s.rollover(r, now)
		s.snapshotExpiry(r, &usage, now)

		limit := EffectiveLimit(r, usage, now, s.freeLimit)
		if !limit.Allows(usage.CustomersThisMonth) {
			return nil, &models.LimitError{
				Message:       limitMessage(r, usage, s.freeLimit),
				CustomersUsed: usage.CustomersThisMonth,
				Limit:         limit.Value,
			}
		}

		customer := models.CustomerRecord{
			QueueNumber: s.nextQueueNumber(r.Queue),
			Name:        name,
			Phone:       phone,
			Guests:      req.Guests,
			JoinedAt:    now,
			Status:      models.StatusWaiting,
		}
		r.Queue = append(r.Queue, customer)

		usage.CustomersThisMonth++
		usage.DailyStats[today]++
		r.SetUsage(usage)

		result = &JoinResult{
			Customer:           customer,
			Position:           waitingPosition(r.Queue, customer.QueueNumber),
			CustomersThisMonth: usage.CustomersThisMonth,
			Limit:              limit,
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(restaurantID, EventQueueJoined, result.Customer)
	return result, nil
}

// rollover closes the previous month into the history when the month changed.
func (s *QueueService) rollover(r *models.Restaurant, now time.Time) models.UsageAnalytics {
	usage := r.UsageData()
	month := currentMonth(now)
	if usage.CurrentMonth == month {
		return usage
	}

	if usage.CurrentMonth != "" {
		r.MonthlyHistory = append(r.MonthlyHistory, models.MonthlySnapshot{
			Month:             usage.CurrentMonth,
			TotalCustomers:    usage.CustomersThisMonth,
			DailyStats:        usage.DailyStats,
			CustomersAtExpiry: usage.CustomersAtExpiry,
			ExpiredAt:         usage.ExpiredAt,
			ArchivedAt:        now,
		})
	}
	return models.UsageAnalytics{
		CurrentMonth:  month,
		LastResetDate: now.Format(DateLayout),
		DailyStats:    map[string]int{},
	}
}

// snapshotExpiry records the month's usage at the first join after a premium
// plan expired in the current month.
func (s *QueueService) snapshotExpiry(r *models.Restaurant, usage *models.UsageAnalytics, now time.Time) {
	if r.Plan != models.PlanPremium || r.PlanExpiryDate == nil || !r.PlanExpiryDate.Before(now) {
		return
	}
	if usage.CustomersAtExpiry.IsSome() || !expiredInMonthOf(r, now) {
		return
	}
	usage.CustomersAtExpiry = models.Some(usage.CustomersThisMonth)
	usage.ExpiredAt = models.Some(*r.PlanExpiryDate)
	utils.InfoLogger.Printf("Expiry snapshot for %s: %d customers at expiry", r.ID, usage.CustomersThisMonth)
}

// nextQueueNumber picks an unused A-NNN number starting from a random offset.
func (s *QueueService) nextQueueNumber(queue []models.CustomerRecord) string {
	used := make(map[string]bool, len(queue))
	for _, c := range queue {
		used[c.QueueNumber] = true
	}
	start := s.intn(900)
	for i := 0; i < 900; i++ {
		candidate := fmt.Sprintf("A-%d", 100+(start+i)%900)
		if !used[candidate] {
			return candidate
		}
	}
	return fmt.Sprintf("A-%d", 1000+len(queue))
}

func waitingPosition(queue []models.CustomerRecord, queueNumber string) int {
	position := 0
	for _, c := range queue {
		if c.Status != models.StatusWaiting {
			continue
		}
		position++
		if c.QueueNumber == queueNumber {
			return position
		}
	}
	return 0
}

func (s *QueueService) Allocate(ctx context.Context, restaurantID, queueNumber, tableNo string) (*models.CustomerRecord, error) {
	tableNo = strings.TrimSpace(tableNo)
	if tableNo == "" {
		return nil, fmt.Errorf("%w: table number is required", models.ErrInvalidInput)
	}

	var seated models.CustomerRecord
	_, err := s.store.UpdateRestaurant(ctx, restaurantID, func(r *models.Restaurant) ([]models.ArchivePart, error) {
		idx := r.FindQueueEntry(queueNumber)
		if idx < 0 {
			return nil, models.ErrQueueEntryNotFound
		}
		r.Queue[idx].Allocate(tableNo, s.clock.Now())
		seated = r.Queue[idx]
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(restaurantID, EventTableAllocated, seated)
	return &seated, nil
}

func (s *QueueService) Status(ctx context.Context, restaurantID, queueNumber string) (*QueueStatus, error) {
	r, err := s.store.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	idx := r.FindQueueEntry(queueNumber)
	if idx < 0 {
		return nil, models.ErrQueueEntryNotFound
	}

	status := &QueueStatus{RestaurantName: r.Name, Customer: r.Queue[idx]}
	status.Position = waitingPosition(r.Queue, queueNumber)
	if status.Position > 0 {
		status.WaitingAhead = status.Position - 1
	}
	return status, nil
}

func (s *QueueService) Restaurant(ctx context.Context, restaurantID string) (*models.Restaurant, error) {
	return s.store.GetRestaurant(ctx, restaurantID)
}

func (s *QueueService) Dashboard(ctx context.Context, restaurantID string) (*Dashboard, error) {
	r, err := s.store.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	usage := r.UsageData()
	if usage.CurrentMonth != currentMonth(now) {
		// nobody joined yet this month
		usage = models.UsageAnalytics{CurrentMonth: currentMonth(now), DailyStats: map[string]int{}}
	}

	d := &Dashboard{
		Restaurant:    r,
		Usage:         usage,
		Limit:         EffectiveLimit(r, usage, now, s.freeLimit),
		PremiumActive: r.IsPremiumActive(now),
	}
	for _, c := range r.Queue {
		if c.Status == models.StatusAllocated {
			d.Served++
		} else {
			d.Waiting++
		}
	}
	return d, nil
}
