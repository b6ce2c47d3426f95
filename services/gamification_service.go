package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"learnhub/models"
	"learnhub/points"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Streak bonus tiers. The weekly check runs before the monthly one, so a
// streak divisible by both 7 and 30 (e.g. 210) gets the weekly bonus.
const (
	streakBonusDaily   = 10
	streakBonusWeekly  = 50
	streakBonusMonthly = 200
)

const (
	earlyBirdCutoffHour = 8
	nightOwlStartHour   = 22
)

// GamificationService runs the point/level/badge/streak engine over a Store.
// Profile mutations for the same user are serialized through a keyed mutex,
// so a read-modify-write can never lose a concurrent update and the ledger
// sum stays equal to the profile's total points.
type GamificationService struct {
	store Store
	locks userLocks
	now   func() time.Time
}

var gamificationService *GamificationService

// InitGamificationService wires the singleton used by the HTTP layer
func InitGamificationService(store Store) {
	gamificationService = NewGamificationService(store)
}

// GetGamificationService returns the singleton service
func GetGamificationService() *GamificationService {
	return gamificationService
}

// NewGamificationService creates a service over the given store
func NewGamificationService(store Store) *GamificationService {
	return &GamificationService{
		store: store,
		now:   time.Now,
	}
}

// userLocks serializes profile mutations per user id
type userLocks struct {
	mu    sync.Mutex
	locks map[primitive.ObjectID]*sync.Mutex
}

func (l *userLocks) acquire(id primitive.ObjectID) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[primitive.ObjectID]*sync.Mutex)
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// AwardResult is returned by AwardPoints
type AwardResult struct {
	Profile     *models.GamificationProfile `json:"profile"`
	Transaction *models.PointTransaction    `json:"transaction"`
	NewBadges   []models.BadgeDefinition    `json:"newBadges"`
	LeveledUp   bool                        `json:"leveledUp"`
	Warnings    []string                    `json:"warnings,omitempty"`
}

// StreakResult is returned by UpdateStreak
type StreakResult struct {
	Profile      *models.GamificationProfile `json:"profile"`
	StreakBroken bool                        `json:"streakBroken"`
	BonusPoints  int                         `json:"bonusPoints"`
}

// newProfile returns a fresh profile with documented defaults
func (s *GamificationService) newProfile(userID primitive.ObjectID) *models.GamificationProfile {
	now := s.now()
	return &models.GamificationProfile{
		UserID:            userID,
		Level:             points.InitialLevel,
		PointsToNextLevel: points.InitialThreshold,
		Badges:            []models.EarnedBadge{},
		Milestones:        []models.Milestone{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// fetchOrCreate loads the user's profile, creating an unsaved default when
// none exists yet. The bool reports whether the profile is new.
func (s *GamificationService) fetchOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.GamificationProfile, bool, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err == ErrProfileNotFound {
		return s.newProfile(userID), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return profile, false, nil
}

// applyPoints routes a delta through the level engine and keeps TotalPoints
// in step. Returns the number of levels gained.
func applyPoints(p *models.GamificationProfile, delta int) (int, error) {
	prog := points.Progress{
		Level:              p.Level,
		CurrentLevelPoints: p.CurrentLevelPoints,
		PointsToNextLevel:  p.PointsToNextLevel,
	}
	gained, err := points.Apply(&prog, delta)
	if err != nil {
		return 0, err
	}
	p.TotalPoints += delta
	p.Level = prog.Level
	p.CurrentLevelPoints = prog.CurrentLevelPoints
	p.PointsToNextLevel = prog.PointsToNextLevel
	return gained, nil
}

// AwardPoints applies a point-granting event: level engine, activity
// counters, badge checks and the audit transaction. The profile is created
// on first use. Badge-check failures after the primary write succeed are
// reported as warnings rather than failing the award.
func (s *GamificationService) AwardPoints(ctx context.Context, userID primitive.ObjectID, pts int, txType, description string, meta *models.TransactionMetadata) (*AwardResult, error) {
	unlock := s.locks.acquire(userID)
	defer unlock()

	profile, _, err := s.fetchOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	previousLevel := profile.Level
	if _, err := applyPoints(profile, pts); err != nil {
		return nil, err
	}

	// Exactly one activity counter moves per event, by one, regardless of
	// the point value. Bonus-style types move none.
	switch txType {
	case models.TxLectureCompleted:
		profile.TotalLecturesCompleted++
	case models.TxQuizPassed:
		profile.TotalQuizzesPassed++
	case models.TxQuizPerfect:
		profile.TotalQuizzesPassed++
		profile.TotalPerfectQuizzes++
	case models.TxCourseCompleted:
		profile.TotalCoursesCompleted++
	}

	profile.UpdatedAt = s.now()
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	result := &AwardResult{
		Profile:   profile,
		LeveledUp: profile.Level > previousLevel,
	}

	triggers := triggersForTx(txType)
	if profile.Level > previousLevel {
		triggers = append(triggers, TriggerLevel)
	}
	for _, trigger := range triggers {
		newBadges, err := s.awardEligibleBadges(ctx, profile, trigger)
		if err != nil {
			log.Printf("Badge check failed for user %s trigger %s: %v", userID.Hex(), trigger, err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("badge check %q failed", trigger))
			continue
		}
		result.NewBadges = append(result.NewBadges, newBadges...)
	}
	if len(result.NewBadges) > 0 {
		profile.UpdatedAt = s.now()
		if err := s.store.SaveProfile(ctx, profile); err != nil {
			log.Printf("Failed to persist badge awards for user %s: %v", userID.Hex(), err)
			result.Warnings = append(result.Warnings, "badge awards not persisted")
		}
	}

	tx := &models.PointTransaction{
		UserID:      userID,
		Points:      pts,
		Type:        txType,
		Description: description,
		Metadata:    meta,
		CreatedAt:   s.now(),
	}
	if err := s.store.InsertTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}
	result.Transaction = tx

	return result, nil
}

// triggersForTx derives the badge triggers a transaction type fires. A
// perfect quiz also counts as a passed quiz.
func triggersForTx(txType string) []string {
	switch txType {
	case models.TxLectureCompleted:
		return []string{TriggerLecture}
	case models.TxQuizPassed:
		return []string{TriggerQuiz}
	case models.TxQuizPerfect:
		return []string{TriggerQuizPerfect, TriggerQuiz}
	case models.TxCourseCompleted:
		return []string{TriggerCourse}
	}
	return nil
}

// CheckAndAwardBadges evaluates the catalog slice selected by trigger
// against the user's profile and awards anything newly satisfied. Without a
// profile there is nothing to award.
func (s *GamificationService) CheckAndAwardBadges(ctx context.Context, userID primitive.ObjectID, trigger string) ([]models.BadgeDefinition, error) {
	unlock := s.locks.acquire(userID)
	defer unlock()

	profile, err := s.store.GetProfile(ctx, userID)
	if err == ErrProfileNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	awarded, err := s.awardEligibleBadges(ctx, profile, trigger)
	if err != nil {
		return nil, err
	}
	if len(awarded) > 0 {
		profile.UpdatedAt = s.now()
		if err := s.store.SaveProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to save profile: %w", err)
		}
	}
	return awarded, nil
}

// awardEligibleBadges mutates the profile in place for every catalog badge
// matching the trigger whose criterion is newly met. Bonus points run
// through the level engine; each award gets its own milestone transaction
// and the catalog row is self-healed into the store. The caller persists
// the profile.
func (s *GamificationService) awardEligibleBadges(ctx context.Context, profile *models.GamificationProfile, trigger string) ([]models.BadgeDefinition, error) {
	criteriaType, ok := triggerCriteria[trigger]
	if !ok {
		return nil, nil
	}

	var awarded []models.BadgeDefinition
	for _, def := range badgeCatalog {
		if def.Criteria == nil || def.Criteria.Type != criteriaType {
			continue
		}
		if profile.HasBadge(def.BadgeID) {
			continue
		}
		if !criteriaMet(def.Criteria, profile) {
			continue
		}
		if err := s.grantBadge(ctx, profile, def); err != nil {
			return awarded, err
		}
		awarded = append(awarded, def)
	}
	return awarded, nil
}

// grantBadge appends the badge, routes its bonus points through the level
// engine and records the milestone transaction. Never called for a badge
// the profile already holds.
func (s *GamificationService) grantBadge(ctx context.Context, profile *models.GamificationProfile, def models.BadgeDefinition) error {
	now := s.now()
	profile.Badges = append(profile.Badges, models.EarnedBadge{
		BadgeID:  def.BadgeID,
		EarnedAt: now,
		Progress: 100,
	})
	profile.Milestones = append(profile.Milestones, models.Milestone{
		Type:       "badge:" + def.BadgeID,
		AchievedAt: now,
	})

	if def.Points > 0 {
		if _, err := applyPoints(profile, def.Points); err != nil {
			return err
		}
		tx := &models.PointTransaction{
			UserID:      profile.UserID,
			Points:      def.Points,
			Type:        models.TxMilestoneReached,
			Description: fmt.Sprintf("Earned badge: %s", def.Name),
			CreatedAt:   now,
		}
		if err := s.store.InsertTransaction(ctx, tx); err != nil {
			return fmt.Errorf("failed to record badge transaction: %w", err)
		}
	}

	// Self-healing catalog: make sure the store carries this definition
	if err := s.store.UpsertBadgeDefinition(ctx, def); err != nil {
		log.Printf("Failed to upsert badge definition %s: %v", def.BadgeID, err)
	}
	return nil
}

// CheckTimeBasedBadges awards early_bird / night_owl depending on the hour.
// Called from the lecture-completion path.
func (s *GamificationService) CheckTimeBasedBadges(ctx context.Context, userID primitive.ObjectID, hour int) ([]models.BadgeDefinition, error) {
	var candidates []string
	if hour < earlyBirdCutoffHour {
		candidates = append(candidates, "early_bird")
	}
	if hour >= nightOwlStartHour {
		candidates = append(candidates, "night_owl")
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	unlock := s.locks.acquire(userID)
	defer unlock()

	profile, err := s.store.GetProfile(ctx, userID)
	if err == ErrProfileNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var awarded []models.BadgeDefinition
	for _, badgeID := range candidates {
		def, ok := findBadgeDefinition(badgeID)
		if !ok || profile.HasBadge(badgeID) {
			continue
		}
		if err := s.grantBadge(ctx, profile, def); err != nil {
			return awarded, err
		}
		awarded = append(awarded, def)
	}
	if len(awarded) > 0 {
		profile.UpdatedAt = s.now()
		if err := s.store.SaveProfile(ctx, profile); err != nil {
			return awarded, fmt.Errorf("failed to save profile: %w", err)
		}
	}
	return awarded, nil
}

// AwardBadgeManually awards a single catalog badge to a user, for the admin
// surface. Duplicate awards are rejected, never double-granted.
func (s *GamificationService) AwardBadgeManually(ctx context.Context, userID primitive.ObjectID, badgeID string) (*models.BadgeDefinition, error) {
	def, ok := findBadgeDefinition(badgeID)
	if !ok {
		return nil, ErrBadgeNotFound
	}

	unlock := s.locks.acquire(userID)
	defer unlock()

	profile, _, err := s.fetchOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.HasBadge(badgeID) {
		return nil, ErrBadgeAlreadyOwned
	}
	if err := s.grantBadge(ctx, profile, def); err != nil {
		return nil, err
	}
	profile.UpdatedAt = s.now()
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return &def, nil
}

// streakBonus returns the bonus for reaching the given streak length.
// Weekly multiples win over monthly ones when both divide.
func streakBonus(streak int) int {
	switch {
	case streak%7 == 0:
		return streakBonusWeekly
	case streak%30 == 0:
		return streakBonusMonthly
	default:
		return streakBonusDaily
	}
}

// daysBetween counts whole calendar days between two instants, comparing
// midnights in UTC.
func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.UTC().Date()
	ty, tm, td := to.UTC().Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// UpdateStreak continues or resets the user's daily streak. Calling it
// twice on the same calendar day is a no-op the second time.
func (s *GamificationService) UpdateStreak(ctx context.Context, userID primitive.ObjectID) (*StreakResult, error) {
	unlock := s.locks.acquire(userID)
	defer unlock()

	now := s.now()

	profile, created, err := s.fetchOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if created {
		profile.CurrentStreak = 1
		profile.LongestStreak = 1
		profile.LastActivityDate = now
		if err := s.store.SaveProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to save profile: %w", err)
		}
		return &StreakResult{Profile: profile}, nil
	}

	diffDays := daysBetween(profile.LastActivityDate, now)
	if diffDays == 0 {
		// Already counted today
		return &StreakResult{Profile: profile}, nil
	}

	result := &StreakResult{Profile: profile}
	if diffDays == 1 {
		profile.CurrentStreak++
		result.BonusPoints = streakBonus(profile.CurrentStreak)
		if profile.CurrentStreak > profile.LongestStreak {
			profile.LongestStreak = profile.CurrentStreak
		}
		if profile.CurrentStreak%7 == 0 {
			profile.Milestones = append(profile.Milestones, models.Milestone{
				Type:       fmt.Sprintf("streak_%d", profile.CurrentStreak),
				AchievedAt: now,
			})
		}
	} else {
		profile.CurrentStreak = 1
		result.StreakBroken = true
	}
	profile.LastActivityDate = now

	if result.BonusPoints > 0 {
		if _, err := applyPoints(profile, result.BonusPoints); err != nil {
			return nil, err
		}
	}

	if _, err := s.awardEligibleBadges(ctx, profile, TriggerStreak); err != nil {
		log.Printf("Streak badge check failed for user %s: %v", userID.Hex(), err)
	}

	profile.UpdatedAt = now
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	if result.BonusPoints > 0 {
		tx := &models.PointTransaction{
			UserID:      userID,
			Points:      result.BonusPoints,
			Type:        models.TxStreakBonus,
			Description: fmt.Sprintf("%d-day streak bonus", profile.CurrentStreak),
			CreatedAt:   now,
		}
		if err := s.store.InsertTransaction(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to record streak transaction: %w", err)
		}
	}

	return result, nil
}

// InitializeBadgeCatalog seeds every static badge definition into the
// store. Idempotent, safe to run at every startup.
func (s *GamificationService) InitializeBadgeCatalog(ctx context.Context) error {
	for _, def := range badgeCatalog {
		if err := s.store.UpsertBadgeDefinition(ctx, def); err != nil {
			return fmt.Errorf("failed to seed badge %s: %w", def.BadgeID, err)
		}
	}
	return nil
}

// GetProfile returns the user's profile plus their 10 most recent point
// transactions, creating the profile with defaults if absent.
func (s *GamificationService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.GamificationProfile, []models.PointTransaction, error) {
	unlock := s.locks.acquire(userID)
	defer unlock()

	profile, created, err := s.fetchOrCreate(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if created {
		if err := s.store.SaveProfile(ctx, profile); err != nil {
			return nil, nil, fmt.Errorf("failed to save profile: %w", err)
		}
	}

	txs, err := s.store.RecentTransactions(ctx, userID, 10)
	if err != nil {
		return nil, nil, err
	}
	return profile, txs, nil
}

// GetBadgeCatalog returns the full catalog and, when a user is given, the
// subset they earned.
func (s *GamificationService) GetBadgeCatalog(ctx context.Context, userID *primitive.ObjectID) ([]models.BadgeDefinition, []models.EarnedBadge, error) {
	defs := BadgeCatalog()
	if userID == nil {
		return defs, nil, nil
	}
	profile, err := s.store.GetProfile(ctx, *userID)
	if err == ErrProfileNotFound {
		return defs, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return defs, profile.Badges, nil
}
