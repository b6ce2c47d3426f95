package services

import (
	"context"
	"errors"

	"learnhub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory Store for tests
type memStore struct {
	profiles  map[primitive.ObjectID]models.GamificationProfile
	txs       []models.PointTransaction
	defs      map[string]models.BadgeDefinition
	users     map[primitive.ObjectID]models.User
	chals     map[string]models.DailyChallenge
	prog      map[string]models.UserChallengeProgress
	failSaves bool
}

func newMemStore() *memStore {
	return &memStore{
		profiles: map[primitive.ObjectID]models.GamificationProfile{},
		defs:     map[string]models.BadgeDefinition{},
		users:    map[primitive.ObjectID]models.User{},
		chals:    map[string]models.DailyChallenge{},
		prog:     map[string]models.UserChallengeProgress{},
	}
}

var errSaveFailed = errors.New("save failed")

func (m *memStore) GetProfile(_ context.Context, userID primitive.ObjectID) (*models.GamificationProfile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	cp := p
	cp.Badges = append([]models.EarnedBadge(nil), p.Badges...)
	cp.Milestones = append([]models.Milestone(nil), p.Milestones...)
	return &cp, nil
}

func (m *memStore) SaveProfile(_ context.Context, profile *models.GamificationProfile) error {
	if m.failSaves {
		return errSaveFailed
	}
	if profile.ID.IsZero() {
		profile.ID = primitive.NewObjectID()
	}
	m.profiles[profile.UserID] = *profile
	return nil
}

func (m *memStore) InsertTransaction(_ context.Context, tx *models.PointTransaction) error {
	if tx.ID.IsZero() {
		tx.ID = primitive.NewObjectID()
	}
	m.txs = append(m.txs, *tx)
	return nil
}

func (m *memStore) RecentTransactions(_ context.Context, userID primitive.ObjectID, limit int64) ([]models.PointTransaction, error) {
	var out []models.PointTransaction
	for i := len(m.txs) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if m.txs[i].UserID == userID {
			out = append(out, m.txs[i])
		}
	}
	return out, nil
}

func (m *memStore) UpsertBadgeDefinition(_ context.Context, def models.BadgeDefinition) error {
	if _, ok := m.defs[def.BadgeID]; !ok {
		m.defs[def.BadgeID] = def
	}
	return nil
}

func (m *memStore) ListBadgeDefinitions(_ context.Context) ([]models.BadgeDefinition, error) {
	out := make([]models.BadgeDefinition, 0, len(m.defs))
	for _, def := range m.defs {
		out = append(out, def)
	}
	return out, nil
}

func (m *memStore) TopProfiles(_ context.Context, limit int64) ([]models.GamificationProfile, error) {
	var out []models.GamificationProfile
	for _, p := range m.profiles {
		out = append(out, p)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].TotalPoints > out[i].TotalPoints {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) UsersByID(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := map[primitive.ObjectID]models.User{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (m *memStore) GetDailyChallenge(_ context.Context, courseID, date string) (*models.DailyChallenge, error) {
	ch, ok := m.chals[courseID+"|"+date]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	return &ch, nil
}

func (m *memStore) SaveDailyChallenge(_ context.Context, ch *models.DailyChallenge) error {
	if ch.ID.IsZero() {
		ch.ID = primitive.NewObjectID()
	}
	m.chals[ch.CourseID+"|"+ch.Date] = *ch
	return nil
}

func (m *memStore) GetChallengeProgress(_ context.Context, userID, challengeID primitive.ObjectID) (*models.UserChallengeProgress, error) {
	p, ok := m.prog[userID.Hex()+"|"+challengeID.Hex()]
	if !ok {
		return nil, ErrProgressNotFound
	}
	cp := p
	return &cp, nil
}

func (m *memStore) SaveChallengeProgress(_ context.Context, progress *models.UserChallengeProgress) error {
	if progress.ID.IsZero() {
		progress.ID = primitive.NewObjectID()
	}
	m.prog[progress.UserID.Hex()+"|"+progress.ChallengeID.Hex()] = *progress
	return nil
}

// userTxSum adds up all ledger entries for a user
func (m *memStore) userTxSum(userID primitive.ObjectID) int {
	sum := 0
	for _, tx := range m.txs {
		if tx.UserID == userID {
			sum += tx.Points
		}
	}
	return sum
}
