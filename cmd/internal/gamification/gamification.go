package gamification

import (
	"fmt"
	"time"

	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/domain/entity"
	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/utils"
	"github.com/labstack/gommon/log"
)

const (
	// CompletionBonusPoints is the fixed bonus awarded for every completed
	// donation, on top of any achievement points.
	CompletionBonusPoints = 50

	// NotificationExpiry is how long donation lifecycle notifications stay
	// active for the user.
	NotificationExpiry = 24 * time.Hour
)

type UnlockedAchievement struct {
	AchievementID string `json:"achievement_id"`
	Points        int    `json:"points"`
	UnlockedAt    int64  `json:"unlocked_at"`
}

type DonorStore interface {
	FindByID(id string) (*entity.Donor, error)
	Save(donor *entity.Donor) error
}

// Milestones unlocked by lifetime donation count.
var donationMilestones = []struct {
	ID       string
	Required int
	Points   int
}{
	{"first-donation", 1, 100},
	{"regular-donor", 5, 250},
	{"veteran-donor", 10, 500},
}

// Evaluator reacts to completed donations: it bumps the donor's lifetime
// count, awards the completion bonus and unlocks milestone achievements.
type Evaluator struct {
	Donors DonorStore
}

func NewEvaluator(donors DonorStore) *Evaluator {
	return &Evaluator{Donors: donors}
}

func (e *Evaluator) OnDonationCompleted(userID string) ([]UnlockedAchievement, error) {
	donor, err := e.Donors.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if donor == nil {
		return nil, fmt.Errorf("donor %s not found", userID)
	}

	donor.TimesDonated++
	donor.TotalPoints += CompletionBonusPoints

	now := utils.NowUTC()
	var unlocked []UnlockedAchievement
	for _, m := range donationMilestones {
		if donor.TimesDonated == m.Required {
			donor.TotalPoints += m.Points
			unlocked = append(unlocked, UnlockedAchievement{
				AchievementID: m.ID,
				Points:        m.Points,
				UnlockedAt:    now,
			})
		}
	}

	donor.UpdatedAt = now
	if err := e.Donors.Save(donor); err != nil {
		return nil, err
	}
	return unlocked, nil
}

// LogNotifier is the default notifier: delivery infrastructure lives outside
// this service, so lifecycle events are only recorded in the log.
type LogNotifier struct{}

func (LogNotifier) Notify(userID, eventKind string, expiry time.Duration) error {
	log.Infof("notification %q for user %s (expires in %s)", eventKind, userID, expiry)
	return nil
}
