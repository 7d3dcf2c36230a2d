package services

import (
	"errors"
	"time"

	"github.com/Dosada05/vr-score-keeper/models"
	"github.com/Dosada05/vr-score-keeper/repositories"
	"github.com/Dosada05/vr-score-keeper/storage"
)

// handleRepositoryError converts repository sentinels into the service-level
// errors callers match on. Anything else is returned unchanged.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrScoreNotFound):
		return ErrScoreNotFound
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrUserUsernameConflict):
		return ErrUsernameConflict
	case errors.Is(err, repositories.ErrPlayerNameConflict):
		return newValidationError("name", playerNameTakenMessage)
	}
	return err
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func populatePlayerAvatarURL(player *models.Player, uploader storage.FileUploader) {
	if player != nil && player.AvatarKey != nil && *player.AvatarKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*player.AvatarKey)
		if url != "" {
			player.AvatarURL = &url
		}
	}
}

// truncateToDate drops the time of day, keeping t's location.
func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

const dateLayout = "2006-01-02"
