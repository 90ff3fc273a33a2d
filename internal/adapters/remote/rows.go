package remote

import (
	"github.com/okian/podium/internal/domain/model"
	"github.com/uptrace/bun"
)

// userRow maps the users table. username_fold backs the
// case-insensitive uniqueness constraint.
type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                string `bun:"id,pk"`
	Username          string `bun:"username,notnull"`
	UsernameFold      string `bun:"username_fold,notnull,unique"`
	DisplayName       string `bun:"display_name"`
	CredentialHash    string `bun:"credential_hash"`
	TotalAwards       int    `bun:"total_awards"`
	RacesParticipated int    `bun:"races_participated"`
}

func toUserRow(u model.User) userRow {
	return userRow{
		ID:                u.ID,
		Username:          u.Username,
		UsernameFold:      model.NormalizeUsername(u.Username),
		DisplayName:       u.DisplayName,
		CredentialHash:    u.CredentialHash,
		TotalAwards:       u.TotalAwards,
		RacesParticipated: u.RacesParticipated,
	}
}

func (r userRow) toModel() model.User {
	return model.User{
		ID:                r.ID,
		Username:          r.Username,
		DisplayName:       r.DisplayName,
		CredentialHash:    r.CredentialHash,
		TotalAwards:       r.TotalAwards,
		RacesParticipated: r.RacesParticipated,
	}
}

// raceRow maps the races table. The result lives in three nullable
// columns so publish/retract can patch them without the full record.
type raceRow struct {
	bun.BaseModel `bun:"table:races,alias:r"`

	ID             string   `bun:"id,pk"`
	Name           string   `bun:"name,notnull"`
	City           string   `bun:"city"`
	Date           string   `bun:"date,notnull"`
	LocalStartTime string   `bun:"local_start_time"`
	TimezoneID     string   `bun:"timezone_id"`
	ResultFirst    *string  `bun:"result_first"`
	ResultSecond   *string  `bun:"result_second"`
	ResultThird    *string  `bun:"result_third"`
	AwardWinners   []string `bun:"award_winners,array"`
}

func toRaceRow(rc model.Race) raceRow {
	row := raceRow{
		ID:             rc.ID,
		Name:           rc.Name,
		City:           rc.City,
		Date:           rc.Date,
		LocalStartTime: rc.LocalStartTime,
		TimezoneID:     rc.TimezoneID,
		AwardWinners:   rc.AwardWinners,
	}
	if rc.Result != nil {
		row.ResultFirst = &rc.Result.First
		row.ResultSecond = &rc.Result.Second
		row.ResultThird = &rc.Result.Third
	}
	return row
}

func (r raceRow) toModel() model.Race {
	rc := model.Race{
		ID:             r.ID,
		Name:           r.Name,
		City:           r.City,
		Date:           r.Date,
		LocalStartTime: r.LocalStartTime,
		TimezoneID:     r.TimezoneID,
		AwardWinners:   r.AwardWinners,
	}
	if r.ResultFirst != nil && r.ResultSecond != nil && r.ResultThird != nil {
		rc.Result = &model.RaceResult{
			First:  *r.ResultFirst,
			Second: *r.ResultSecond,
			Third:  *r.ResultThird,
		}
	}
	return rc
}

// predictionRow maps the predictions table, keyed (race_id, user_id)
// for upsert semantics.
type predictionRow struct {
	bun.BaseModel `bun:"table:predictions,alias:p"`

	RaceID string `bun:"race_id,pk"`
	UserID string `bun:"user_id,pk"`
	First  string `bun:"first,notnull"`
	Second string `bun:"second,notnull"`
	Third  string `bun:"third,notnull"`
}

func toPredictionRow(up model.UserPrediction) predictionRow {
	return predictionRow{
		RaceID: up.RaceID,
		UserID: up.UserID,
		First:  up.Prediction.First,
		Second: up.Prediction.Second,
		Third:  up.Prediction.Third,
	}
}

func (r predictionRow) toModel() model.UserPrediction {
	return model.UserPrediction{
		RaceID: r.RaceID,
		UserID: r.UserID,
		Prediction: model.Prediction{
			First:  r.First,
			Second: r.Second,
			Third:  r.Third,
		},
	}
}
