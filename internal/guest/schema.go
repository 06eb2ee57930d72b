package guest

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/keysprint/internal/model"
)

const schemaVersion = 1

type envelope struct {
	Version int                 `json:"version"`
	Profile *model.GuestProfile `json:"profile"`
}

func encodeProfile(p model.GuestProfile) (string, error) {
	raw, err := json.Marshal(envelope{Version: schemaVersion, Profile: &p})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// decodeProfile parses a stored record. Records written before the envelope
// existed are bare profile objects; those decode with migrated=true.
func decodeProfile(raw string) (profile model.GuestProfile, migrated bool, err error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return model.GuestProfile{}, false, err
	}
	if _, ok := probe["version"]; ok {
		env := envelope{Profile: &model.GuestProfile{Preferences: model.DefaultPreferences()}}
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			return model.GuestProfile{}, false, err
		}
		if env.Version != schemaVersion {
			return model.GuestProfile{}, false, fmt.Errorf("unsupported guest profile version %d", env.Version)
		}
		if env.Profile == nil {
			return model.GuestProfile{}, false, errors.New("guest profile envelope has no profile")
		}
		profile = *env.Profile
	} else {
		profile.Preferences = model.DefaultPreferences()
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			return model.GuestProfile{}, false, err
		}
		migrated = true
	}
	if err := validate(&profile); err != nil {
		return model.GuestProfile{}, false, err
	}
	return profile, migrated, nil
}

// validate checks invariants and fills absent collections.
func validate(p *model.GuestProfile) error {
	if p.ID == "" {
		return errors.New("guest profile has no id")
	}
	st := &p.TypingStats
	if len(st.WPM) != len(st.Accuracy) || len(st.WPM) != len(st.Dates) {
		return fmt.Errorf("guest stats length mismatch: wpm=%d accuracy=%d dates=%d",
			len(st.WPM), len(st.Accuracy), len(st.Dates))
	}
	if st.WPM == nil {
		st.WPM = []float64{}
		st.Accuracy = []float64{}
		st.Dates = []time.Time{}
	}
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
	seen := make(map[string]struct{}, len(p.Achievements))
	uniq := p.Achievements[:0]
	for _, a := range p.Achievements {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		uniq = append(uniq, a)
	}
	p.Achievements = uniq
	if !p.Preferences.Theme.Valid() {
		p.Preferences.Theme = model.ThemeSystem
	}
	return nil
}
