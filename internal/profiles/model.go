package profiles

import (
	"time"

	"classify-backend/internal/recommend"
)

// MaxPersonalityTypeLen bounds personality_type in characters.
const MaxPersonalityTypeLen = 4

// Profile is one student's academic profile plus the recommendations generated for it.
type Profile struct {
	ID                int64                      `json:"id"`
	CreatedAt         time.Time                  `json:"created_at"`
	Subjects          []string                   `json:"subjects"`
	Grades            map[string]string          `json:"grades"`
	FavoriteSubjects  []string                   `json:"favorite_subjects"`
	Hobbies           []string                   `json:"hobbies"`
	Interests         []string                   `json:"interests"`
	PersonalityType   string                     `json:"personality_type"`
	PersonalityScores map[string]any             `json:"personality_scores"`
	Recommendations   []recommend.Recommendation `json:"recommendations"`
}

// NewProfile holds the caller-supplied fields of a profile.
type NewProfile struct {
	Subjects          []string
	Grades            map[string]string
	FavoriteSubjects  []string
	Hobbies           []string
	Interests         []string
	PersonalityType   string
	PersonalityScores map[string]any
}

// Input returns the snapshot handed to the recommendation generator.
func (p NewProfile) Input() recommend.Input {
	return recommend.Input{
		Subjects:         p.Subjects,
		Grades:           p.Grades,
		FavoriteSubjects: p.FavoriteSubjects,
		Hobbies:          p.Hobbies,
		Interests:        p.Interests,
		PersonalityType:  p.PersonalityType,
	}
}

// normalized replaces nil collections with empty ones so stored and rendered values agree.
func (p NewProfile) normalized() NewProfile {
	if p.Subjects == nil {
		p.Subjects = []string{}
	}
	if p.Grades == nil {
		p.Grades = map[string]string{}
	}
	if p.FavoriteSubjects == nil {
		p.FavoriteSubjects = []string{}
	}
	if p.Hobbies == nil {
		p.Hobbies = []string{}
	}
	if p.Interests == nil {
		p.Interests = []string{}
	}
	if p.PersonalityScores == nil {
		p.PersonalityScores = map[string]any{}
	}
	return p
}

func (p Profile) clone() Profile {
	out := p
	out.Subjects = append([]string{}, p.Subjects...)
	out.FavoriteSubjects = append([]string{}, p.FavoriteSubjects...)
	out.Hobbies = append([]string{}, p.Hobbies...)
	out.Interests = append([]string{}, p.Interests...)
	out.Grades = make(map[string]string, len(p.Grades))
	for k, v := range p.Grades {
		out.Grades[k] = v
	}
	out.PersonalityScores = make(map[string]any, len(p.PersonalityScores))
	for k, v := range p.PersonalityScores {
		out.PersonalityScores[k] = v
	}
	out.Recommendations = cloneRecommendations(p.Recommendations)
	return out
}

func cloneRecommendations(in []recommend.Recommendation) []recommend.Recommendation {
	out := make([]recommend.Recommendation, len(in))
	for i, r := range in {
		r.CareerPaths = append(recommend.CareerPaths{}, r.CareerPaths...)
		out[i] = r
	}
	return out
}
