package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Social holds optional links shown on a full profile page.
type Social struct {
	YouTube   string `json:"youtube,omitempty"   bson:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"   bson:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"  bson:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"  bson:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty" bson:"instagram,omitempty"`
}

// Profile is a single document in the profiles collection, one per user.
type Profile struct {
	ID             primitive.ObjectID `json:"_id"                      bson:"_id,omitempty"`
	User           string             `json:"-"                        bson:"user"`
	Company        string             `json:"company,omitempty"        bson:"company,omitempty"`
	Website        string             `json:"website,omitempty"        bson:"website,omitempty"`
	Location       string             `json:"location,omitempty"       bson:"location,omitempty"`
	Status         string             `json:"status"                   bson:"status"`
	Skills         []string           `json:"skills"                   bson:"skills"`
	Bio            string             `json:"bio,omitempty"            bson:"bio,omitempty"`
	GitHubUsername string             `json:"githubusername,omitempty" bson:"githubusername,omitempty"`
	Social         *Social            `json:"social,omitempty"         bson:"social,omitempty"`
	UpdatedAt      time.Time          `json:"date"                     bson:"date"`
}

// ProfileOwner is the subset of a user embedded into profile responses.
type ProfileOwner struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// ProfileView is a profile with its owner's name and avatar filled in.
type ProfileView struct {
	Profile
	User ProfileOwner `json:"user"`
}

// ProfileCard is the read-only summary shown in the developer list.
type ProfileCard struct {
	UserID   string   `json:"user_id"`
	Name     string   `json:"name"`
	Avatar   string   `json:"avatar"`
	Headline string   `json:"headline"`
	Location string   `json:"location,omitempty"`
	Skills   []string `json:"skills"`
	Link     string   `json:"link"`
}

// ProfileRequest is the JSON body for POST /api/profile.
type ProfileRequest struct {
	Company        string    `json:"company"`
	Website        string    `json:"website"`
	Location       string    `json:"location"`
	Status         string    `json:"status"`
	Skills         SkillList `json:"skills"`
	Bio            string    `json:"bio"`
	GitHubUsername string    `json:"githubusername"`
	YouTube        string    `json:"youtube"`
	Twitter        string    `json:"twitter"`
	Facebook       string    `json:"facebook"`
	LinkedIn       string    `json:"linkedin"`
	Instagram      string    `json:"instagram"`
}

// SkillList accepts either a JSON array or a comma-separated string.
type SkillList []string

func (s *SkillList) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		raw = strings.Split(joined, ",")
	}
	out := make([]string, 0, len(raw))
	for _, skill := range raw {
		if skill = strings.TrimSpace(skill); skill != "" {
			out = append(out, skill)
		}
	}
	*s = out
	return nil
}
