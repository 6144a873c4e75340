package profile

import "github.com/eshitag/Dev-connector/internal/models"

// maxCardSkills is how many skills a summary card shows.
const maxCardSkills = 4

// Card builds the summary shown in the developer list.
func Card(v models.ProfileView) models.ProfileCard {
	headline := v.Status
	if v.Company != "" {
		headline += " at " + v.Company
	}
	skills := v.Skills
	if len(skills) > maxCardSkills {
		skills = skills[:maxCardSkills]
	}
	if skills == nil {
		skills = []string{}
	}
	return models.ProfileCard{
		UserID:   v.User.ID,
		Name:     v.User.Name,
		Avatar:   v.User.Avatar,
		Headline: headline,
		Location: v.Location,
		Skills:   skills,
		Link:     "/profile/" + v.User.ID,
	}
}
