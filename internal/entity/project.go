package entity

import "time"

type ProjectType string

const (
	ProjectWedding        ProjectType = "wedding"
	ProjectEngagement     ProjectType = "engagement"
	ProjectGenderParty    ProjectType = "gender party"
	ProjectKidBirthday    ProjectType = "kid birthday"
	ProjectAdultBirthday  ProjectType = "adult birthday"
	ProjectCorporateParty ProjectType = "corporate party"
	ProjectOtherEvent     ProjectType = "other event"
)

var ProjectTypes = []ProjectType{
	ProjectWedding,
	ProjectEngagement,
	ProjectGenderParty,
	ProjectKidBirthday,
	ProjectAdultBirthday,
	ProjectCorporateParty,
	ProjectOtherEvent,
}

func (t ProjectType) Valid() bool {
	for _, v := range ProjectTypes {
		if t == v {
			return true
		}
	}
	return false
}

type Project struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	Type      ProjectType `db:"type"`
	UserID    string      `db:"user_id"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}
