package models

import "time"

type Contact struct {
	ContactID  string    `json:"contactid" bson:"contactid"`
	FullName   string    `json:"fullName" bson:"full_name"`
	Email      string    `json:"email,omitempty" bson:"email,omitempty"`
	Phone      string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Source     string    `json:"source,omitempty" bson:"source,omitempty"` // site, referral, portal, walk-in
	Stage      string    `json:"stage" bson:"stage"`                       // lead, contacted, visiting, negotiating, closed
	Notes      string    `json:"notes,omitempty" bson:"notes,omitempty"`
	PropertyID string    `json:"propertyid,omitempty" bson:"propertyid,omitempty"`
	OwnerID    string    `json:"ownerid" bson:"ownerid"` // agent responsible for the lead
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}
