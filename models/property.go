package models

import "time"

type Property struct {
	PropertyID   string    `json:"propertyid" bson:"propertyid"`
	Title        string    `json:"title" bson:"title"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
	Type         string    `json:"type" bson:"type"`     // house, apartment, land, commercial
	Status       string    `json:"status" bson:"status"` // draft, published, sold, archived
	Price        float64   `json:"price" bson:"price"`
	City         string    `json:"city" bson:"city"`
	Neighborhood string    `json:"neighborhood,omitempty" bson:"neighborhood,omitempty"`
	Address      string    `json:"address,omitempty" bson:"address,omitempty"`
	Bedrooms     int       `json:"bedrooms,omitempty" bson:"bedrooms,omitempty"`
	Bathrooms    int       `json:"bathrooms,omitempty" bson:"bathrooms,omitempty"`
	AreaM2       float64   `json:"area_m2,omitempty" bson:"area_m2,omitempty"`
	Features     []string  `json:"features,omitempty" bson:"features,omitempty"`
	Photos       []string  `json:"photos,omitempty" bson:"photos,omitempty"`
	AgentID      string    `json:"agentid" bson:"agentid"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}
