package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User defines a platform user. Account management lives upstream; this
// service only reads display fields for the leaderboard join.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email       string             `bson:"email" json:"email"`
	DisplayName string             `bson:"displayName" json:"displayName"`
	AvatarURL   string             `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	Role        string             `bson:"role,omitempty" json:"role,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
