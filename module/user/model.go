package user

import "time"

// User is the account row owned by the identity service; stored here only so
// the directory lookup has something to query.
type User struct {
	UserID     string    `bson:"user_id"` // unique index
	Nickname   string    `bson:"nickname"`
	FaceURL    string    `bson:"face_url"`
	Status     int32     `bson:"status"` // 0=normal, 1=disabled
	CreateTime time.Time `bson:"create_time"`
	Ex         string    `bson:"ex"` // reserved extension (JSON)
}

func (User) TableName() string { return "user" }
