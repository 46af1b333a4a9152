package models

// User is an account that owns connections, queries and metric history.
type User struct {
	ID           string `bson:"_id" json:"id"`
	Name         string `bson:"name" json:"name"`
	Age          int    `bson:"age" json:"age"`
	Email        string `bson:"email" json:"email"`
	PasswordHash string `bson:"password" json:"-"`
	Deleted      bool   `bson:"isDeleted" json:"-"`
}
