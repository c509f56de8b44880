package models

// PlayerRecord is the persisted slice of a player: everything that must
// survive across sessions. It lives in the key/value store under
// players/<id>.
type PlayerRecord struct {
	ID                string `json:"id" bson:"id"`
	Name              string `json:"name" bson:"name"`
	Banned            bool   `json:"isBanned" bson:"isBanned"`
	Operator          bool   `json:"isOperator" bson:"isOperator"`
	CompletedTutorial bool   `json:"hasCompletedTutorial" bson:"hasCompletedTutorial"`
	Points            int    `json:"points" bson:"points"`
	Wins              int    `json:"wins" bson:"wins"`
	Losses            int    `json:"losses" bson:"losses"`
}
