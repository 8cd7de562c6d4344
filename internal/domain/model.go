package domain

// Model is an LLM provider/model combination, e.g. "Groq:llama-3.1-8b-instant".
type Model struct {
	ID   uint   `gorm:"column:model_id;primaryKey;autoIncrement" json:"model_id"`
	Name string `gorm:"column:model_name;type:varchar(255);not null;uniqueIndex:idx_models_name" json:"model_name"`

	// Jokes declares the jokes.model_id foreign key; it is never loaded.
	Jokes []Joke `gorm:"foreignKey:ModelID;references:ID" json:"-"`
}

// TableName returns the database table name for Model.
func (Model) TableName() string {
	return "models"
}
