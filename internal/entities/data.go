package entities

// StoredData is an opaque blob saved under a string key, used for bot sessions.
type StoredData struct {
	ID    string `gorm:"primaryKey"`
	Value []byte
}

func (StoredData) TableName() string {
	return "stored_data"
}
