package model

type Agent struct {
	Key             string `gorm:"type:varchar(64);primaryKey"`
	ShortName       string `gorm:"type:varchar(64);not null"`
	FullName        string `gorm:"type:varchar(128)"`
	ImgSrc          string `gorm:"type:varchar(255);not null"`
	Description     string `gorm:"type:varchar(128);not null"`
	LongDescription string `gorm:"type:varchar(256)"`
	Persona         string `gorm:"type:text;not null"`
	ThemeColor      string `gorm:"type:varchar(32);not null"`
}

func (Agent) TableName() string {
	return "agents"
}
