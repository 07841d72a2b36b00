package entity

// Agent is a persona a user can chat with.
type Agent struct {
	Key             string `yaml:"key"`
	ShortName       string `yaml:"shortName"`
	FullName        string `yaml:"fullName"`
	ImgSrc          string `yaml:"imgSrc"`
	Description     string `yaml:"description"`
	LongDescription string `yaml:"longDescription"`
	Persona         string `yaml:"persona"`
	ThemeColor      string `yaml:"themeColor"`
}
