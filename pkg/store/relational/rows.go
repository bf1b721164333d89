package relational

// Table names.
const (
	tableSkills   = "skills"
	tableSessions = "sessions"
	tableSettings = "settings"
)

// The row types only describe the schema for migration. Data moves
// through the table client as maps.

type skillRow struct {
	ID                     string `gorm:"column:id;type:text;primaryKey"`
	UserID                 string `gorm:"column:user_id;type:text;not null;index"`
	Name                   string `gorm:"column:name;type:text;not null"`
	DefaultSessionDuration int    `gorm:"column:default_session_duration;not null"`
	TargetHours            int    `gorm:"column:target_hours;not null"`
	CreatedAt              string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt              string `gorm:"column:updated_at;type:text;not null"`
}

func (skillRow) TableName() string { return tableSkills }

type sessionRow struct {
	ID       string   `gorm:"column:id;type:text;primaryKey"`
	UserID   string   `gorm:"column:user_id;type:text;not null;index"`
	SkillID  string   `gorm:"column:skill_id;type:text;not null;index"`
	Skill    skillRow `gorm:"foreignKey:SkillID;references:ID;constraint:OnDelete:CASCADE"`
	Duration int      `gorm:"column:duration;not null"`
	Date     string   `gorm:"column:date;type:text;not null;index"`
	Notes    string   `gorm:"column:notes;type:text;not null;default:''"`
}

func (sessionRow) TableName() string { return tableSessions }

type settingsRow struct {
	UserID                 string `gorm:"column:user_id;type:text;primaryKey"`
	Theme                  string `gorm:"column:theme;type:text;not null"`
	DefaultSessionDuration int    `gorm:"column:default_session_duration;not null"`
}

func (settingsRow) TableName() string { return tableSettings }
